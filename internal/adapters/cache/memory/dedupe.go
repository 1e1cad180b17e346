package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	owner   string
	expires time.Time
}

// Dedupe es la versión en proceso del store de Idempotency-Key. Misma
// semántica que el adapter de Redis (SETNX con TTL).
type Dedupe struct {
	mu   sync.Mutex
	keys map[string]entry
	now  func() time.Time
}

func NewDedupe() *Dedupe {
	return &Dedupe{
		keys: make(map[string]entry),
		now:  time.Now,
	}
}

func (d *Dedupe) Claim(ctx context.Context, key, id string, ttl time.Duration) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if e, ok := d.keys[key]; ok && now.Before(e.expires) {
		return e.owner, false, nil
	}

	d.keys[key] = entry{owner: id, expires: now.Add(ttl)}
	return id, true, nil
}

func (d *Dedupe) Release(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.keys, key)
	return nil
}
