package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"mediation-cms/internal/domain/cases"
)

type caseRepo struct {
	mu   sync.RWMutex
	byID map[string]cases.Case
}

func NewCaseRepo() cases.Repository {
	return &caseRepo{
		byID: make(map[string]cases.Case),
	}
}

func (r *caseRepo) Create(ctx context.Context, c cases.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("case id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("case already exists")
	}
	r.byID[c.ID] = snapshotCase(c)
	return nil
}

func (r *caseRepo) Update(ctx context.Context, c cases.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return cases.ErrNotFound
	}
	r.byID[c.ID] = snapshotCase(c)
	return nil
}

func (r *caseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return cases.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cases.Case{}, cases.ErrNotFound
	}
	return snapshotCase(c), nil
}

func (r *caseRepo) List(ctx context.Context, q cases.Query) ([]cases.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cases.Case, 0)
	for _, c := range r.byID {
		if !allowed(q.Filter, c.AccessDocument()) {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		out = append(out, snapshotCase(c))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if limit := clamp(q.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// snapshotCase copia los slices para que nadie mute el estado guardado.
func snapshotCase(c cases.Case) cases.Case {
	c.Mediators = cloneStrings(c.Mediators)
	c.Participants = cloneStrings(c.Participants)
	c.Redacted = nil
	return c
}
