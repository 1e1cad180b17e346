package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"mediation-cms/internal/domain/events"
)

type eventRepo struct {
	mu   sync.RWMutex
	byID map[string]events.Event
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byID: make(map[string]events.Event),
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}
	if r.slugTaken(e.Slug, e.ID) {
		return events.ErrConflict
	}

	e.Hosts = cloneStrings(e.Hosts)
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) Update(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID]; !ok {
		return events.ErrNotFound
	}
	if r.slugTaken(e.Slug, e.ID) {
		return events.ErrConflict
	}

	e.Hosts = cloneStrings(e.Hosts)
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) slugTaken(slug, selfID string) bool {
	for id, other := range r.byID {
		if id != selfID && other.Slug == slug {
			return true
		}
	}
	return false
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) GetBySlug(ctx context.Context, slug string) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return events.Event{}, events.ErrNotFound
}

func (r *eventRepo) List(ctx context.Context, filter events.ListFilter) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.Event, 0)

	for _, e := range r.byID {
		if !allowed(filter.Access, e.AccessDocument()) {
			continue
		}

		// Status filter
		if len(filter.Statuses) > 0 {
			ok := false
			for _, st := range filter.Statuses {
				if e.Status == st {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		// Date filters (starts_at)
		if filter.From != nil {
			if e.StartsAt.Before((*filter.From).Add(-1 * time.Nanosecond)) {
				continue
			}
		}
		if filter.To != nil {
			if e.StartsAt.After(*filter.To) {
				continue
			}
		}

		// Query filter
		if q := strings.TrimSpace(filter.Query); q != "" {
			hay := strings.ToLower(e.Title + " " + e.Description + " " + e.Location)
			if !strings.Contains(hay, strings.ToLower(q)) {
				continue
			}
		}

		out = append(out, e)
	}

	// Próximos primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})

	if limit := clamp(filter.Limit); len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
