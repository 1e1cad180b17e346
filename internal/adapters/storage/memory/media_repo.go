package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"mediation-cms/internal/domain/media"
)

type mediaRepo struct {
	mu   sync.RWMutex
	byID map[string]media.Media
}

func NewMediaRepo() media.Repository {
	return &mediaRepo{
		byID: make(map[string]media.Media),
	}
}

func (r *mediaRepo) Create(ctx context.Context, m media.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("media id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("media already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *mediaRepo) Update(ctx context.Context, m media.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return media.ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *mediaRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return media.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *mediaRepo) GetByID(ctx context.Context, id string) (media.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return media.Media{}, media.ErrNotFound
	}
	return m, nil
}

func (r *mediaRepo) List(ctx context.Context, limit int) ([]media.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]media.Media, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit = clamp(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
