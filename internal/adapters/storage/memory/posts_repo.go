package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"mediation-cms/internal/domain/posts"
)

type postRepo struct {
	mu   sync.RWMutex
	byID map[string]posts.Post
}

func NewPostRepo() posts.Repository {
	return &postRepo{
		byID: make(map[string]posts.Post),
	}
}

func (r *postRepo) Create(ctx context.Context, p posts.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("post id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("post already exists")
	}
	if r.slugTaken(p.Slug, p.ID) {
		return posts.ErrConflict
	}
	p.Authors = cloneStrings(p.Authors)
	r.byID[p.ID] = p
	return nil
}

func (r *postRepo) Update(ctx context.Context, p posts.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return posts.ErrNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return posts.ErrConflict
	}
	p.Authors = cloneStrings(p.Authors)
	r.byID[p.ID] = p
	return nil
}

// slugTaken asume el lock tomado.
func (r *postRepo) slugTaken(slug, selfID string) bool {
	for id, other := range r.byID {
		if id != selfID && other.Slug == slug {
			return true
		}
	}
	return false
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return posts.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return posts.Post{}, posts.ErrNotFound
	}
	return p, nil
}

func (r *postRepo) GetBySlug(ctx context.Context, slug string) (posts.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return posts.Post{}, posts.ErrNotFound
}

func (r *postRepo) List(ctx context.Context, q posts.Query) ([]posts.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]posts.Post, 0)
	for _, p := range r.byID {
		if !allowed(q.Filter, p.AccessDocument()) {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.Author != "" && !contains(p.Authors, q.Author) {
			continue
		}
		out = append(out, p)
	}

	// Más reciente primero; published_at si existe, si no created_at.
	sort.Slice(out, func(i, j int) bool {
		return postSortKey(out[i]).After(postSortKey(out[j]))
	})

	if limit := clamp(q.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func postSortKey(p posts.Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}
