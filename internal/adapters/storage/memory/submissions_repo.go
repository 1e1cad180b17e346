package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"mediation-cms/internal/domain/submissions"
)

type submissionRepo struct {
	mu   sync.RWMutex
	byID map[string]submissions.Submission
}

func NewSubmissionRepo() submissions.Repository {
	return &submissionRepo{
		byID: make(map[string]submissions.Submission),
	}
}

func (r *submissionRepo) Create(ctx context.Context, s submissions.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("submission id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("submission already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *submissionRepo) UpdateStatus(ctx context.Context, id string, status submissions.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return submissions.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = at
	r.byID[id] = s
	return nil
}

func (r *submissionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return submissions.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (submissions.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return submissions.Submission{}, submissions.ErrNotFound
	}
	return s, nil
}

func (r *submissionRepo) List(ctx context.Context, q submissions.Query) ([]submissions.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]submissions.Submission, 0)
	for _, s := range r.byID {
		if !allowed(q.Filter, s.AccessDocument()) {
			continue
		}
		if q.Status != "" && s.Status != q.Status {
			continue
		}
		if q.ServiceType != "" && !strings.EqualFold(s.ServiceType, q.ServiceType) {
			continue
		}
		out = append(out, s)
	}

	// Más nuevas primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit := clamp(q.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
