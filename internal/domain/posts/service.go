package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/platform/slug"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("slug already in use")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Title        string
	Slug         string
	Excerpt      string
	Body         string
	Status       Status
	Authors      []string
	CoverMediaID string
}

func (s *Service) Create(ctx context.Context, req access.Requester, in CreateInput) (Post, error) {
	if access.Posts.Decide(access.OpCreate, req).Denied() {
		return Post{}, access.DenialError(req)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Post{}, ErrInvalidInput
	}

	sl, err := resolveSlug(in.Slug, title)
	if err != nil {
		return Post{}, err
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return Post{}, ErrInvalidInput
	}

	authors := cleanIDs(in.Authors)
	if len(authors) == 0 {
		authors = []string{req.UserID}
	}

	now := s.now()
	p := Post{
		ID:           uuid.NewString(),
		Title:        title,
		Slug:         sl,
		Excerpt:      strings.TrimSpace(in.Excerpt),
		Body:         in.Body,
		Status:       status,
		Authors:      authors,
		CoverMediaID: strings.TrimSpace(in.CoverMediaID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status == StatusPublished {
		p.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// Get devuelve ErrNotFound tanto si no existe como si el requester no puede verlo.
func (s *Service) Get(ctx context.Context, req access.Requester, id string) (Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Post{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	return s.visible(req, p)
}

func (s *Service) GetBySlug(ctx context.Context, req access.Requester, sl string) (Post, error) {
	sl = strings.TrimSpace(sl)
	if sl == "" {
		return Post{}, ErrNotFound
	}
	p, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return Post{}, err
	}
	return s.visible(req, p)
}

func (s *Service) visible(req access.Requester, p Post) (Post, error) {
	if !access.Posts.Permits(access.OpRead, req, p.AccessDocument()) {
		return Post{}, ErrNotFound
	}
	return p, nil
}

type ListFilter struct {
	Status Status
	Author string
	Limit  int
}

func (s *Service) List(ctx context.Context, req access.Requester, f ListFilter) ([]Post, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidInput
	}

	filter, denied := access.Posts.Decide(access.OpRead, req).Scope()
	if denied {
		return []Post{}, nil
	}

	return s.repo.List(ctx, Query{
		Filter: filter,
		Status: f.Status,
		Author: strings.TrimSpace(f.Author),
		Limit:  clampLimit(f.Limit),
	})
}

type UpdateInput struct {
	Title        *string
	Slug         *string
	Excerpt      *string
	Body         *string
	Status       *Status
	Authors      *[]string
	CoverMediaID *string
}

func (s *Service) Update(ctx context.Context, req access.Requester, id string, in UpdateInput) (Post, error) {
	p, err := s.Get(ctx, req, id)
	if err != nil {
		return Post{}, err
	}
	if !access.Posts.Permits(access.OpUpdate, req, p.AccessDocument()) {
		return Post{}, access.DenialError(req)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Post{}, ErrInvalidInput
		}
		p.Title = title
	}
	if in.Slug != nil {
		sl, err := resolveSlug(*in.Slug, p.Title)
		if err != nil {
			return Post{}, err
		}
		p.Slug = sl
	}
	if in.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	if in.CoverMediaID != nil {
		p.CoverMediaID = strings.TrimSpace(*in.CoverMediaID)
	}
	if in.Authors != nil {
		authors := cleanIDs(*in.Authors)
		if len(authors) == 0 {
			return Post{}, ErrInvalidInput
		}
		p.Authors = authors
	}

	now := s.now()
	if in.Status != nil {
		if !in.Status.Valid() {
			return Post{}, ErrInvalidInput
		}
		if *in.Status == StatusPublished && p.PublishedAt == nil {
			p.PublishedAt = &now
		}
		p.Status = *in.Status
	}

	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, req access.Requester, id string) error {
	p, err := s.Get(ctx, req, id)
	if err != nil {
		return err
	}
	if !access.Posts.Permits(access.OpDelete, req, p.AccessDocument()) {
		return access.DenialError(req)
	}
	return s.repo.Delete(ctx, p.ID)
}

func resolveSlug(raw, title string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = title
	}
	sl := slug.Make(raw)
	if sl == "" {
		return "", ErrInvalidInput
	}
	return sl, nil
}

func cleanIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
