package events

import (
	"context"
	"errors"
	"net/url"
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
	Title           string
	Slug            string
	Description     string
	StartsAt        time.Time
	EndsAt          *time.Time
	Format          Format
	Location        string
	RegistrationURL string
	Hosts           []string
	Status          EventStatus
}

func (s *Service) Create(ctx context.Context, req access.Requester, in CreateInput) (Event, error) {
	if access.Events.Decide(access.OpCreate, req).Denied() {
		return Event{}, access.DenialError(req)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Event{}, ErrInvalidInput
	}
	if in.StartsAt.IsZero() {
		return Event{}, ErrInvalidInput
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return Event{}, ErrInvalidInput
	}

	raw := strings.TrimSpace(in.Slug)
	if raw == "" {
		raw = title
	}
	sl := slug.Make(raw)
	if sl == "" {
		return Event{}, ErrInvalidInput
	}

	format := in.Format
	if format == "" {
		format = FormatInPerson
	}
	if !format.Valid() {
		return Event{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = EventStatusDraft
	}
	if !status.Valid() {
		return Event{}, ErrInvalidInput
	}

	regURL := strings.TrimSpace(in.RegistrationURL)
	if !validURL(regURL) {
		return Event{}, ErrInvalidInput
	}

	hosts := cleanIDs(in.Hosts)
	if len(hosts) == 0 {
		hosts = []string{req.UserID}
	}

	now := s.now()
	e := Event{
		ID:              uuid.NewString(),
		Slug:            sl,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		StartsAt:        in.StartsAt.UTC(),
		EndsAt:          utcPtr(in.EndsAt),
		Format:          format,
		Location:        strings.TrimSpace(in.Location),
		RegistrationURL: regURL,
		Hosts:           hosts,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// GetByID devuelve ErrNotFound también cuando el requester no puede verlo.
func (s *Service) GetByID(ctx context.Context, req access.Requester, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrNotFound
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if !access.Events.Permits(access.OpRead, req, e.AccessDocument()) {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (s *Service) GetBySlug(ctx context.Context, req access.Requester, sl string) (Event, error) {
	sl = strings.TrimSpace(sl)
	if sl == "" {
		return Event{}, ErrNotFound
	}
	e, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return Event{}, err
	}
	if !access.Events.Permits(access.OpRead, req, e.AccessDocument()) {
		return Event{}, ErrNotFound
	}
	return e, nil
}

// List aplica el scope de lectura sobre el filtro pedido.
func (s *Service) List(ctx context.Context, req access.Requester, filter ListFilter) ([]Event, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, ErrInvalidInput
		}
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, ErrInvalidInput
	}

	scope, denied := access.Events.Decide(access.OpRead, req).Scope()
	if denied {
		return []Event{}, nil
	}
	filter.Access = scope
	return s.repo.List(ctx, filter)
}

// Upcoming: publicados desde ahora, para la home y /events.
func (s *Service) Upcoming(ctx context.Context, req access.Requester, limit int) ([]Event, error) {
	now := s.now()
	return s.List(ctx, req, ListFilter{
		Statuses: []EventStatus{EventStatusPublished},
		From:     &now,
		Limit:    limit,
	})
}

type UpdateInput struct {
	Title           *string
	Description     *string
	StartsAt        *time.Time
	EndsAt          *time.Time
	Format          *Format
	Location        *string
	RegistrationURL *string
	Hosts           *[]string
	Status          *EventStatus
}

func (s *Service) Update(ctx context.Context, req access.Requester, id string, in UpdateInput) (Event, error) {
	e, err := s.GetByID(ctx, req, id)
	if err != nil {
		return Event{}, err
	}
	if !access.Events.Permits(access.OpUpdate, req, e.AccessDocument()) {
		return Event{}, access.DenialError(req)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Event{}, ErrInvalidInput
		}
		e.Title = title
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.StartsAt != nil {
		if in.StartsAt.IsZero() {
			return Event{}, ErrInvalidInput
		}
		e.StartsAt = in.StartsAt.UTC()
	}
	if in.EndsAt != nil {
		e.EndsAt = utcPtr(in.EndsAt)
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return Event{}, ErrInvalidInput
	}
	if in.Format != nil {
		if !in.Format.Valid() {
			return Event{}, ErrInvalidInput
		}
		e.Format = *in.Format
	}
	if in.Location != nil {
		e.Location = strings.TrimSpace(*in.Location)
	}
	if in.RegistrationURL != nil {
		u := strings.TrimSpace(*in.RegistrationURL)
		if !validURL(u) {
			return Event{}, ErrInvalidInput
		}
		e.RegistrationURL = u
	}
	if in.Hosts != nil {
		hosts := cleanIDs(*in.Hosts)
		if len(hosts) == 0 {
			return Event{}, ErrInvalidInput
		}
		e.Hosts = hosts
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Event{}, ErrInvalidInput
		}
		e.Status = *in.Status
	}

	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Cancel marca el evento como cancelado (no se borra).
func (s *Service) Cancel(ctx context.Context, req access.Requester, id string) (Event, error) {
	st := EventStatusCancelled
	return s.Update(ctx, req, id, UpdateInput{Status: &st})
}

func (s *Service) Delete(ctx context.Context, req access.Requester, id string) error {
	e, err := s.GetByID(ctx, req, id)
	if err != nil {
		return err
	}
	if !access.Events.Permits(access.OpDelete, req, e.AccessDocument()) {
		return access.DenialError(req)
	}
	return s.repo.Delete(ctx, e.ID)
}

func validURL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
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
