package cases

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediation-cms/internal/access"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
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
	Title         string
	Summary       string
	Mediators     []string
	Participants  []string
	MediatorNotes string
	SubmissionID  string
	SessionAt     *time.Time
}

func (s *Service) Create(ctx context.Context, req access.Requester, in CreateInput) (Case, error) {
	if access.Cases.Decide(access.OpCreate, req).Denied() {
		return Case{}, access.DenialError(req)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Case{}, ErrInvalidInput
	}

	now := s.now()
	c := Case{
		ID:           uuid.NewString(),
		Title:        title,
		Summary:      strings.TrimSpace(in.Summary),
		Status:       StatusOpen,
		Mediators:    cleanIDs(in.Mediators),
		Participants: cleanIDs(in.Participants),
		SubmissionID: strings.TrimSpace(in.SubmissionID),
		SessionAt:    in.SessionAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.SessionAt != nil {
		c.Status = StatusScheduled
	}

	if notes := strings.TrimSpace(in.MediatorNotes); notes != "" {
		// sin documento guardado: el efectivo es el propio pendiente
		pending := c.AccessDocument()
		eff := access.ResolveEffectiveDocument(&pending, nil)
		if !access.Cases.CanWriteField(access.FieldMediatorNotes, req, eff) {
			return Case{}, access.ErrForbidden
		}
		c.MediatorNotes = notes
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Case{}, err
	}
	return s.redact(req, c), nil
}

// Get: sin permiso de lectura => ErrNotFound. Las notas se ocultan si
// el requester no puede leerlas.
func (s *Service) Get(ctx context.Context, req access.Requester, id string) (Case, error) {
	c, err := s.load(ctx, req, id)
	if err != nil {
		return Case{}, err
	}
	return s.redact(req, c), nil
}

func (s *Service) load(ctx context.Context, req access.Requester, id string) (Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Case{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Case{}, err
	}
	if !access.Cases.Permits(access.OpRead, req, c.AccessDocument()) {
		return Case{}, ErrNotFound
	}
	return c, nil
}

type ListFilter struct {
	Status Status
	Limit  int
}

func (s *Service) List(ctx context.Context, req access.Requester, f ListFilter) ([]Case, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidInput
	}

	filter, denied := access.Cases.Decide(access.OpRead, req).Scope()
	if denied {
		if !req.Authenticated() {
			return nil, access.ErrUnauthorized
		}
		return []Case{}, nil
	}

	items, err := s.repo.List(ctx, Query{Filter: filter, Status: f.Status, Limit: f.Limit})
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = s.redact(req, items[i])
	}
	return items, nil
}

type UpdateInput struct {
	Title         *string
	Summary       *string
	Status        *Status
	Mediators     *[]string
	Participants  *[]string
	MediatorNotes *string
	SessionAt     *time.Time
}

// Update: la regla de colección se evalúa sobre lo guardado; la de campo
// (mediatorNotes) sobre el documento efectivo, así una reasignación en el
// mismo request cuenta para decidir quién escribe las notas.
func (s *Service) Update(ctx context.Context, req access.Requester, id string, in UpdateInput) (Case, error) {
	c, err := s.load(ctx, req, id)
	if err != nil {
		return Case{}, err
	}
	stored := c.AccessDocument()
	if !access.Cases.Permits(access.OpUpdate, req, stored) {
		return Case{}, access.DenialError(req)
	}

	pending := access.Document{Relations: map[string][]string{}}

	// reasignar es tarea del staff
	if in.Mediators != nil || in.Participants != nil {
		if !access.IsCoordinatorOrAdmin(req) {
			return Case{}, access.ErrForbidden
		}
		if in.Mediators != nil {
			c.Mediators = cleanIDs(*in.Mediators)
			pending.Relations[access.RelMediators] = c.Mediators
		}
		if in.Participants != nil {
			c.Participants = cleanIDs(*in.Participants)
			pending.Relations[access.RelParticipants] = c.Participants
		}
	}

	if in.MediatorNotes != nil {
		eff := access.ResolveEffectiveDocument(&pending, &stored)
		if !access.Cases.CanWriteField(access.FieldMediatorNotes, req, eff) {
			return Case{}, access.ErrForbidden
		}
		c.MediatorNotes = strings.TrimSpace(*in.MediatorNotes)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Case{}, ErrInvalidInput
		}
		c.Title = title
	}
	if in.Summary != nil {
		c.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.SessionAt != nil {
		t := *in.SessionAt
		c.SessionAt = &t
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Case{}, ErrInvalidInput
		}
		c.Status = *in.Status
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Case{}, err
	}
	return s.redact(req, c), nil
}

func (s *Service) Delete(ctx context.Context, req access.Requester, id string) error {
	c, err := s.load(ctx, req, id)
	if err != nil {
		return err
	}
	if !access.Cases.Permits(access.OpDelete, req, c.AccessDocument()) {
		return access.DenialError(req)
	}
	return s.repo.Delete(ctx, c.ID)
}

func (s *Service) redact(req access.Requester, c Case) Case {
	c.Redacted = nil
	if !access.Cases.CanReadField(access.FieldMediatorNotes, req, c.AccessDocument()) {
		c.MediatorNotes = ""
		c.Redacted = append(c.Redacted, access.FieldMediatorNotes)
	}
	return c
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
