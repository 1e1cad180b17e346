package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrMissingInput = errors.New("missing serviceType or formData")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid status transition")
	ErrInProgress   = errors.New("submission with this idempotency key is still in progress")
)

const (
	DefaultDedupeTTL     = 24 * time.Hour
	DefaultInFlightWait  = 3 * time.Second
	inFlightPollInterval = 25 * time.Millisecond
	maxKeyLen            = 200
)

type Options struct {
	Dedupe    Deduper // nil => sin idempotencia
	DedupeTTL time.Duration
	Notifier  Notifier
	Metrics   Recorder
	Log       logger.Logger

	// Cuánto espera un reintento a que la solicitud dueña de la clave quede
	// guardada. 0 => DefaultInFlightWait.
	InFlightWait time.Duration
}

type Service struct {
	repo Repository
	opts Options
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, opts Options) *Service {
	if opts.DedupeTTL <= 0 {
		opts.DedupeTTL = DefaultDedupeTTL
	}
	if opts.InFlightWait <= 0 {
		opts.InFlightWait = DefaultInFlightWait
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		opts: opts,
		log:  log.With(map[string]any{"component": "submissions"}),
		now:  time.Now,
	}
}

type SubmitInput struct {
	ServiceType    string
	FormData       map[string]any
	IdempotencyKey string
}

// SubmitResult: Replayed indica que la clave ya tenía una solicitud y no se
// creó nada nuevo.
type SubmitResult struct {
	Submission Submission
	Replayed   bool
}

// Submit crea exactamente un registro por llamada, salvo que llegue una
// Idempotency-Key ya usada: en ese caso devuelve el id original.
func (s *Service) Submit(ctx context.Context, req access.Requester, in SubmitInput) (SubmitResult, error) {
	if access.Submissions.Decide(access.OpCreate, req).Denied() {
		return SubmitResult{}, access.DenialError(req)
	}

	serviceType := strings.TrimSpace(in.ServiceType)
	if serviceType == "" || in.FormData == nil {
		return SubmitResult{}, ErrMissingInput
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxKeyLen {
		return SubmitResult{}, ErrInvalidInput
	}

	submitter, details := MapFormData(in.FormData)
	now := s.now()
	sub := Submission{
		ID:             uuid.NewString(),
		ServiceType:    serviceType,
		Submitter:      submitter,
		Details:        details,
		Status:         StatusNew,
		IdempotencyKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	replay, claimed, err := s.claim(ctx, key, sub.ID)
	if err != nil {
		return SubmitResult{}, err
	}
	if replay != nil {
		return SubmitResult{Submission: *replay, Replayed: true}, nil
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		if claimed {
			if rerr := s.opts.Dedupe.Release(ctx, key); rerr != nil {
				s.log.Warn("idempotency release failed", map[string]any{"error": rerr})
			}
		}
		return SubmitResult{}, fmt.Errorf("create submission: %w", err)
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.SubmissionCreated(serviceType)
	}
	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.SubmissionCreated(ctx, sub); err != nil {
			s.log.Warn("submission notify failed", map[string]any{"error": err, "submission_id": sub.ID})
		}
	}

	s.log.Info("submission created", map[string]any{
		"submission_id": sub.ID,
		"service_type":  serviceType,
	})
	return SubmitResult{Submission: sub}, nil
}

// claim reserva la clave para id. Si ya pertenecía a otra solicitud la
// devuelve como replay; si esa solicitud todavía no está guardada espera
// hasta InFlightWait y después responde ErrInProgress. La clave solo se libera
// en Delete o cuando falla el Create de su dueño. Errores del dedupe se
// loguean y no bloquean.
func (s *Service) claim(ctx context.Context, key, id string) (*Submission, bool, error) {
	if key == "" || s.opts.Dedupe == nil {
		return nil, false, nil
	}

	owner, ok, err := s.opts.Dedupe.Claim(ctx, key, id, s.opts.DedupeTTL)
	if err != nil {
		s.log.Warn("idempotency claim failed", map[string]any{"error": err})
		return nil, false, nil
	}
	if ok {
		return nil, true, nil
	}

	prev, err := s.awaitOwner(ctx, owner)
	if err != nil {
		return nil, false, err
	}
	return &prev, false, nil
}

func (s *Service) awaitOwner(ctx context.Context, owner string) (Submission, error) {
	deadline := s.now().Add(s.opts.InFlightWait)
	ticker := time.NewTicker(inFlightPollInterval)
	defer ticker.Stop()

	for {
		prev, err := s.repo.GetByID(ctx, owner)
		if err == nil {
			return prev, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Submission{}, fmt.Errorf("load replayed submission: %w", err)
		}
		if !s.now().Before(deadline) {
			return Submission{}, ErrInProgress
		}

		select {
		case <-ctx.Done():
			return Submission{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) Get(ctx context.Context, req access.Requester, id string) (Submission, error) {
	if access.Submissions.Decide(access.OpRead, req).Denied() {
		return Submission{}, access.DenialError(req)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Submission{}, ErrNotFound
	}
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if !access.Submissions.Permits(access.OpRead, req, sub.AccessDocument()) {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

type ListFilter struct {
	Status      Status
	ServiceType string
	Limit       int
}

// List es solo para staff: el resto recibe 401/403, no una lista vacía.
func (s *Service) List(ctx context.Context, req access.Requester, f ListFilter) ([]Submission, error) {
	filter, denied := access.Submissions.Decide(access.OpRead, req).Scope()
	if denied {
		return nil, access.DenialError(req)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, Query{
		Filter:      filter,
		Status:      f.Status,
		ServiceType: strings.TrimSpace(f.ServiceType),
		Limit:       f.Limit,
	})
}

func (s *Service) UpdateStatus(ctx context.Context, req access.Requester, id string, to Status) (Submission, error) {
	sub, err := s.Get(ctx, req, id)
	if err != nil {
		return Submission{}, err
	}
	if !access.Submissions.Permits(access.OpUpdate, req, sub.AccessDocument()) {
		return Submission{}, access.DenialError(req)
	}
	if !to.Valid() {
		return Submission{}, ErrInvalidInput
	}
	if !CanTransition(sub.Status, to) {
		return Submission{}, ErrBadState
	}
	if sub.Status == to {
		return sub, nil
	}

	at := s.now()
	if err := s.repo.UpdateStatus(ctx, sub.ID, to, at); err != nil {
		return Submission{}, err
	}
	sub.Status = to
	sub.UpdatedAt = at
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, req access.Requester, id string) error {
	sub, err := s.Get(ctx, req, id)
	if err != nil {
		return err
	}
	if !access.Submissions.Permits(access.OpDelete, req, sub.AccessDocument()) {
		return access.DenialError(req)
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}
	if sub.IdempotencyKey != "" && s.opts.Dedupe != nil {
		if err := s.opts.Dedupe.Release(ctx, sub.IdempotencyKey); err != nil {
			s.log.Warn("idempotency release failed", map[string]any{"error": err})
		}
	}
	return nil
}
