package submissions

import (
	"context"
	"time"

	"mediation-cms/internal/access"
)

// Repository: GetByID devuelve ErrNotFound.
type Repository interface {
	Create(ctx context.Context, s Submission) error
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Submission, error)
	List(ctx context.Context, q Query) ([]Submission, error)
}

// Query: orden created_at desc.
type Query struct {
	Filter      *access.Filter
	Status      Status
	ServiceType string
	Limit       int
}

// Deduper reserva una Idempotency-Key. Claim devuelve claimed=false y el id
// dueño cuando la clave ya estaba tomada.
type Deduper interface {
	Claim(ctx context.Context, key, submissionID string, ttl time.Duration) (ownerID string, claimed bool, err error)
	Release(ctx context.Context, key string) error
}

// Notifier avisa (best effort) que entró una solicitud nueva.
type Notifier interface {
	SubmissionCreated(ctx context.Context, s Submission) error
}

// Recorder es el subset de métricas que usa el service.
type Recorder interface {
	SubmissionCreated(serviceType string)
}
