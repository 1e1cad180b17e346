package events

import (
	"context"
	"time"

	"mediation-cms/internal/access"
)

// Repository: GetByID/GetBySlug devuelven ErrNotFound; Create/Update devuelven
// ErrConflict si el slug ya existe.
type Repository interface {
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Event, error)
	GetBySlug(ctx context.Context, slug string) (Event, error)
	List(ctx context.Context, filter ListFilter) ([]Event, error)
}

// ListFilter: From/To aplican sobre starts_at. Orden: starts_at asc
// (próximos primero).
type ListFilter struct {
	Access   *access.Filter
	Statuses []EventStatus
	From     *time.Time
	To       *time.Time
	Query    string
	Limit    int
}
