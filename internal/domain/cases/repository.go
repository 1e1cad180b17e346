package cases

import (
	"context"

	"mediation-cms/internal/access"
)

// Repository: GetByID devuelve ErrNotFound.
type Repository interface {
	Create(ctx context.Context, c Case) error
	Update(ctx context.Context, c Case) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Case, error)
	List(ctx context.Context, q Query) ([]Case, error)
}

// Query: orden updated_at desc.
type Query struct {
	Filter *access.Filter
	Status Status
	Limit  int
}
