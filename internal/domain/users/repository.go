package users

import (
	"context"

	"mediation-cms/internal/access"
)

// Repository: GetByID/GetByEmail devuelven ErrNotFound; Create devuelve
// ErrConflict si el email ya existe.
type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, q Query) ([]User, error)
}

// Query: Filter nil = sin restricción (ya autorizado como Allow).
type Query struct {
	Filter *access.Filter
	Limit  int
}
