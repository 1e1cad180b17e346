package posts

import (
	"context"

	"mediation-cms/internal/access"
)

// Repository: GetByID/GetBySlug devuelven ErrNotFound; Create/Update
// devuelven ErrConflict si el slug ya está tomado.
type Repository interface {
	Create(ctx context.Context, p Post) error
	Update(ctx context.Context, p Post) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Post, error)
	GetBySlug(ctx context.Context, slug string) (Post, error)
	List(ctx context.Context, q Query) ([]Post, error)
}

// Query se arma en el service: Filter viene de la política de lectura.
// Orden: published_at/created_at desc.
type Query struct {
	Filter *access.Filter
	Status Status
	Author string
	Limit  int
}
