package media

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound lo devuelven los BlobStore cuando la clave no existe.
var ErrBlobNotFound = errors.New("blob not found")

// Repository: GetByID devuelve ErrNotFound. List ordena por created_at desc.
type Repository interface {
	Create(ctx context.Context, m Media) error
	Update(ctx context.Context, m Media) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Media, error)
	List(ctx context.Context, limit int) ([]Media, error)
}

// BlobStore guarda el contenido de los archivos (S3 o memoria).
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
