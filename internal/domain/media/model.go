package media

import (
	"time"

	"mediation-cms/internal/access"
)

// Media es la metadata de un archivo subido; el contenido vive en el BlobStore.
type Media struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	Alt         string

	// StorageKey es la clave en el object store; solo staff la ve.
	StorageKey string
	UploadedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Media) AccessDocument() access.Document {
	return access.Document{ID: m.ID}
}
