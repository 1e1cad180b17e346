package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTooLarge     = errors.New("file too large")
	ErrUnsupported  = errors.New("unsupported content type")
)

const MaxUploadBytes = 10 << 20

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type Service struct {
	repo  Repository
	blobs BlobStore
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, blobs BlobStore, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:  repo,
		blobs: blobs,
		log:   log.With(map[string]any{"component": "media"}),
		now:   time.Now,
	}
}

type UploadInput struct {
	Filename string
	Alt      string
	Body     io.Reader
}

// Upload sube el archivo y guarda la metadata. Si la metadata falla, el
// objeto subido se borra para no dejar huérfanos.
func (s *Service) Upload(ctx context.Context, req access.Requester, in UploadInput) (Media, error) {
	if access.Media.Decide(access.OpCreate, req).Denied() {
		return Media{}, access.DenialError(req)
	}

	name := cleanFilename(in.Filename)
	if name == "" || in.Body == nil {
		return Media{}, ErrInvalidInput
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, MaxUploadBytes+1))
	if err != nil {
		return Media{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Media{}, ErrInvalidInput
	}
	if len(data) > MaxUploadBytes {
		return Media{}, ErrTooLarge
	}

	// el content-type se detecta del contenido, no del cliente
	ctype := http.DetectContentType(data)
	if i := strings.Index(ctype, ";"); i >= 0 {
		ctype = ctype[:i]
	}
	if !allowedTypes[ctype] {
		return Media{}, ErrUnsupported
	}

	now := s.now()
	m := Media{
		ID:          uuid.NewString(),
		Filename:    name,
		ContentType: ctype,
		Size:        int64(len(data)),
		Alt:         strings.TrimSpace(in.Alt),
		UploadedBy:  req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.StorageKey = "media/" + m.ID + strings.ToLower(path.Ext(name))

	if err := s.blobs.Put(ctx, m.StorageKey, ctype, data); err != nil {
		return Media{}, fmt.Errorf("store blob: %w", err)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if derr := s.blobs.Delete(ctx, m.StorageKey); derr != nil {
			s.log.Error("orphaned upload cleanup failed", map[string]any{
				"error":       derr,
				"storage_key": m.StorageKey,
			})
		}
		return Media{}, fmt.Errorf("save media: %w", err)
	}

	s.log.Info("media uploaded", map[string]any{"media_id": m.ID, "size": m.Size})
	return m, nil
}

func (s *Service) Get(ctx context.Context, req access.Requester, id string) (Media, error) {
	m, err := s.load(ctx, req, id)
	if err != nil {
		return Media{}, err
	}
	return s.redact(req, m), nil
}

func (s *Service) load(ctx context.Context, req access.Requester, id string) (Media, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Media{}, ErrNotFound
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Media{}, err
	}
	if !access.Media.Permits(access.OpRead, req, m.AccessDocument()) {
		return Media{}, ErrNotFound
	}
	return m, nil
}

// Open devuelve el contenido del archivo; el caller cierra el reader.
func (s *Service) Open(ctx context.Context, req access.Requester, id string) (io.ReadCloser, Media, error) {
	m, err := s.load(ctx, req, id)
	if err != nil {
		return nil, Media{}, err
	}
	rc, err := s.blobs.Get(ctx, m.StorageKey)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, Media{}, ErrNotFound
		}
		return nil, Media{}, err
	}
	return rc, s.redact(req, m), nil
}

func (s *Service) List(ctx context.Context, req access.Requester, limit int) ([]Media, error) {
	if access.Media.Decide(access.OpRead, req).Denied() {
		return []Media{}, nil
	}
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = s.redact(req, items[i])
	}
	return items, nil
}

func (s *Service) UpdateAlt(ctx context.Context, req access.Requester, id, alt string) (Media, error) {
	m, err := s.load(ctx, req, id)
	if err != nil {
		return Media{}, err
	}
	if !access.Media.Permits(access.OpUpdate, req, m.AccessDocument()) {
		return Media{}, access.DenialError(req)
	}
	m.Alt = strings.TrimSpace(alt)
	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Media{}, err
	}
	return s.redact(req, m), nil
}

// Delete borra la metadata y después el blob. Un blob que no se pudo borrar
// queda logueado.
func (s *Service) Delete(ctx context.Context, req access.Requester, id string) error {
	m, err := s.load(ctx, req, id)
	if err != nil {
		return err
	}
	if !access.Media.Permits(access.OpDelete, req, m.AccessDocument()) {
		return access.DenialError(req)
	}
	if err := s.repo.Delete(ctx, m.ID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, m.StorageKey); err != nil && !errors.Is(err, ErrBlobNotFound) {
		s.log.Warn("blob delete failed", map[string]any{"error": err, "storage_key": m.StorageKey})
	}
	return nil
}

func (s *Service) redact(req access.Requester, m Media) Media {
	if !access.Media.CanReadField(access.FieldStorageKey, req, m.AccessDocument()) {
		m.StorageKey = ""
	}
	return m
}

func cleanFilename(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
