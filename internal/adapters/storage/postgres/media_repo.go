package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediation-cms/internal/domain/media"
)

type MediaRepo struct {
	db *sql.DB
}

func NewMediaRepo(db *sql.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

const mediaSelect = `
	SELECT id, filename, content_type, size, alt, storage_key, uploaded_by, created_at, updated_at
	FROM media
`

func (r *MediaRepo) Create(ctx context.Context, m media.Media) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media (id, filename, content_type, size, alt, storage_key, uploaded_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, m.ID, m.Filename, m.ContentType, m.Size, m.Alt, m.StorageKey, m.UploadedBy, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *MediaRepo) Update(ctx context.Context, m media.Media) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE media SET alt = $2, updated_at = $3 WHERE id = $1
	`, m.ID, m.Alt, m.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return media.ErrNotFound
	}
	return nil
}

func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return media.ErrNotFound
	}
	return nil
}

func (r *MediaRepo) GetByID(ctx context.Context, id string) (media.Media, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return media.Media{}, media.ErrNotFound
	}
	m, err := scanMedia(r.db.QueryRowContext(ctx, mediaSelect+` WHERE id = $1`, id))
	if err != nil {
		return media.Media{}, notFound(err, media.ErrNotFound)
	}
	return m, nil
}

func (r *MediaRepo) List(ctx context.Context, limit int) ([]media.Media, error) {
	var qb query
	rows, err := r.db.QueryContext(ctx, mediaSelect+" ORDER BY created_at DESC"+qb.limit(limit, 50, 200), qb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]media.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMedia(row rowScanner) (media.Media, error) {
	var m media.Media
	err := row.Scan(&m.ID, &m.Filename, &m.ContentType, &m.Size, &m.Alt, &m.StorageKey, &m.UploadedBy, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
