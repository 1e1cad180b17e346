package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediation-cms/internal/access"
	"mediation-cms/internal/domain/posts"

	"github.com/jackc/pgx/v5/pgtype"
)

type PostsRepo struct {
	db *sql.DB
}

func NewPostsRepo(db *sql.DB) *PostsRepo {
	return &PostsRepo{db: db}
}

var postColumns = columns{
	id:        "id",
	status:    "status",
	relations: map[string]string{access.RelAuthors: "authors"},
}

const postSelect = `
	SELECT
		id, title, slug, excerpt, body,
		status, authors, cover_media_id,
		published_at, created_at, updated_at
	FROM posts
`

func (r *PostsRepo) Create(ctx context.Context, p posts.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (
			id, title, slug, excerpt, body,
			status, authors, cover_media_id,
			published_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Body,
		string(p.Status), nonNil(p.Authors), p.CoverMediaID,
		p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return posts.ErrConflict
	}
	return err
}

func (r *PostsRepo) Update(ctx context.Context, p posts.Post) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET
			title = $2, slug = $3, excerpt = $4, body = $5,
			status = $6, authors = $7, cover_media_id = $8,
			published_at = $9, updated_at = $10
		WHERE id = $1
	`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Body,
		string(p.Status), nonNil(p.Authors), p.CoverMediaID,
		p.PublishedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return posts.ErrConflict
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return posts.ErrNotFound
	}
	return nil
}

func (r *PostsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return posts.ErrNotFound
	}
	return nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return posts.Post{}, posts.ErrNotFound
	}
	p, err := scanPost(pgtype.NewMap(), r.db.QueryRowContext(ctx, postSelect+` WHERE id = $1`, id))
	if err != nil {
		return posts.Post{}, notFound(err, posts.ErrNotFound)
	}
	return p, nil
}

func (r *PostsRepo) GetBySlug(ctx context.Context, slug string) (posts.Post, error) {
	p, err := scanPost(pgtype.NewMap(), r.db.QueryRowContext(ctx, postSelect+` WHERE slug = $1`, slug))
	if err != nil {
		return posts.Post{}, notFound(err, posts.ErrNotFound)
	}
	return p, nil
}

func (r *PostsRepo) List(ctx context.Context, q posts.Query) ([]posts.Post, error) {
	var qb query
	qb.scope(q.Filter, postColumns)
	if q.Status != "" {
		qb.and("status = " + qb.arg(string(q.Status)))
	}
	if q.Author != "" {
		qb.and(qb.arg(q.Author) + " = ANY(authors)")
	}

	sqlText := postSelect + qb.whereSQL() +
		" ORDER BY COALESCE(published_at, created_at) DESC" +
		qb.limit(q.Limit, 20, 100)

	rows, err := r.db.QueryContext(ctx, sqlText, qb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tm := pgtype.NewMap()
	out := make([]posts.Post, 0)
	for rows.Next() {
		p, err := scanPost(tm, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPost(tm *pgtype.Map, row rowScanner) (posts.Post, error) {
	var p posts.Post
	var status string
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body,
		&status, tm.SQLScanner(&p.Authors), &p.CoverMediaID,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return posts.Post{}, err
	}
	p.Status = posts.Status(status)
	return p, nil
}
