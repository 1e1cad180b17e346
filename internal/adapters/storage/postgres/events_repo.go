package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediation-cms/internal/access"
	"mediation-cms/internal/domain/events"

	"github.com/jackc/pgx/v5/pgtype"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

var eventColumns = columns{
	id:        "id",
	status:    "status",
	relations: map[string]string{access.RelHosts: "hosts"},
}

const eventSelect = `
	SELECT
		id, slug, title, description,
		starts_at, ends_at,
		format, location, registration_url,
		hosts, status,
		created_at, updated_at
	FROM events
`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, slug, title, description,
			starts_at, ends_at,
			format, location, registration_url,
			hosts, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		e.ID,
		e.Slug,
		e.Title,
		e.Description,
		e.StartsAt,
		e.EndsAt,
		string(e.Format),
		e.Location,
		e.RegistrationURL,
		nonNil(e.Hosts),
		string(e.Status),
		e.CreatedAt,
		e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return events.ErrConflict
	}
	return err
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET
			slug = $2, title = $3, description = $4,
			starts_at = $5, ends_at = $6,
			format = $7, location = $8, registration_url = $9,
			hosts = $10, status = $11,
			updated_at = $12
		WHERE id = $1
	`,
		e.ID,
		e.Slug,
		e.Title,
		e.Description,
		e.StartsAt,
		e.EndsAt,
		string(e.Format),
		e.Location,
		e.RegistrationURL,
		nonNil(e.Hosts),
		string(e.Status),
		e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return events.ErrConflict
	}
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	e, err := scanEvent(pgtype.NewMap(), r.db.QueryRowContext(ctx, eventSelect+` WHERE id = $1`, id))
	if err != nil {
		return events.Event{}, notFound(err, events.ErrNotFound)
	}
	return e, nil
}

func (r *EventsRepo) GetBySlug(ctx context.Context, slug string) (events.Event, error) {
	e, err := scanEvent(pgtype.NewMap(), r.db.QueryRowContext(ctx, eventSelect+` WHERE slug = $1`, slug))
	if err != nil {
		return events.Event{}, notFound(err, events.ErrNotFound)
	}
	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, filter events.ListFilter) ([]events.Event, error) {
	var qb query
	qb.scope(filter.Access, eventColumns)

	// status filter
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			placeholders = append(placeholders, qb.arg(string(st)))
		}
		qb.and("status IN (" + strings.Join(placeholders, ",") + ")")
	}

	// from/to
	if filter.From != nil {
		qb.and("starts_at >= " + qb.arg(*filter.From))
	}
	if filter.To != nil {
		qb.and("starts_at <= " + qb.arg(*filter.To))
	}

	// q: búsqueda simple en title + description + location
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := qb.arg("%" + q + "%")
		qb.and("(title ILIKE " + p + " OR description ILIKE " + p + " OR location ILIKE " + p + ")")
	}

	sqlText := eventSelect + qb.whereSQL() + " ORDER BY starts_at ASC" + qb.limit(filter.Limit, 50, 200)

	rows, err := r.db.QueryContext(ctx, sqlText, qb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tm := pgtype.NewMap()
	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(tm, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

func scanEvent(tm *pgtype.Map, row rowScanner) (events.Event, error) {
	var e events.Event
	var format, status string
	if err := row.Scan(
		&e.ID,
		&e.Slug,
		&e.Title,
		&e.Description,
		&e.StartsAt,
		&e.EndsAt,
		&format,
		&e.Location,
		&e.RegistrationURL,
		tm.SQLScanner(&e.Hosts),
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return events.Event{}, err
	}

	e.Format = events.Format(format)
	e.Status = events.EventStatus(status)
	return e, nil
}
