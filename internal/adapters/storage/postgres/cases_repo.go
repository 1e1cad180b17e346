package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediation-cms/internal/access"
	"mediation-cms/internal/domain/cases"

	"github.com/jackc/pgx/v5/pgtype"
)

type CasesRepo struct {
	db *sql.DB
}

func NewCasesRepo(db *sql.DB) *CasesRepo {
	return &CasesRepo{db: db}
}

var caseColumns = columns{
	id:     "id",
	status: "status",
	relations: map[string]string{
		access.RelMediators:    "mediators",
		access.RelParticipants: "participants",
	},
}

const caseSelect = `
	SELECT
		id, title, summary, status,
		mediators, participants, mediator_notes,
		submission_id, session_at,
		created_at, updated_at
	FROM cases
`

func (r *CasesRepo) Create(ctx context.Context, c cases.Case) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cases (
			id, title, summary, status,
			mediators, participants, mediator_notes,
			submission_id, session_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		c.ID, c.Title, c.Summary, string(c.Status),
		nonNil(c.Mediators), nonNil(c.Participants), c.MediatorNotes,
		c.SubmissionID, c.SessionAt,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *CasesRepo) Update(ctx context.Context, c cases.Case) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cases SET
			title = $2, summary = $3, status = $4,
			mediators = $5, participants = $6, mediator_notes = $7,
			session_at = $8, updated_at = $9
		WHERE id = $1
	`,
		c.ID, c.Title, c.Summary, string(c.Status),
		nonNil(c.Mediators), nonNil(c.Participants), c.MediatorNotes,
		c.SessionAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cases.ErrNotFound
	}
	return nil
}

func (r *CasesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cases.ErrNotFound
	}
	return nil
}

func (r *CasesRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cases.Case{}, cases.ErrNotFound
	}
	c, err := scanCase(pgtype.NewMap(), r.db.QueryRowContext(ctx, caseSelect+` WHERE id = $1`, id))
	if err != nil {
		return cases.Case{}, notFound(err, cases.ErrNotFound)
	}
	return c, nil
}

func (r *CasesRepo) List(ctx context.Context, q cases.Query) ([]cases.Case, error) {
	var qb query
	qb.scope(q.Filter, caseColumns)
	if q.Status != "" {
		qb.and("status = " + qb.arg(string(q.Status)))
	}

	sqlText := caseSelect + qb.whereSQL() + " ORDER BY updated_at DESC" + qb.limit(q.Limit, 50, 200)

	rows, err := r.db.QueryContext(ctx, sqlText, qb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tm := pgtype.NewMap()
	out := make([]cases.Case, 0)
	for rows.Next() {
		c, err := scanCase(tm, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCase(tm *pgtype.Map, row rowScanner) (cases.Case, error) {
	var c cases.Case
	var status string
	if err := row.Scan(
		&c.ID, &c.Title, &c.Summary, &status,
		tm.SQLScanner(&c.Mediators), tm.SQLScanner(&c.Participants), &c.MediatorNotes,
		&c.SubmissionID, &c.SessionAt,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return cases.Case{}, err
	}
	c.Status = cases.Status(status)
	return c, nil
}
