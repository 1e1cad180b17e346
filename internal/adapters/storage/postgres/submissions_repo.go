package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mediation-cms/internal/domain/submissions"
)

type SubmissionsRepo struct {
	db *sql.DB
}

func NewSubmissionsRepo(db *sql.DB) *SubmissionsRepo {
	return &SubmissionsRepo{db: db}
}

var submissionColumns = columns{id: "id", status: "status"}

const submissionSelect = `
	SELECT
		id, service_type, submitter, details,
		status, idempotency_key,
		created_at, updated_at
	FROM form_submissions
`

func (r *SubmissionsRepo) Create(ctx context.Context, s submissions.Submission) error {
	submitter, err := json.Marshal(s.Submitter)
	if err != nil {
		return fmt.Errorf("marshal submitter: %w", err)
	}
	details := s.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO form_submissions (
			id, service_type, submitter, details,
			status, idempotency_key,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		s.ID, s.ServiceType, string(submitter), string(detailsJSON),
		string(s.Status), s.IdempotencyKey,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *SubmissionsRepo) UpdateStatus(ctx context.Context, id string, status submissions.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE form_submissions SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(status), at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return submissions.ErrNotFound
	}
	return nil
}

func (r *SubmissionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM form_submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return submissions.ErrNotFound
	}
	return nil
}

func (r *SubmissionsRepo) GetByID(ctx context.Context, id string) (submissions.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return submissions.Submission{}, submissions.ErrNotFound
	}
	s, err := scanSubmission(r.db.QueryRowContext(ctx, submissionSelect+` WHERE id = $1`, id))
	if err != nil {
		return submissions.Submission{}, notFound(err, submissions.ErrNotFound)
	}
	return s, nil
}

func (r *SubmissionsRepo) List(ctx context.Context, q submissions.Query) ([]submissions.Submission, error) {
	var qb query
	qb.scope(q.Filter, submissionColumns)
	if q.Status != "" {
		qb.and("status = " + qb.arg(string(q.Status)))
	}
	if q.ServiceType != "" {
		qb.and("lower(service_type) = lower(" + qb.arg(q.ServiceType) + ")")
	}

	sqlText := submissionSelect + qb.whereSQL() + " ORDER BY created_at DESC" + qb.limit(q.Limit, 50, 200)

	rows, err := r.db.QueryContext(ctx, sqlText, qb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]submissions.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSubmission(row rowScanner) (submissions.Submission, error) {
	var s submissions.Submission
	var status string
	var submitter, details []byte
	if err := row.Scan(
		&s.ID, &s.ServiceType, &submitter, &details,
		&status, &s.IdempotencyKey,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return submissions.Submission{}, err
	}
	if err := json.Unmarshal(submitter, &s.Submitter); err != nil {
		return submissions.Submission{}, fmt.Errorf("decode submitter %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(details, &s.Details); err != nil {
		return submissions.Submission{}, fmt.Errorf("decode details %s: %w", s.ID, err)
	}
	s.Status = submissions.Status(status)
	return s, nil
}
