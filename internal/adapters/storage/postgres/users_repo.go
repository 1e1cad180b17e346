package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediation-cms/internal/access"
	"mediation-cms/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

var userColumns = columns{id: "id"}

const userSelect = `
	SELECT id, email, name, role, password_hash, created_at, updated_at
	FROM users
`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return users.ErrConflict
	}
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, role = $3, password_hash = $4, updated_at = $5
		WHERE id = $1
	`, u.ID, u.Name, string(u.Role), u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrNotFound
	}
	return r.getOne(ctx, userSelect+` WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getOne(ctx, userSelect+` WHERE email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, q string, arg string) (users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, q users.Query) ([]users.User, error) {
	var qb query
	qb.scope(q.Filter, userColumns)

	sqlText := userSelect + qb.whereSQL() + " ORDER BY email ASC" + qb.limit(q.Limit, 50, 200)

	rows, err := r.db.QueryContext(ctx, sqlText, qb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return users.User{}, err
	}
	u.Role = access.Role(role)
	return u, nil
}
