package users

import (
	"context"
	"errors"

	"mediation-cms/internal/ports/auth"
)

var ErrAccountGone = errors.New("token subject no longer exists")

// StoredRoleVerifier envuelve otro verifier: el token identifica al usuario,
// pero email y rol salen del registro guardado en cada request.
type StoredRoleVerifier struct {
	inner auth.AuthVerifier
	repo  Repository
}

func NewStoredRoleVerifier(inner auth.AuthVerifier, repo Repository) *StoredRoleVerifier {
	return &StoredRoleVerifier{inner: inner, repo: repo}
}

func (v *StoredRoleVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	c, err := v.inner.Verify(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}

	u, err := v.repo.GetByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Claims{}, ErrAccountGone
		}
		return auth.Claims{}, err
	}

	c.Email = u.Email
	c.Role = string(u.Role)
	return c, nil
}
