package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediation-cms/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func (s *Signer) Verify(_ context.Context, token string) (auth.Claims, error) {
	if !s.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	parsed, err := gojwt.ParseWithClaims(token, &tc, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		gojwt.WithIssuer(s.issuer),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	uid := strings.TrimSpace(tc.Subject)
	if uid == "" {
		return auth.Claims{}, errors.New("token claims missing user id")
	}

	return auth.Claims{
		UserID: uid,
		Email:  strings.TrimSpace(tc.Email),
		Role:   strings.TrimSpace(tc.Role),
	}, nil
}
