package jwt

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediation-cms/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("jwt signer not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token invalid")
)

const (
	DefaultTTL    = 2 * time.Hour
	DefaultIssuer = "mediation-cms"
)

type Config struct {
	Secret string
	TTL    time.Duration

	// Opcional: si está vacío se usa DefaultIssuer.
	Issuer string
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	gojwt.RegisteredClaims
}

// Signer emite y verifica tokens HS256.
// Implementa auth.TokenIssuer y auth.AuthVerifier.
type Signer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSigner(cfg Config) *Signer {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	iss := strings.TrimSpace(cfg.Issuer)
	if iss == "" {
		iss = DefaultIssuer
	}
	return &Signer{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: iss,
		now:    time.Now,
	}
}

func (s *Signer) IsConfigured() bool {
	return s != nil && len(s.secret) > 0
}

func (s *Signer) Issue(_ context.Context, c auth.Claims) (string, time.Time, error) {
	if !s.IsConfigured() {
		return "", time.Time{}, ErrNotConfigured
	}
	if strings.TrimSpace(c.UserID) == "" {
		return "", time.Time{}, errors.New("claims missing user id")
	}

	now := s.now()
	exp := now.Add(s.ttl)

	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, tokenClaims{
		Email: c.Email,
		Role:  c.Role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
	})

	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
