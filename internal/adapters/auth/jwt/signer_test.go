package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediation-cms/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_IssueThenVerify(t *testing.T) {
	s := NewSigner(Config{Secret: "test-secret", TTL: time.Hour})

	tok, exp, err := s.Issue(context.Background(), auth.Claims{UserID: "u-1", Email: "a@b.org", Role: "mediator"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := s.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "u-1", Email: "a@b.org", Role: "mediator"}, c)
}

func TestSigner_RejectsOtherSecret(t *testing.T) {
	a := NewSigner(Config{Secret: "a"})
	b := NewSigner(Config{Secret: "b"})

	tok, _, err := a.Issue(context.Background(), auth.Claims{UserID: "u-1"})
	require.NoError(t, err)

	_, err = b.Verify(context.Background(), tok)
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestSigner_RejectsExpired(t *testing.T) {
	s := NewSigner(Config{Secret: "x", TTL: time.Minute})
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	tok, _, err := s.Issue(context.Background(), auth.Claims{UserID: "u-1"})
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = s.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSigner_NotConfigured(t *testing.T) {
	s := NewSigner(Config{})
	_, _, err := s.Issue(context.Background(), auth.Claims{UserID: "u-1"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = s.Verify(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
