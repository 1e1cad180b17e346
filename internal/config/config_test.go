package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_URL", "")
	t.Setenv("NEXT_PUBLIC_SERVER_URL", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
}

func TestFromEnv_PublicServerURLFallback(t *testing.T) {
	t.Setenv("SERVER_URL", "")
	t.Setenv("NEXT_PUBLIC_SERVER_URL", "https://mediation.example.org/")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://mediation.example.org", cfg.ServerURL)
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "two hours")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "TOKEN_TTL")

	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ADMIN_EMAIL", "admin@example.org")
	t.Setenv("ADMIN_PASSWORD", "")
	_, err = FromEnv()
	assert.Error(t, err)
}
