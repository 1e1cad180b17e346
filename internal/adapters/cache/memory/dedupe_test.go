package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe_ClaimOnce(t *testing.T) {
	d := NewDedupe()
	ctx := context.Background()

	owner, ok, err := d.Claim(ctx, "k1", "sub-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sub-1", owner)

	owner, ok, err = d.Claim(ctx, "k1", "sub-2", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "sub-1", owner)
}

func TestDedupe_ExpiresAndRelease(t *testing.T) {
	d := NewDedupe()
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	_, ok, _ := d.Claim(ctx, "k1", "sub-1", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	owner, ok, _ := d.Claim(ctx, "k1", "sub-2", time.Minute)
	assert.True(t, ok, "expired key can be claimed again")
	assert.Equal(t, "sub-2", owner)

	require.NoError(t, d.Release(ctx, "k1"))
	_, ok, _ = d.Claim(ctx, "k1", "sub-3", time.Minute)
	assert.True(t, ok)
}
