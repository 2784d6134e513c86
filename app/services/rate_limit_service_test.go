// Package services provides external service integrations and technical concerns like notifications and rate limiting
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegisterSubmission(t *testing.T) {
	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := NewMemoryRateLimitService(3, 10*time.Minute, time.Minute)
	svc.now = func() time.Time { return current }

	ctx := context.Background()

	// Up to the maximum is never limited
	for i := 0; i < 3; i++ {
		limited, err := svc.RegisterSubmission(ctx, "hash-a")
		require.NoError(t, err)
		assert.False(t, limited, "submission %d should not be limited", i+1)
	}

	limited, err := svc.RegisterSubmission(ctx, "hash-a")
	require.NoError(t, err)
	assert.True(t, limited)

	// Another client is counted separately
	limited, err = svc.RegisterSubmission(ctx, "hash-b")
	require.NoError(t, err)
	assert.False(t, limited)

	// The window is fixed, not sliding: once it elapses the counter resets
	current = current.Add(10*time.Minute + time.Second)
	limited, err = svc.RegisterSubmission(ctx, "hash-a")
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestMemoryCheckEmailCooldown(t *testing.T) {
	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := NewMemoryRateLimitService(3, 10*time.Minute, time.Minute)
	svc.now = func() time.Time { return current }

	ctx := context.Background()

	inCooldown, err := svc.CheckEmailCooldown(ctx, "juan@example.com")
	require.NoError(t, err)
	assert.False(t, inCooldown)

	inCooldown, err = svc.CheckEmailCooldown(ctx, "juan@example.com")
	require.NoError(t, err)
	assert.True(t, inCooldown)

	// Keying is case-insensitive
	inCooldown, err = svc.CheckEmailCooldown(ctx, "JUAN@Example.COM")
	require.NoError(t, err)
	assert.True(t, inCooldown)

	// A different address has its own cooldown
	inCooldown, err = svc.CheckEmailCooldown(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, inCooldown)

	current = current.Add(time.Minute + time.Second)
	inCooldown, err = svc.CheckEmailCooldown(ctx, "juan@example.com")
	require.NoError(t, err)
	assert.False(t, inCooldown)
}

func TestCooldownKeyHidesEmail(t *testing.T) {
	key := cooldownKey("juan@example.com")
	assert.NotContains(t, key, "juan")
	assert.NotContains(t, key, "example.com")
	assert.Equal(t, cooldownKey("JUAN@EXAMPLE.COM"), key)
}
