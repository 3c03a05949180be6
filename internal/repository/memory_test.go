package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemoryRateLimitRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 1, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Другой пользователь считается отдельно
	allowed, err = repo.CheckRateLimit(ctx, 2, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryRateLimitWindowReset(t *testing.T) {
	repo := NewMemoryRateLimitRepository()
	ctx := context.Background()

	allowed, err := repo.CheckRateLimit(ctx, 1, 1, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.CheckRateLimit(ctx, 1, 1, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(5 * time.Millisecond)

	allowed, err = repo.CheckRateLimit(ctx, 1, 1, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}
