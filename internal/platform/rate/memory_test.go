// Copyright (c) 2026 SafeMine. All rights reserved.

package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemine/api/internal/platform/rate"
)

/*
TestMemoryLimiter_Burst verifies that a client can spend its burst and is then
throttled.
*/
func TestMemoryLimiter_Burst(t *testing.T) {
	limiter := rate.NewMemoryLimiter(1, 3, time.Minute, time.Minute)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "10.0.0.1", now)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within burst should pass", i)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "10.0.0.1", now)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

/*
TestMemoryLimiter_PerKeyIsolation verifies that clients do not share buckets.
*/
func TestMemoryLimiter_PerKeyIsolation(t *testing.T) {
	limiter := rate.NewMemoryLimiter(1, 1, time.Minute, time.Minute)
	ctx := context.Background()
	now := time.Now()

	allowed, _, err := limiter.Allow(ctx, "10.0.0.1", now)
	require.NoError(t, err)
	assert.True(t, allowed)

	// First client exhausted its bucket
	allowed, _, err = limiter.Allow(ctx, "10.0.0.1", now)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Second client is unaffected
	allowed, _, err = limiter.Allow(ctx, "10.0.0.2", now)
	require.NoError(t, err)
	assert.True(t, allowed)
}

/*
TestMemoryLimiter_Refill verifies that tokens come back as time passes.
*/
func TestMemoryLimiter_Refill(t *testing.T) {
	limiter := rate.NewMemoryLimiter(20, 1, time.Minute, time.Minute)
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "10.0.0.1", time.Now())
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "10.0.0.1", time.Now())
	require.NoError(t, err)
	assert.False(t, allowed)

	// 20 rps means a fresh token every 50ms
	time.Sleep(150 * time.Millisecond)

	allowed, _, err = limiter.Allow(ctx, "10.0.0.1", time.Now())
	require.NoError(t, err)
	assert.True(t, allowed)
}
