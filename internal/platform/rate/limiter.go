// Copyright (c) 2026 SafeMine. All rights reserved.

// Package rate provides per-client request throttling for the HTTP layer.
//
// # Architecture
//
// Two interchangeable implementations sit behind the [Limiter] interface:
// an in-memory token bucket for single-instance deployments, and a
// Redis-backed fixed window for multi-replica ones. The middleware does not
// know which one it holds.
package rate

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
//
// When the request is rejected, the returned duration tells the client how
// long to wait before retrying.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (allowed bool, retryAfter time.Duration, err error)
}
