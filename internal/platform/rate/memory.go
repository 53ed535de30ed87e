// Copyright (c) 2026 SafeMine. All rights reserved.

package rate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// memoryClient tracks one client's token bucket and its last activity.
type memoryClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter implements [Limiter] with per-key token buckets held in
// process memory. Suitable for single-instance deployments where the extra
// Redis round trip is not worth it.
type MemoryLimiter struct {
	mu       sync.Mutex
	rps      float64
	burst    int
	ttl      time.Duration
	lastScan time.Time
	scanEach time.Duration
	clients  map[string]*memoryClient
}

// NewMemoryLimiter constructs a memory limiter allowing rps requests per
// second with the given burst. Idle client entries are discarded after ttl.
func NewMemoryLimiter(rps float64, burst int, ttl, cleanupInterval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		rps:      rps,
		burst:    burst,
		ttl:      ttl,
		lastScan: time.Now(),
		scanEach: cleanupInterval,
		clients:  map[string]*memoryClient{},
	}
}

// Allow implements [Limiter].
func (l *MemoryLimiter) Allow(_ context.Context, key string, now time.Time) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Opportunistic cleanup piggybacks on traffic instead of a background
	// goroutine, so the limiter needs no lifecycle management.
	if now.Sub(l.lastScan) >= l.scanEach {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.ttl {
				delete(l.clients, k)
			}
		}
		l.lastScan = now
	}

	client, found := l.clients[key]
	if !found {
		client = &memoryClient{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now

	if !client.limiter.Allow() {
		return false, time.Second, nil
	}

	return true, 0, nil
}
