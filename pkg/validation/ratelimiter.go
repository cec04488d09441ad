// pkg/validation/ratelimiter.go
package validation

import (
	"sync"
	"time"
)

// RateLimiter enforces a per-client request budget over a sliding window.
// Clients are keyed by an opaque string (the transport uses the remote
// address). Stale clients are swept periodically so the map does not grow
// without bound.
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	clients map[string]*clientWindow
	done    chan struct{}
	closed  bool
}

type clientWindow struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRequests per window for
// each client key.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string]*clientWindow),
		done:        make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the client may perform another request, counting
// this call against its budget.
func (rl *RateLimiter) Allow(clientID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[clientID]
	if !ok || now.Sub(cw.windowStart) >= rl.window {
		rl.clients[clientID] = &clientWindow{count: 1, windowStart: now}
		return true
	}
	if cw.count >= rl.maxRequests {
		return false
	}
	cw.count++
	return true
}

// Close stops the background sweeper. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if !rl.closed {
		rl.closed = true
		close(rl.done)
	}
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for id, cw := range rl.clients {
				if now.Sub(cw.windowStart) >= rl.window {
					delete(rl.clients, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
