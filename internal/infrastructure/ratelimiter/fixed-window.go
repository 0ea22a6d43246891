package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per client IP inside aligned
// time windows. Counters for idle clients are reaped periodically so
// the map does not grow with every address ever seen.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	span    time.Duration
	ticker  *time.Ticker
	done    chan struct{}
}

type window struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowRateLimiter(limit int, span time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		span:    span,
		ticker:  time.NewTicker(span),
		done:    make(chan struct{}),
	}
	go rl.reapLoop()
	return rl
}

// Allow reports whether the client may proceed. When the limit is hit
// it also returns how long the client should wait before retrying.
func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[ip]
	if !ok || !now.Before(w.resetAt) {
		rl.clients[ip] = &window{
			count:   1,
			resetAt: now.Truncate(rl.span).Add(rl.span),
		}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, time.Until(w.resetAt)
	}

	w.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) reapLoop() {
	for {
		select {
		case <-rl.ticker.C:
			rl.reap()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindowRateLimiter) reap() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.clients {
		if now.After(w.resetAt) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *FixedWindowRateLimiter) Close() {
	rl.ticker.Stop()
	close(rl.done)
}
