// Package ratelimit implements a per-client sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// UnknownClient is the shared bucket used when a request carries no
// identifying address.
const UnknownClient = "unknown"

// Result is the outcome of an admission check.
type Result struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Limiter counts requests per client over a trailing window. Timestamps
// older than the window are purged lazily on each check and empty windows
// are dropped to bound memory.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	window  time.Duration
	limit   int
	now     func() time.Time
}

// New creates a Limiter with the given window size and request limit.
func New(window time.Duration, limit int) *Limiter {
	return &Limiter{
		windows: make(map[string][]time.Time),
		window:  window,
		limit:   limit,
		now:     time.Now,
	}
}

// Admit checks whether the client may issue another request. It never
// returns an error: an empty identifier degrades to the shared unknown
// bucket.
func (l *Limiter) Admit(clientID string) Result {
	if clientID == "" {
		clientID = UnknownClient
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	win := l.windows[clientID]
	kept := win[:0]
	for _, ts := range win {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.windows[clientID] = kept
		return Result{
			Allowed:           false,
			RetryAfterSeconds: int(l.window / time.Second),
		}
	}

	l.windows[clientID] = append(kept, now)
	return Result{Allowed: true}
}

// Size reports the number of tracked client windows.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop windows that have aged out entirely.
	cutoff := l.now().Add(-l.window)
	for id, win := range l.windows {
		live := false
		for _, ts := range win {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.windows, id)
		}
	}
	return len(l.windows)
}
