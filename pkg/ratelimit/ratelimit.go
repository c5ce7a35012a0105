// Package ratelimit provides keyed token-bucket rate limiting.
//
// Design:
//   - Each key (a client IP for register/login, a user id for token
//     issuance) owns a golang.org/x/time/rate limiter allowing maxAttempts
//     events per window, with bursts up to maxAttempts.
//   - Reset forgets a key, so a successful login clears its history.
//   - A background goroutine drops keys idle for longer than the window so
//     a long-running server does not leak memory.
//
// The package depends on no other project package, which keeps it usable
// from both handlers and middleware without an import cycle.
package ratelimit

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a keyed rate limiter. The zero value is not usable; use New.
//
//	limiter := ratelimit.New(5, 2*time.Minute)
//	defer limiter.Stop()
//	if !limiter.Allow(ip) { return 429 }
type Limiter struct {
	mu          sync.Mutex
	entries     map[string]*entry
	every       rate.Limit
	burst       int
	window      time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// New creates a limiter allowing maxAttempts events per window per key and
// starts its cleanup goroutine. Call Stop on shutdown.
func New(maxAttempts int, window time.Duration) *Limiter {
	l := &Limiter{
		entries:     make(map[string]*entry),
		every:       rate.Every(window / time.Duration(maxAttempts)),
		burst:       maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow consumes one event for key and reports whether it was permitted.
// Every call counts, successful or not.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// RetryAfterSeconds returns how long key must wait for its next event, in
// whole seconds rounded up. Suitable for a Retry-After header.
func (l *Limiter) RetryAfterSeconds(key string) int {
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return 0
	}

	tokens := e.limiter.Tokens()
	if tokens >= 1 {
		return 0
	}
	return int(math.Ceil((1 - tokens) / float64(l.every)))
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops keys idle for longer than the window; their bucket has
// refilled completely by then, so forgetting them changes nothing.
func (l *Limiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.window {
			delete(l.entries, key)
		}
	}
}

// ExtractIP returns the client IP of r. The chi RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For / X-Real-IP when the
// server sits behind a proxy, so only the port needs stripping here.
func ExtractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage renders a wait time for humans,
// e.g. 120 → "2 minute(s)", 45 → "45 second(s)".
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
