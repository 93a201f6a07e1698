package gate

import (
	"sync"
	"time"
)

// RateLimiter decides whether a client may submit another request in the
// current window. Injected as a capability: the in-memory implementation
// below fits single-instance deployments, a shared counter service can
// replace it when the process is scaled out.
type RateLimiter interface {
	Allow(key string) bool
}

type window struct {
	count     int
	startedAt time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows. Counters are
// ephemeral and reset on process restart; this is a deterrent, not a
// security boundary.
type FixedWindowLimiter struct {
	capacity int
	period   time.Duration

	mu      sync.Mutex
	windows map[string]*window
	nowFunc func() time.Time
}

// NewFixedWindowLimiter returns a limiter allowing capacity requests per
// key per period.
func NewFixedWindowLimiter(capacity int, period time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		capacity: capacity,
		period:   period,
		windows:  map[string]*window{},
		nowFunc:  time.Now,
	}
}

// Allow atomically increments the counter for key and reports whether the
// request fits the current window.
func (l *FixedWindowLimiter) Allow(key string) bool {
	now := l.nowFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.startedAt) > l.period {
		w = &window{startedAt: now}
		l.windows[key] = w
	}
	if w.count+1 > l.capacity {
		return false
	}
	w.count++
	return true
}
