package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults match the hand-off funnel: 5 requests per minute per client.
const (
	DefaultQuota      = 5
	DefaultWindow     = time.Minute
	DefaultMaxClients = 10000
	DefaultEvictBatch = 1000
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is how long until the oldest counted request leaves the window.
	// Zero when allowed or when the global ceiling rejected the call.
	RetryAfter time.Duration
}

// Limiter is a per-client sliding-window rate limiter. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	// order holds client keys in first-insertion order for bulk eviction.
	order []string

	quota      int
	window     time.Duration
	maxClients int
	evictBatch int

	ceiling *rate.Limiter
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithMaxClients sets the tracked-client cap and how many clients are dropped when it is exceeded.
func WithMaxClients(maxClients, evictBatch int) Option {
	return func(l *Limiter) {
		l.maxClients = maxClients
		l.evictBatch = evictBatch
	}
}

// WithGlobalCeiling adds a process-wide token bucket checked after the client window admits.
// A non-positive rps disables it.
func WithGlobalCeiling(rps float64, burst int) Option {
	return func(l *Limiter) {
		if rps <= 0 {
			l.ceiling = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		l.ceiling = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter admitting quota requests per window for each client.
func New(quota int, window time.Duration, opts ...Option) *Limiter {
	if quota <= 0 {
		quota = DefaultQuota
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{
		windows:    make(map[string][]time.Time),
		quota:      quota,
		window:     window,
		maxClients: DefaultMaxClients,
		evictBatch: DefaultEvictBatch,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Quota returns the per-window request allowance.
func (l *Limiter) Quota() int { return l.quota }

// Window returns the trailing window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Admit reports whether clientID may proceed, recording the request when it may.
func (l *Limiter) Admit(clientID string) bool {
	return l.Decide(clientID).Allowed
}

// Decide runs the admission check for clientID. A rejected call does not mutate the client's window.
func (l *Limiter) Decide(clientID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	stamps, known := l.windows[clientID]

	recent := stamps[:0]
	for _, ts := range stamps {
		if now.Sub(ts) < l.window {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.quota {
		l.windows[clientID] = recent
		return Decision{Allowed: false, RetryAfter: l.window - now.Sub(recent[0])}
	}

	if l.ceiling != nil && !l.ceiling.AllowN(now, 1) {
		if known {
			l.windows[clientID] = recent
		}
		return Decision{Allowed: false}
	}

	l.windows[clientID] = append(recent, now)
	if !known {
		l.order = append(l.order, clientID)
		if len(l.windows) > l.maxClients {
			l.evictOldest()
		}
	}

	return Decision{Allowed: true}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// evictOldest drops the evictBatch earliest-inserted clients. Caller holds l.mu.
func (l *Limiter) evictOldest() {
	n := l.evictBatch
	if n > len(l.order) {
		n = len(l.order)
	}
	for _, key := range l.order[:n] {
		delete(l.windows, key)
	}
	l.order = append([]string(nil), l.order[n:]...)
}
