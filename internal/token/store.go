// Package token issues and redeems single-use, time-boxed redirect capabilities.
package token

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/9ssi7/nanoid"
)

// Defaults for a Store.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultSweepAbove = 1000
)

var (
	// ErrNotFound - the token was never issued or has already been redeemed.
	ErrNotFound = errors.New("token not found")
	// ErrExpired - the token outlived its TTL; it is removed by the failed redemption.
	ErrExpired = errors.New("token expired")
)

// Context - freeform fields supplied at issuance, e.g. the funnel's stock code.
type Context map[string]any

// Entry - a stored capability.
type Entry struct {
	ID        string
	Context   Context
	IssuedAt  time.Time
	ExpiresAt time.Time
	// ClientID is the issuing client, kept for audit.
	ClientID string
	// Binding is an optional session id the redeemer must present.
	Binding string
}

// Store keeps issued tokens in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry

	ttl        time.Duration
	sweepAbove int
	now        func() time.Time
	newID      func() (string, error)
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepAbove sets the size above which expired entries are swept on issue.
func WithSweepAbove(n int) Option {
	return func(s *Store) { s.sweepAbove = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the nanoid generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]Entry),
		ttl:        DefaultTTL,
		sweepAbove: DefaultSweepAbove,
		now:        time.Now,
		newID:      func() (string, error) { return nanoid.New() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the token lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Issue stores a new token for ctx and returns its id.
func (s *Store) Issue(ctx Context, clientID, binding string) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.entries[id]; taken {
		return "", fmt.Errorf("generate token id: collision on %q", id)
	}

	now := s.now()
	s.entries[id] = Entry{
		ID:        id,
		Context:   ctx,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
		ClientID:  clientID,
		Binding:   binding,
	}

	if len(s.entries) > s.sweepAbove {
		s.sweepExpired(now)
	}

	return id, nil
}

// Redeem consumes the token. The entry is gone after the call whatever the outcome,
// so concurrent redeemers of one id see exactly one success.
func (s *Store) Redeem(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	delete(s.entries, id)

	if s.now().After(e.ExpiresAt) {
		return Entry{}, ErrExpired
	}
	return e, nil
}

// Len returns the number of stored tokens, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweepExpired drops entries past expiry. Caller holds s.mu.
func (s *Store) sweepExpired(now time.Time) {
	for id, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, id)
		}
	}
}
