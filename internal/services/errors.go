package services

import (
	"errors"
	"fmt"
	"time"
)

// Admission, capability and availability errors. Anything else a service
// method returns is an unexpected failure.
var (
	// ErrRateLimited - the client is over its admission quota.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrTokenRequired - no token was presented.
	ErrTokenRequired = errors.New("token is required")
	// ErrInvalidToken - the token is unknown, expired, already used or bound to another session.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNoDestinations - there is no active destination to send the user to.
	ErrNoDestinations = errors.New("no active destinations")
)

// RateLimitedError is returned on admission rejection; it matches ErrRateLimited.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// RetryAfter extracts the wait hint from err, zero when err carries none.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
