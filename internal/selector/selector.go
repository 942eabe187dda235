// Package selector picks one destination from a weighted population and records the hit.
package selector

import (
	"cmp"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"redirector/internal/domain/models"
)

// ErrNoneAvailable - there is no active target to choose from.
var ErrNoneAvailable = errors.New("no active targets available")

// HitRecorder increments a target's hit counter.
type HitRecorder interface {
	IncrementHits(ctx context.Context, id string) error
}

// Rand is a source of uniform floats in [0, 1).
type Rand interface {
	Float64() float64
}

// Selector performs weighted random selection.
type Selector struct {
	hits HitRecorder
	rnd  Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand replaces the random source.
func WithRand(r Rand) Option {
	return func(s *Selector) { s.rnd = r }
}

// New creates a Selector recording hits through hits.
func New(hits HitRecorder, opts ...Option) *Selector {
	s := &Selector{hits: hits, rnd: newLockedRand()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectAndRecord chooses one active target with probability weight/total and
// increments its hit counter. The returned record includes the new hit.
// When the hit write fails the chosen record is still returned, unchanged, with the error.
func (s *Selector) SelectAndRecord(ctx context.Context, targets []models.RedirectTarget) (models.RedirectTarget, error) {
	ordered := Order(targets)
	if len(ordered) == 0 {
		return models.RedirectTarget{}, ErrNoneAvailable
	}

	chosen := Pick(ordered, s.rnd.Float64())

	if err := s.hits.IncrementHits(ctx, chosen.ID); err != nil {
		return chosen, fmt.Errorf("record hit for %s: %w", chosen.ID, err)
	}
	chosen.Hits++

	return chosen, nil
}

// Order returns the active targets sorted by weight desc, then creation time desc.
// The sort is stable so equal keys keep their input order.
func Order(targets []models.RedirectTarget) []models.RedirectTarget {
	ordered := make([]models.RedirectTarget, 0, len(targets))
	for _, t := range targets {
		if t.Active && t.Weight > 0 {
			ordered = append(ordered, t)
		}
	}
	slices.SortStableFunc(ordered, func(a, b models.RedirectTarget) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return ordered
}

// Pick walks ordered subtracting weights from u*total and returns the first
// target where the remainder drops to zero or below. ordered must be non-empty;
// if rounding keeps the remainder positive the last target is returned.
func Pick(ordered []models.RedirectTarget, u float64) models.RedirectTarget {
	total := 0
	for _, t := range ordered {
		total += t.Weight
	}

	remainder := u * float64(total)
	for _, t := range ordered {
		remainder -= float64(t.Weight)
		if remainder <= 0 {
			return t
		}
	}
	return ordered[len(ordered)-1]
}

// lockedRand is a ChaCha8 generator seeded from crypto/rand, safe for concurrent use.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand() *lockedRand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return &lockedRand{r: rand.New(rand.NewChaCha8(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
