package ratelimit

import (
	"context"
	"sync"
	"time"
)

// StatsEvent is one admission decision.
type StatsEvent struct {
	Key     string
	Allowed bool
	// Action names the guarded operation, e.g. "issue-token" or "select".
	Action string
	At     time.Time
}

// StatsStore persists admission decisions. Recording is best-effort: callers
// ignore the error and never change a decision because of it.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// Counters is an allowed/denied pair.
type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// StatsSnapshot is a point-in-time copy of a MemoryStatsStore.
type StatsSnapshot struct {
	Total    Counters            `json:"total"`
	ByAction map[string]Counters `json:"by_action"`
}

var _ StatsStore = (*MemoryStatsStore)(nil)

// MemoryStatsStore keeps counters in process memory. Client keys are not
// tracked to keep cardinality bounded.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byAction map[string]Counters
}

// NewMemoryStatsStore creates an empty MemoryStatsStore.
func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byAction: make(map[string]Counters)}
}

// Record implements StatsStore.
func (s *MemoryStatsStore) Record(_ context.Context, ev StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)
	c := s.byAction[ev.Action]
	c.add(ev.Allowed)
	s.byAction[ev.Action] = c
	return nil
}

// Snapshot returns a copy of the current counters.
func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	by := make(map[string]Counters, len(s.byAction))
	for k, v := range s.byAction {
		by[k] = v
	}
	return StatsSnapshot{Total: s.total, ByAction: by}
}
