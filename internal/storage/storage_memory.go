package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"redirector/internal/domain/models"

	"github.com/google/uuid"
)

var (
	_ TargetStore  = (*StorageMemory)(nil)
	_ TargetWriter = (*StorageMemory)(nil)
)

// StorageMemory - in-memory destination table.
type StorageMemory struct {
	targets map[string]models.RedirectTarget
	mu      sync.Mutex
	now     func() time.Time
}

// NewStorageMemory creates a StorageMemory holding targets as given.
func NewStorageMemory(targets ...models.RedirectTarget) *StorageMemory {
	s := &StorageMemory{
		targets: make(map[string]models.RedirectTarget, len(targets)),
		now:     time.Now,
	}
	for _, t := range targets {
		s.targets[t.ID] = t
	}
	return s
}

// ActiveTargets implements TargetStore.
func (s *StorageMemory) ActiveTargets(_ context.Context) ([]models.RedirectTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]models.RedirectTarget, 0, len(s.targets))
	for _, t := range s.targets {
		if t.Active {
			active = append(active, t)
		}
	}
	slices.SortFunc(active, func(a, b models.RedirectTarget) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return active, nil
}

// IncrementHits implements TargetStore.
func (s *StorageMemory) IncrementHits(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[id]
	if !ok {
		return ErrTargetNotFound
	}
	t.Hits++
	s.targets[id] = t
	return nil
}

// Ping implements TargetStore.
func (s *StorageMemory) Ping(_ context.Context) error {
	return nil
}

// InsertTarget implements TargetWriter. Validation against the allow-list is the caller's job.
func (s *StorageMemory) InsertTarget(_ context.Context, t models.RedirectTarget) (models.RedirectTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.targets {
		if existing.URL == t.URL {
			return models.RedirectTarget{}, ErrDuplicateURL
		}
	}

	now := s.now()
	t.ID = uuid.NewString()
	t.Hits = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Category == "" {
		t.Category = "general"
	}
	s.targets[t.ID] = t
	return t, nil
}

// Target returns the stored record for id.
func (s *StorageMemory) Target(id string) (models.RedirectTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.targets[id]
	return t, ok
}

// Close implements io.Closer for symmetry with StorageDB.
func (s *StorageMemory) Close() error {
	return nil
}
