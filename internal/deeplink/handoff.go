package deeplink

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PendingKey is the durable storage key of the in-flight hand-off.
const PendingKey = "pendingLineRedirect"

// ErrCorruptHandoff - the stored record cannot be decoded.
var ErrCorruptHandoff = errors.New("corrupt pending handoff")

// PendingHandoff is an app-open attempt that has not completed yet.
type PendingHandoff struct {
	DestinationURL   string `json:"destinationUrl"`
	CreatedAtEpochMs int64  `json:"createdAtEpochMs"`
}

// NewPendingHandoff stamps dest with at.
func NewPendingHandoff(dest string, at time.Time) PendingHandoff {
	return PendingHandoff{DestinationURL: dest, CreatedAtEpochMs: at.UnixMilli()}
}

// CreatedAt returns the creation time.
func (p PendingHandoff) CreatedAt() time.Time {
	return time.UnixMilli(p.CreatedAtEpochMs)
}

// Fresh reports whether the record is younger than window at now.
func (p PendingHandoff) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(p.CreatedAt()) < window
}

// HandoffStore holds at most one PendingHandoff. Save overwrites.
// Load returns ok=false when nothing is stored and ErrCorruptHandoff for unreadable records.
type HandoffStore interface {
	Load() (p PendingHandoff, ok bool, err error)
	Save(p PendingHandoff) error
	Delete() error
}

var (
	_ HandoffStore = (*MemoryHandoffStore)(nil)
	_ HandoffStore = (*FileHandoffStore)(nil)
)

// MemoryHandoffStore keeps the record in process memory.
type MemoryHandoffStore struct {
	mu      sync.Mutex
	pending *PendingHandoff
}

// NewMemoryHandoffStore creates an empty store.
func NewMemoryHandoffStore() *MemoryHandoffStore {
	return &MemoryHandoffStore{}
}

// Load implements HandoffStore.
func (s *MemoryHandoffStore) Load() (PendingHandoff, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingHandoff{}, false, nil
	}
	return *s.pending, true, nil
}

// Save implements HandoffStore.
func (s *MemoryHandoffStore) Save(p PendingHandoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &p
	return nil
}

// Delete implements HandoffStore.
func (s *MemoryHandoffStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	return nil
}

// FileHandoffStore keeps the record in a JSON object file, one entry per key,
// the way browser local storage keeps it. Other keys in the file are preserved.
type FileHandoffStore struct {
	mu   sync.Mutex
	path string
	key  string
}

// NewFileHandoffStore creates a store backed by path under PendingKey.
func NewFileHandoffStore(path string) *FileHandoffStore {
	return &FileHandoffStore{path: path, key: PendingKey}
}

// Load implements HandoffStore.
func (s *FileHandoffStore) Load() (PendingHandoff, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return PendingHandoff{}, false, err
	}
	raw, ok := entries[s.key]
	if !ok {
		return PendingHandoff{}, false, nil
	}

	var p PendingHandoff
	if err := json.Unmarshal(raw, &p); err != nil || p.DestinationURL == "" {
		return PendingHandoff{}, false, ErrCorruptHandoff
	}
	return p, true, nil
}

// Save implements HandoffStore.
func (s *FileHandoffStore) Save(p PendingHandoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		// an unreadable file is replaced
		entries = make(map[string]json.RawMessage)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending handoff: %w", err)
	}
	entries[s.key] = raw
	return s.write(entries)
}

// Delete implements HandoffStore.
func (s *FileHandoffStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		entries = make(map[string]json.RawMessage)
	}
	if _, ok := entries[s.key]; !ok && err == nil {
		return nil
	}
	delete(entries, s.key)
	return s.write(entries)
}

func (s *FileHandoffStore) read() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, ErrCorruptHandoff
	}
	return entries, nil
}

// write replaces the file atomically.
func (s *FileHandoffStore) write(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
