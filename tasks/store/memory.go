package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
)

// Compile-time check to ensure MemoryResultStore implements ResultStore
var _ ResultStore = (*MemoryResultStore)(nil)

// MemoryResultStore provides an in-memory implementation of the result store,
// useful for tests and short-lived processes where results need not survive
// the process.
type MemoryResultStore struct {
	mu      sync.RWMutex
	entries map[string]map[fingerprint.Fingerprint]*Entry
}

// NewMemoryResultStore creates and initializes a new MemoryResultStore.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{
		entries: make(map[string]map[fingerprint.Fingerprint]*Entry),
	}
}

// Load retrieves an entry by identity and fingerprint.
// It returns a copy so callers cannot mutate stored state.
func (s *MemoryResultStore) Load(_ context.Context, identity string, fp fingerprint.Fingerprint) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[identity][fp]
	if !ok {
		return nil, nil
	}

	copied := *entry
	return &copied, nil
}

// Save stores an entry, replacing any prior entry for the same pair.
func (s *MemoryResultStore) Save(_ context.Context, identity string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("result entry is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[identity] == nil {
		s.entries[identity] = make(map[fingerprint.Fingerprint]*Entry)
	}
	copied := *entry
	s.entries[identity][entry.Fingerprint] = &copied
	return nil
}

// Purge removes every entry stored under the given identity.
func (s *MemoryResultStore) Purge(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, identity)
	return nil
}
