// ABOUTME: In-memory diagram store with TTL cleanup and capacity limits.
// ABOUTME: Thread-safe; callers always receive copies so stored diagrams cannot be mutated from outside.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	diagram    *Diagram
	lastAccess time.Time
}

// MemoryStore keeps diagrams in a map keyed by uuid.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]*memoryEntry
	maxDiagrams int
	ttl         time.Duration
}

// NewMemoryStore creates a store holding at most maxDiagrams diagrams. Diagrams
// not accessed within ttl are dropped by Cleanup.
func NewMemoryStore(maxDiagrams int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		maxDiagrams: maxDiagrams,
		ttl:         ttl,
	}
}

// Create validates and stores d under a new ID, evicting the least recently
// accessed diagram when the store is full.
func (s *MemoryStore) Create(_ context.Context, d Diagram) (*Diagram, error) {
	if err := validate(&d); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxDiagrams > 0 && len(s.entries) >= s.maxDiagrams {
		var oldestID string
		var oldestTime time.Time
		for id, e := range s.entries {
			if oldestTime.IsZero() || e.lastAccess.Before(oldestTime) {
				oldestID = id
				oldestTime = e.lastAccess
			}
		}
		delete(s.entries, oldestID)
	}

	now := time.Now()
	d.ID = uuid.New().String()
	d.CreatedAt = now
	d.UpdatedAt = now
	stored := clone(&d)
	s.entries[d.ID] = &memoryEntry{diagram: stored, lastAccess: now}
	return clone(stored), nil
}

// Get returns the diagram and refreshes its last access time.
func (s *MemoryStore) Get(_ context.Context, id string) (*Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.lastAccess = time.Now()
	return clone(e.diagram), nil
}

// Update replaces the stored diagram with the same ID, keeping CreatedAt.
func (s *MemoryStore) Update(_ context.Context, d Diagram) (*Diagram, error) {
	if err := validate(&d); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[d.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, d.ID)
	}
	now := time.Now()
	d.CreatedAt = e.diagram.CreatedAt
	d.UpdatedAt = now
	e.diagram = clone(&d)
	e.lastAccess = now
	return clone(e.diagram), nil
}

// Delete removes a diagram.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.entries, id)
	return nil
}

// List returns every diagram, most recently updated first.
func (s *MemoryStore) List(_ context.Context) ([]*Diagram, error) {
	s.mu.RLock()
	out := make([]*Diagram, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, clone(e.diagram))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Len returns the number of stored diagrams.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op; it exists to satisfy Store.
func (s *MemoryStore) Close() error { return nil }

// Cleanup removes diagrams not accessed within the TTL.
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// StartCleanup runs Cleanup every interval until the returned stop function is called.
func (s *MemoryStore) StartCleanup(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
		})
	}
}
