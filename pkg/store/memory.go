package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for development and testing.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]*Diagram
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]*Diagram)}
}

// Get retrieves a diagram by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diagrams[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	copy := *d
	return &copy, nil
}

// Put saves a diagram.
func (s *MemoryStore) Put(ctx context.Context, d *Diagram) error {
	if d == nil || d.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.UpdatedAt = time.Now().UTC()
	copy := *d
	s.diagrams[d.ID] = &copy
	return nil
}

// Delete removes a diagram.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diagrams[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.diagrams, id)
	return nil
}

// List returns all stored diagram IDs, sorted.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.diagrams))
	for id := range s.diagrams {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
