package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zapflow/zapflow/pkg/domain"
)

// Store implements ports.FlowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Spec
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Spec),
	}
}

// Save persists the spec in memory.
func (s *Store) Save(ctx context.Context, flowID string, spec domain.Spec) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := spec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flowID] = copied
	return nil
}

// Load retrieves the spec from memory.
func (s *Store) Load(ctx context.Context, flowID string) (domain.Spec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.data[flowID]
	if !ok {
		return domain.Spec{}, domain.ErrFlowNotFound
	}

	// Copy on read so the caller can't mutate store state through shared maps
	return spec.Clone(), nil
}

// Delete removes the flow.
func (s *Store) Delete(ctx context.Context, flowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, flowID)
	return nil
}

// List returns the stored flow IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flows := make([]string, 0, len(s.data))
	for id := range s.data {
		flows = append(flows, id)
	}
	sort.Strings(flows)
	return flows, nil
}
