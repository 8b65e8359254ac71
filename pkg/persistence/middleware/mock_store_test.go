package middleware_test

import (
	"context"

	"github.com/zapflow/zapflow/pkg/domain"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]domain.Spec
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Spec),
	}
}

func (s *MockStore) Save(ctx context.Context, flowID string, spec domain.Spec) error {
	s.data[flowID] = spec
	return nil
}

func (s *MockStore) Load(ctx context.Context, flowID string) (domain.Spec, error) {
	spec, ok := s.data[flowID]
	if !ok {
		return domain.Spec{}, domain.ErrFlowNotFound
	}
	return spec, nil
}

func (s *MockStore) Delete(ctx context.Context, flowID string) error {
	delete(s.data, flowID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
