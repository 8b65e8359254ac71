package ports

import (
	"context"

	"github.com/zapflow/zapflow/pkg/domain"
)

// FlowStore defines the interface for persisting flow specs.
// Each flow is a whole spec snapshot keyed by flow ID; edits replace the
// snapshot rather than appending deltas.
type FlowStore interface {
	// Save persists the spec for a given flow ID.
	Save(ctx context.Context, flowID string, spec domain.Spec) error

	// Load retrieves the spec for a given flow ID.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, flowID string) (domain.Spec, error)

	// Delete removes the spec for a given flow ID.
	Delete(ctx context.Context, flowID string) error

	// List returns the IDs of every stored flow.
	List(ctx context.Context) ([]string, error)
}
