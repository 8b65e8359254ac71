package ports

import "context"

// FlowSource defines how the editor retrieves flow documents from a read-only
// backend (a document repository, a directory of exports). Documents come back
// as raw bytes because the wire codec decides the shape.
type FlowSource interface {
	// GetFlow retrieves the raw document of a flow by ID.
	GetFlow(id string) ([]byte, error)

	// ListFlows returns the IDs of every flow available in the source.
	ListFlows() ([]string, error)
}

// Watchable defines an interface for sources that can notify about backend
// changes. This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying source
	// changes. It abstracts away the specific event details, signaling only
	// that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
