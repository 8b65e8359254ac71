package zapflow

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/internal/logging"
	"github.com/zapflow/zapflow/internal/presentation/graph"
	"github.com/zapflow/zapflow/internal/presentation/tui"
	"github.com/zapflow/zapflow/internal/validator"
	loamAdapter "github.com/zapflow/zapflow/pkg/adapters/loam"
	"github.com/zapflow/zapflow/pkg/adapters/memory"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/observability"
	"github.com/zapflow/zapflow/pkg/persistence/middleware"
	"github.com/zapflow/zapflow/pkg/ports"
	"github.com/zapflow/zapflow/pkg/session"
	"github.com/zapflow/zapflow/pkg/wire"
)

// Editor is the high-level entry point for the zapflow library.
// It wraps the session manager and the graph engine behind a simplified API
// for consumers embedding the editor.
type Editor struct {
	sessions *session.Manager
	store    ports.FlowStore
	source   ports.FlowSource
	locker   ports.DistributedLocker
	metrics  *observability.Metrics
	logger   *slog.Logger
	stack    []middleware.Middleware
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithStore injects a custom FlowStore, bypassing the default in-memory one.
func WithStore(store ports.FlowStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithSource attaches a read-only flow source (e.g. a Loam repository).
func WithSource(source ports.FlowSource) Option {
	return func(e *Editor) {
		e.source = source
	}
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Editor) {
		e.locker = locker
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithPersistenceMiddleware wraps the store (encryption, PII masking). Applied
// in order, so the first middleware sees the plain spec.
func WithPersistenceMiddleware(mw ...middleware.Middleware) Option {
	return func(e *Editor) {
		e.stack = append(e.stack, mw...)
	}
}

// New initializes a new Editor. By default flows live in memory; inject a
// store for durability.
func New(opts ...Option) (*Editor, error) {
	ed := &Editor{}

	for _, opt := range opts {
		opt(ed)
	}

	if ed.store == nil {
		ed.store = memory.NewStore()
	}
	for i := len(ed.stack) - 1; i >= 0; i-- {
		ed.store = ed.stack[i](ed.store)
	}

	if ed.logger == nil {
		ed.logger = logging.NewNop()
	}

	sessionOpts := []session.Option{session.WithLogger(ed.logger)}
	if ed.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(ed.locker))
	}
	ed.sessions = session.NewManager(ed.store, sessionOpts...)

	return ed, nil
}

// OpenSource initializes a read-only Loam repository at path and returns it
// as a source suitable for WithSource.
func OpenSource(path string) (ports.FlowSource, error) {
	if path == "" {
		return nil, fmt.Errorf("source path is required")
	}
	return loamAdapter.Open(path)
}

// Open loads a flow, creating it with the default single screen when it does
// not exist yet.
func (e *Editor) Open(ctx context.Context, flowID string) (domain.Spec, error) {
	spec, err := e.sessions.LoadOrCreate(ctx, flowID)
	if err != nil {
		return domain.Spec{}, err
	}
	e.metrics.FlowOpened()
	e.logger.Info("flow opened", "flow_id", flowID, "screens", len(spec.Screens))
	return spec, nil
}

// Apply applies one edit to a flow and returns the resulting state and diff.
func (e *Editor) Apply(ctx context.Context, flowID string, edit domain.Edit) (domain.Spec, *domain.SpecDiff, error) {
	start := time.Now()
	spec, diff, err := e.sessions.Edit(ctx, flowID, edit)
	if err != nil {
		return domain.Spec{}, nil, err
	}
	e.metrics.RecordEdit(string(edit.Type))
	e.metrics.ObserveNormalize(time.Since(start).Seconds())
	return spec, diff, nil
}

// Issues runs validation on the flow's current state.
func (e *Editor) Issues(ctx context.Context, flowID string) ([]string, error) {
	spec, err := e.sessions.LoadOrCreate(ctx, flowID)
	if err != nil {
		return nil, err
	}
	issues := validator.Check(spec)
	e.metrics.SetIssues(flowID, len(issues))
	return issues, nil
}

// Document exports the flow as the wire-format JSON document.
func (e *Editor) Document(ctx context.Context, flowID string) ([]byte, error) {
	spec, err := e.sessions.LoadOrCreate(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return wire.MarshalDocument(wire.Encode(spec))
}

// Import replaces the flow's state with a decoded document of any known
// shape. The result is normalized before persisting.
func (e *Editor) Import(ctx context.Context, flowID string, raw []byte) (domain.Spec, error) {
	decoded, err := wire.Decode(raw)
	if err != nil {
		return domain.Spec{}, err
	}
	spec := engine.Normalize(decoded)
	if err := e.sessions.Save(ctx, flowID, spec); err != nil {
		return domain.Spec{}, err
	}
	return spec, nil
}

// Graph renders the flow as a Mermaid diagram, highlighting the screen
// currently selected in the editor when there is one.
func (e *Editor) Graph(ctx context.Context, flowID string) (string, error) {
	spec, err := e.sessions.LoadOrCreate(ctx, flowID)
	if err != nil {
		return "", err
	}
	var overlay *graph.GraphOverlay
	if spec.Selected != "" {
		overlay = &graph.GraphOverlay{SelectedScreen: spec.Selected}
	}
	return graph.GenerateMermaid(spec, overlay), nil
}

// Preview renders a markdown preview of every screen of the flow.
func (e *Editor) Preview(ctx context.Context, flowID string) (string, error) {
	spec, err := e.sessions.LoadOrCreate(ctx, flowID)
	if err != nil {
		return "", err
	}
	return tui.FlowMarkdown(spec), nil
}

// Delete removes a flow.
func (e *Editor) Delete(ctx context.Context, flowID string) error {
	if err := e.sessions.Delete(ctx, flowID); err != nil {
		return err
	}
	e.metrics.FlowClosed()
	return nil
}

// List returns the stored flow IDs.
func (e *Editor) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Sessions exposes the underlying session manager for adapters.
func (e *Editor) Sessions() *session.Manager {
	return e.sessions
}

// Source returns the configured read-only flow source, or nil.
func (e *Editor) Source() ports.FlowSource {
	return e.source
}

// Metrics returns the configured collectors, or nil.
func (e *Editor) Metrics() *observability.Metrics {
	return e.metrics
}
