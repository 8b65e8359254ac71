package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/internal/logging"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates flow access, ensuring safe concurrent edits.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.FlowStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger            // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new flow Manager with the given persistence store.
func NewManager(store ports.FlowStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(flowID) after unlocking.
func (m *Manager) acquire(flowID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[flowID]
	if !exists {
		entry = &lockEntry{}
		m.locks[flowID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(flowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[flowID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, flowID)
	}
}

// Load retrieves an existing flow from the store.
func (m *Manager) Load(ctx context.Context, flowID string) (domain.Spec, error) {
	var spec domain.Spec
	err := m.WithLock(ctx, flowID, func(ctx context.Context) error {
		var err error
		spec, err = m.store.Load(ctx, flowID)
		return err
	})
	return spec, err
}

// LoadOrCreate tries to load a flow. If not found, it initializes the default
// single-screen spec and persists it to reserve the ID. Whatever comes back
// from the store is normalized before it becomes editor state.
func (m *Manager) LoadOrCreate(ctx context.Context, flowID string) (domain.Spec, error) {
	var spec domain.Spec
	err := m.WithLock(ctx, flowID, func(ctx context.Context) error {
		loaded, err := m.store.Load(ctx, flowID)
		if err == nil {
			spec = engine.Normalize(loaded)
			return nil
		}

		if err != domain.ErrFlowNotFound {
			return fmt.Errorf("failed to check flow existence: %w", err)
		}

		// Not found, create new
		spec = domain.NewSpec()
		if err := m.store.Save(ctx, flowID, spec); err != nil {
			return fmt.Errorf("failed to initialize flow: %w", err)
		}
		return nil
	})
	return spec, err
}

// Save persists the flow spec.
func (m *Manager) Save(ctx context.Context, flowID string, spec domain.Spec) error {
	return m.WithLock(ctx, flowID, func(ctx context.Context) error {
		return m.store.Save(ctx, flowID, spec)
	})
}

// Edit loads the flow, applies one edit through the engine, persists the
// result and reports what changed. The whole read-modify-write runs under the
// flow lock, so concurrent editors serialize instead of clobbering each
// other.
func (m *Manager) Edit(ctx context.Context, flowID string, edit domain.Edit) (domain.Spec, *domain.SpecDiff, error) {
	var (
		next domain.Spec
		diff *domain.SpecDiff
	)
	err := m.WithLock(ctx, flowID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, flowID)
		if err == domain.ErrFlowNotFound {
			current = domain.NewSpec()
		} else if err != nil {
			return fmt.Errorf("failed to load flow: %w", err)
		}
		current = engine.Normalize(current)

		next = engine.Apply(current, edit)
		diff = domain.DiffSpecs(flowID, current, next)
		if diff == nil && next.Selected == current.Selected {
			// No graph change and no reselection: nothing to persist.
			return nil
		}
		if err := m.store.Save(ctx, flowID, next); err != nil {
			return fmt.Errorf("failed to save flow: %w", err)
		}
		return nil
	})
	return next, diff, err
}

// Delete removes the flow from the store.
func (m *Manager) Delete(ctx context.Context, flowID string) error {
	return m.WithLock(ctx, flowID, func(ctx context.Context) error {
		return m.store.Delete(ctx, flowID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying flow store.
func (m *Manager) Store() ports.FlowStore {
	return m.store
}

// WithLock executes a function while holding the lock for the flow.
func (m *Manager) WithLock(ctx context.Context, flowID string, fn func(context.Context) error) error {
	entry := m.acquire(flowID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(flowID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, flowID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"flow_id", flowID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
