// Package loam adapts a Loam document repository to the ports.FlowSource
// interface, so flow documents checked into a content repo can be opened in
// the editor. The repository is read-only from the editor's point of view:
// publishing back goes through a FlowStore, never through Loam.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// Source adapts the Loam library to the FlowSource interface. It works on the
// untyped repository: flow documents either carry the JSON document as their
// body, or keep the whole flow in frontmatter, and only the raw metadata map
// preserves arbitrary frontmatter keys.
type Source struct {
	Repo core.Repository
}

// New creates a new Loam adapter.
func New(repo core.Repository) *Source {
	return &Source{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it as a
// Source. Strict mode keeps numeric types consistent across the JSON and
// Markdown adapters.
func Open(path string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// GetFlow retrieves the raw document of a flow. The document body is the JSON
// flow document; documents that keep the flow in frontmatter instead are
// re-marshaled from the metadata map.
func (s *Source) GetFlow(id string) ([]byte, error) {
	ctx := context.Background()

	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	if body := strings.TrimSpace(doc.Content); body != "" {
		return []byte(body), nil
	}

	raw, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow metadata: %w", err)
	}
	return raw, nil
}

// ListFlows lists all flow documents in the repository.
func (s *Source) ListFlows() ([]string, error) {
	ctx := context.Background()
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, trimExtension(doc.ID))
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watchable, ok := s.Repo.(core.Watchable)
	if !ok {
		return nil, fmt.Errorf("loam repository does not support watching")
	}
	events, err := watchable.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: one pending signal is enough.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}
