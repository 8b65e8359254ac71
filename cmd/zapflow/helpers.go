package main

import (
	"fmt"
	"os"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/wire"
)

// loadDocument reads a flow document of any known shape from disk and returns
// the normalized spec.
func loadDocument(path string) (domain.Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Spec{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	spec, err := wire.Decode(raw)
	if err != nil {
		return domain.Spec{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return engine.Normalize(spec), nil
}
