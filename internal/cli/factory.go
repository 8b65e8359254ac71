// Package cli holds the wiring shared by the zapflow commands: turning a
// configuration file into a fully assembled Editor with the right store,
// middleware and metrics.
package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zapflow/zapflow"
	"github.com/zapflow/zapflow/internal/config"
	"github.com/zapflow/zapflow/internal/logging"
	redisAdapter "github.com/zapflow/zapflow/pkg/adapters/redis"
	"github.com/zapflow/zapflow/pkg/observability"
	"github.com/zapflow/zapflow/pkg/persistence/middleware"
)

// NewLogger builds the standard CLI logger from a config level string.
func NewLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return logging.New(l)
}

// BuildEditor assembles an Editor from configuration: Redis store and locker
// when an address is configured, in-memory otherwise; encryption and PII
// middleware when configured; Loam source when a flows directory is set.
func BuildEditor(cfg config.Config, logger *slog.Logger, withMetrics bool) (*zapflow.Editor, error) {
	opts := []zapflow.Option{zapflow.WithLogger(logger)}

	if cfg.Redis.Address != "" {
		store := redisAdapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		opts = append(opts, zapflow.WithStore(store))
		opts = append(opts, zapflow.WithLocker(redisAdapter.NewLocker(store.Client(), "zapflow:")))
		logger.Info("using redis store", "address", cfg.Redis.Address)
	}

	var stack []middleware.Middleware
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(key))
		}
		stack = append(stack, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	if len(cfg.PIIPatterns) > 0 {
		stack = append(stack, middleware.NewPIIMiddleware(cfg.PIIPatterns))
	}
	if len(stack) > 0 {
		opts = append(opts, zapflow.WithPersistenceMiddleware(stack...))
	}

	if cfg.FlowsDir != "" {
		source, err := zapflow.OpenSource(cfg.FlowsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open flows dir: %w", err)
		}
		opts = append(opts, zapflow.WithSource(source))
	}

	if withMetrics {
		opts = append(opts, zapflow.WithMetrics(observability.NewMetrics(prometheus.DefaultRegisterer)))
	}

	return zapflow.New(opts...)
}
