// Package config loads the editor's server configuration from a YAML or JSON
// file, with environment variables overriding the file for containerized
// deployments.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the structure of zapflow.yaml.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `yaml:"addr" json:"addr"`

	// Redis enables the Redis store and locker when Address is set; with it
	// empty everything runs on the in-memory store.
	Redis RedisConfig `yaml:"redis" json:"redis"`

	// EncryptionKey is the base64-encoded 32-byte AES key for at-rest
	// encryption. Empty disables the encryption middleware.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`

	// PIIPatterns are regexes matched against screen data keys; matching
	// values are masked before persisting.
	PIIPatterns []string `yaml:"pii_patterns" json:"pii_patterns"`

	// FlowsDir points at a Loam repository of flow documents to expose as a
	// read-only source. Empty disables the source.
	FlowsDir string `yaml:"flows_dir" json:"flows_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
	}
}

// Load reads a configuration file (YAML or JSON) and applies environment
// overrides. A missing file is not an error: defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".json" {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config json: %w", err)
			}
		} else {
			// Default to YAML
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config yaml: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ZAPFLOW_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ZAPFLOW_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("ZAPFLOW_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ZAPFLOW_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("ZAPFLOW_ENCRYPTION_KEY"); v != "" {
		cfg.EncryptionKey = v
	}
	if v := os.Getenv("ZAPFLOW_FLOWS_DIR"); v != "" {
		cfg.FlowsDir = v
	}
	if v := os.Getenv("ZAPFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
