package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRowLimit bounds result set sizes when a query carries no
	// explicit LIMIT clause.
	DefaultRowLimit = 1000

	// DefaultStorageDir is where the registry and per-session store files
	// live unless configured otherwise.
	DefaultStorageDir = "data/api_storage"
)

// Config holds engine settings loaded from an optional YAML file.
type Config struct {
	// StorageDir is the directory holding metadata.db and the per-session
	// store files.
	StorageDir string `yaml:"storage_dir"`

	// ExportDir is where synthesized export paths are placed.
	ExportDir string `yaml:"export_dir"`

	// RowLimit is the ceiling appended to unbounded queries.
	RowLimit int `yaml:"row_limit"`

	// HashParams controls whether request parameters participate in the
	// record fingerprint.
	HashParams *bool `yaml:"hash_params"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	hashParams := true
	return &Config{
		StorageDir: DefaultStorageDir,
		ExportDir:  "exports",
		RowLimit:   DefaultRowLimit,
		HashParams: &hashParams,
	}
}

// LoadConfig reads settings from path. An empty path falls back to
// $HOME/.datamaster.yaml; a missing file yields the defaults. Fields absent
// from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".datamaster.yaml")
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultStorageDir
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "exports"
	}
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = DefaultRowLimit
	}
	if cfg.HashParams == nil {
		hashParams := true
		cfg.HashParams = &hashParams
	}

	return cfg, nil
}

// IncludeParams reports the configured fingerprint policy.
func (c *Config) IncludeParams() bool {
	return c.HashParams == nil || *c.HashParams
}
