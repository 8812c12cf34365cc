package testutil

import (
	"path/filepath"
	"testing"

	"github.com/szqshan/datamaster/internal"
)

// NewTestConfig returns a config rooted in a per-test temp directory.
func NewTestConfig(t *testing.T) *internal.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := internal.DefaultConfig()
	cfg.StorageDir = filepath.Join(dir, "api_storage")
	cfg.ExportDir = filepath.Join(dir, "exports")
	return cfg
}

// OpenTestRegistry opens a registry in a temp directory and closes it when
// the test finishes.
func OpenTestRegistry(t *testing.T) *internal.Registry {
	t.Helper()
	return OpenTestRegistryWithConfig(t, NewTestConfig(t))
}

// OpenTestRegistryWithConfig opens a registry for the given config and
// closes it when the test finishes.
func OpenTestRegistryWithConfig(t *testing.T, cfg *internal.Config) *internal.Registry {
	t.Helper()
	registry, err := internal.OpenRegistry(cfg)
	if err != nil {
		t.Fatalf("Failed to open registry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })
	return registry
}

// CreateTestSession creates a session with placeholder metadata.
func CreateTestSession(t *testing.T, registry *internal.Registry, name string) *internal.SessionMetadata {
	t.Helper()
	meta, err := registry.Create(name, "demo", "users", "test session")
	if err != nil {
		t.Fatalf("Failed to create session %s: %v", name, err)
	}
	return meta
}

// InsertTestRecord inserts one record into the session and returns the
// insert result.
func InsertTestRecord(t *testing.T, registry *internal.Registry, sessionID string, payload, params interface{}) *internal.InsertResult {
	t.Helper()
	store, err := registry.OpenStore(sessionID)
	if err != nil {
		t.Fatalf("Failed to open store for %s: %v", sessionID, err)
	}
	defer store.Close()

	res, err := store.Insert(payload, nil, params)
	if err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}
	return res
}
