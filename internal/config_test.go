package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.StorageDir != DefaultStorageDir {
		t.Errorf("StorageDir = %q, want %q", cfg.StorageDir, DefaultStorageDir)
	}
	if cfg.RowLimit != DefaultRowLimit {
		t.Errorf("RowLimit = %d, want %d", cfg.RowLimit, DefaultRowLimit)
	}
	if !cfg.IncludeParams() {
		t.Error("IncludeParams() = false, want true by default")
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage_dir: /tmp/custom_storage
row_limit: 50
hash_params: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.StorageDir != "/tmp/custom_storage" {
		t.Errorf("StorageDir = %q", cfg.StorageDir)
	}
	if cfg.RowLimit != 50 {
		t.Errorf("RowLimit = %d, want 50", cfg.RowLimit)
	}
	if cfg.IncludeParams() {
		t.Error("IncludeParams() = true, want false from file")
	}
	if cfg.ExportDir == "" {
		t.Error("ExportDir should fall back to the default")
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("row_limit: 25\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.RowLimit != 25 {
		t.Errorf("RowLimit = %d, want 25", cfg.RowLimit)
	}
	if cfg.StorageDir != DefaultStorageDir {
		t.Errorf("StorageDir = %q, want default", cfg.StorageDir)
	}
	if !cfg.IncludeParams() {
		t.Error("IncludeParams() should default to true when absent")
	}
}

func TestLoadConfig_MissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("LoadConfig() of an explicitly named missing file should fail")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("row_limit: [not a number"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() of invalid YAML should fail")
	}
}
