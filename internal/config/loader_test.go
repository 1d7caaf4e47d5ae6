package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Addr != Default().Addr {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}
}

func TestLoadReadsExistingFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9999\"\nhistory_limit: 42\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr = %q, want :9999", cfg.Addr)
	}
	if cfg.HistoryLimit != 42 {
		t.Fatalf("history_limit = %d, want 42", cfg.HistoryLimit)
	}
}

func TestUpdateFromOnlyOverwritesNonZero(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234"})
	if cfg.Addr != ":1234" {
		t.Fatalf("addr not overwritten")
	}
	if cfg.LogLevel != Default().LogLevel {
		t.Fatalf("log level should be untouched")
	}
}
