package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxFileSize != config.DefaultMaxFileSize {
		t.Errorf("Expected max_file_size %q, got %q", config.DefaultMaxFileSize, cfg.MaxFileSize)
	}
	if cfg.Logging.Level != config.DefaultLogLevel {
		t.Errorf("Expected log level %q, got %q", config.DefaultLogLevel, cfg.Logging.Level)
	}
	if len(cfg.Exclude) == 0 {
		t.Error("Expected default exclusions")
	}
	if cfg.JournalPath == "" {
		t.Error("Expected a default journal path")
	}
}

func TestLoadFromFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "retrace")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	content := []byte("max_file_size: 4MiB\nlogging:\n  level: debug\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxFileSize != "4MiB" {
		t.Errorf("Expected max_file_size 4MiB, got %q", cfg.MaxFileSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RETRACE_MAX_FILE_SIZE", "8MiB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxFileSize != "8MiB" {
		t.Errorf("Expected max_file_size 8MiB from env, got %q", cfg.MaxFileSize)
	}
}

func TestWriteDefault(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if err := config.WriteDefault(); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	path := filepath.Join(configHome, "retrace", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file at %s: %v", path, err)
	}

	// The written default must load back cleanly.
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load after WriteDefault failed: %v", err)
	}
	if cfg.MaxFileSize != config.DefaultMaxFileSize {
		t.Errorf("Expected default max_file_size, got %q", cfg.MaxFileSize)
	}

	// Idempotent: an existing file is left alone.
	if err := config.WriteDefault(); err != nil {
		t.Fatalf("Second WriteDefault failed: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/data/journal")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	want := filepath.Join(home, "data", "journal")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got, err = config.ExpandPath("/absolute/path")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != "/absolute/path" {
		t.Errorf("Absolute path modified: %q", got)
	}
}
