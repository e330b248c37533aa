package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingDefaultPath(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BufferRows != 5 || cfg.PageJump != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatal("explicit missing config should error")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "buffer_rows: 12\nfilter_debounce_ms: 300\nlogging:\n  level: debug\n  sink: stderr\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BufferRows != 12 {
		t.Fatalf("buffer_rows = %d", cfg.BufferRows)
	}
	if cfg.FilterDebounce() != 300*time.Millisecond {
		t.Fatalf("filter_debounce = %v", cfg.FilterDebounce())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	// untouched fields keep defaults
	if cfg.PageJump != 10 {
		t.Fatalf("page_jump = %d", cfg.PageJump)
	}
}

func TestSanitized(t *testing.T) {
	cfg := Config{RowHeight: -3, PageJump: 0}.sanitized()
	if cfg.RowHeight != 1 || cfg.PageJump != 10 {
		t.Fatalf("sanitized = %+v", cfg)
	}
}
