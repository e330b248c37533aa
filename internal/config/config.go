// Package config loads the optional YAML config file controlling windowing
// constants, input timing and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/surprisetalk/gridsheet/internal/logging"
)

// Config is the full application configuration.
type Config struct {
	// RowHeight is the height of one data row in cells. Terminal rows are
	// one cell tall; larger values are honored by the window math anyway.
	RowHeight int `yaml:"row_height,omitempty"`
	// BufferRows is the fixed windowing margin above and below the visible
	// slice.
	BufferRows int `yaml:"buffer_rows,omitempty"`
	// FilterDebounceMS collapses a burst of filter keystrokes into one
	// recomputation.
	FilterDebounceMS int `yaml:"filter_debounce_ms,omitempty"`
	// PageJump is how many rows PageUp/PageDown move.
	PageJump int `yaml:"page_jump,omitempty"`

	Logging logging.Config `yaml:"logging,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RowHeight:        1,
		BufferRows:       5,
		FilterDebounceMS: 150,
		PageJump:         10,
		Logging: logging.Config{
			Level: "error",
			Sink:  string(logging.SinkNone),
		},
	}
}

// DefaultPath is the conventional config location; a missing file is fine.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "gridsheet", "config.yaml")
}

// Load reads path over the defaults. An empty path or a missing file at the
// default location yields the defaults; an explicit path must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.sanitized(), nil
}

func (c Config) sanitized() Config {
	d := Default()
	if c.RowHeight < 1 {
		c.RowHeight = d.RowHeight
	}
	if c.BufferRows < 0 {
		c.BufferRows = d.BufferRows
	}
	if c.FilterDebounceMS <= 0 {
		c.FilterDebounceMS = d.FilterDebounceMS
	}
	if c.PageJump < 1 {
		c.PageJump = d.PageJump
	}
	return c
}

// FilterDebounce returns the debounce delay as a duration.
func (c Config) FilterDebounce() time.Duration {
	return time.Duration(c.FilterDebounceMS) * time.Millisecond
}
