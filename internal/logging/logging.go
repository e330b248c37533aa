// Package logging configures the process-wide slog logger. A TUI owns the
// terminal, so the default sink is a rotated file rather than stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Sink string

const (
	SinkStderr Sink = "stderr"
	SinkFile   Sink = "file"
	SinkNone   Sink = "none"
)

// Config selects level, format and sink. Zero values mean the quiet
// defaults: error level, text format, no output.
type Config struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	Sink   string `yaml:"sink,omitempty"`
	File   string `yaml:"file,omitempty"`

	MaxSizeMB  int  `yaml:"max_size_mb,omitempty"`
	MaxBackups int  `yaml:"max_backups,omitempty"`
	Compress   bool `yaml:"compress,omitempty"`
}

// Setup builds a logger from cfg. The returned closer flushes the file sink,
// if any.
func Setup(cfg Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelError
	switch strings.ToLower(cfg.Level) {
	case "", "error":
		level = slog.LevelError
	case "warn", "warning":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	var w io.Writer
	var closer io.Closer
	switch Sink(cfg.Sink) {
	case SinkStderr:
		w = os.Stderr
	case SinkFile:
		if cfg.File == "" {
			return nil, nil, fmt.Errorf("log sink %q needs a file path", cfg.Sink)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(cfg.MaxSizeMB, 10),
			MaxBackups: max(cfg.MaxBackups, 3),
			Compress:   cfg.Compress,
		}
		w = lj
		closer = lj
	case SinkNone, "":
		return slog.New(slog.DiscardHandler), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown log sink %q", cfg.Sink)
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch Format(cfg.Format) {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	case FormatText, "":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(h), closer, nil
}
