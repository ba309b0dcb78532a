// Package logging installs the process-wide logger: a text handler writing to
// the console and to a size-rotated file under the configured log directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/haricheung/bizflow/internal/config"
)

// FileName is the active log file inside the log directory.
const FileName = "app.log"

var (
	mu      sync.Mutex
	current *slog.Logger
	file    *lumberjack.Logger
	console io.Writer = os.Stderr
)

// Setup installs the default slog logger and routes the standard log package
// through it.
//
// Expectations:
//   - Creates the log directory if absent
//   - Writes to <dir>/app.log, rotated at MaxSizeMB keeping MaxBackups old files
//   - Also writes to stderr when Console is true
//   - Repeated calls return the installed logger without adding writers
func Setup(cfg config.LoggingConfig) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return current, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create dir: %w", err)
	}
	file = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, FileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}

	var w io.Writer = file
	if cfg.Console {
		w = io.MultiWriter(console, file)
	}
	current = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}))
	slog.SetDefault(current)
	return current, nil
}

// Close flushes and closes the log file. The default logger stays installed
// but further file writes reopen the file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	return file.Close()
}

// ParseLevel maps a config level name to a slog level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// reset drops the installed logger so tests can call Setup again.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	current, file = nil, nil
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}
