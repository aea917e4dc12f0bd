// Package logging provides component loggers for retrace, shared by
// the CLI, the watcher and the journal.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("journal")
//	logger.Info("change applied", "kind", "rename", "path", p)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an invalid log level string is
// provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level name into a charmbracelet/log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default level name (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Console mirrors log output to stderr when true.
	Console bool
}

// Logger is a component-scoped logger.
type Logger struct {
	l *log.Logger
}

// Debug logs a debug message with key/value context.
func (l *Logger) Debug(msg string, args ...any) { l.l.Debug(msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.l.Info(msg, args...) }

// Warn logs a warning.
func (l *Logger) Warn(msg string, args ...any) { l.l.Warn(msg, args...) }

// Error logs an error.
func (l *Logger) Error(msg string, args ...any) { l.l.Error(msg, args...) }

// With returns a logger with additional permanent context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l: l.l.With(args...)}
}

type state struct {
	mu          sync.Mutex
	initialized bool
	file        *os.File
	out         io.Writer
	level       log.Level
	loggers     map[string]*Logger
}

var globalState = &state{loggers: make(map[string]*Logger)}

// Init initializes the logging system. Before Init, all loggers write
// to io.Discard.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	if globalState.file != nil {
		_ = globalState.file.Close()
	}

	globalState.level = level
	globalState.file = f
	globalState.out = io.Writer(f)
	if cfg.Console {
		globalState.out = io.MultiWriter(f, os.Stderr)
	}
	globalState.initialized = true
	globalState.loggers = make(map[string]*Logger)
	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	out := io.Writer(io.Discard)
	level := log.InfoLevel
	if globalState.initialized {
		out = globalState.out
		level = globalState.level
	}
	logger := &Logger{l: log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})}
	globalState.loggers[component] = logger
	return logger
}

// Close flushes and closes the log file.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}
	globalState.initialized = false
	globalState.loggers = make(map[string]*Logger)
	if globalState.file != nil {
		err := globalState.file.Close()
		globalState.file = nil
		if err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/retrace/retrace.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "retrace", "retrace.log")
}
