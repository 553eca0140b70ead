package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes how the SDK logger should behave. Zero values produce an
// info-level JSON logger on stdout, which is the surface the host captures for
// the agent console.
type Config struct {
	Level       string
	Format      string
	OutputPaths []string
}

var (
	defaultLogger *slog.Logger
	once          sync.Once
	files         []*os.File
	initErr       error
)

// Init configures the package logger. The first call wins; later calls return
// the outcome of the first.
func Init(cfg Config) error {
	once.Do(func() {
		handler, err := buildHandler(cfg)
		if err != nil {
			initErr = err
			return
		}
		defaultLogger = slog.New(handler)
	})
	if initErr != nil {
		return initErr
	}
	if defaultLogger == nil {
		return errors.New("logger already initialised")
	}
	return nil
}

func buildHandler(cfg Config) (slog.Handler, error) {
	writers := make([]io.Writer, 0, len(cfg.OutputPaths))
	if len(cfg.OutputPaths) == 0 {
		writers = append(writers, os.Stdout)
	}
	for _, out := range cfg.OutputPaths {
		switch strings.ToLower(out) {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
			file, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", out, err)
			}
			files = append(files, file)
			writers = append(writers, file)
		}
	}

	var writer io.Writer
	if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(writer, opts), nil
	}
	return slog.NewJSONHandler(writer, opts), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// L returns the package logger, initialising it with defaults when needed.
func L() *slog.Logger {
	if defaultLogger == nil {
		_ = Init(Config{})
	}
	return defaultLogger
}

// Named returns a child logger tagged with a component name.
func Named(name string) *slog.Logger {
	return L().With("component", name)
}

// Sync flushes any file-backed outputs.
func Sync() error {
	var err error
	for _, file := range files {
		err = errors.Join(err, file.Sync())
	}
	return err
}
