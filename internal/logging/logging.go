// Package logging configures the process-wide slog logger.
//
// Console output goes to stderr as text or JSON. When a file is configured,
// records are also written as JSON to a size-rotated log file.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment overrides read by FromEnv.
const (
	EnvLevel  = "AIRCANVAS_LOG_LEVEL"
	EnvFormat = "AIRCANVAS_LOG_FORMAT"
	EnvFile   = "AIRCANVAS_LOG_FILE"
)

// Options controls logger initialization.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // "text" or "json"
	AddSource bool
	File      string // optional rotated log file
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	closer  io.Closer
)

// Init builds the logger from opts and installs it as slog.Default.
func Init(opts Options) *slog.Logger {
	lvl := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, hopts)
	} else {
		console = slog.NewTextHandler(os.Stderr, hopts)
	}

	h := console
	var fileCloser io.Closer
	if path := strings.TrimSpace(opts.File); path != "" {
		w := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileCloser = w
		h = &fanout{handlers: []slog.Handler{console, slog.NewJSONHandler(w, hopts)}}
	}

	logger := slog.New(h).With(slog.String("app", "aircanvas"))

	mu.Lock()
	if closer != nil {
		closer.Close()
	}
	current = logger
	closer = fileCloser
	mu.Unlock()

	slog.SetDefault(logger)
	return logger
}

// L returns the configured logger, initializing from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Init(FromEnv())
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(name string) *slog.Logger {
	return L().With(slog.String("component", name))
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:  getenv(EnvLevel, "info"),
		Format: getenv(EnvFormat, "text"),
		File:   os.Getenv(EnvFile),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
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

// fanout sends each record to every handler.
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: hs}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &fanout{handlers: hs}
}
