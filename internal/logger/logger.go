// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger holds the process-wide zerolog logger used for diagnostic
// output. User-facing CLI output is written directly to io.Writers instead.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// Options configures the root logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error (default info).
	Level string
	// Format is "console" for human output or "json".
	Format string
	// Writer defaults to stderr.
	Writer io.Writer
}

var root atomic.Pointer[zerolog.Logger]

// Init builds the root logger. Later calls replace it, which lets the CLI
// apply configuration after flags are parsed.
func Init(opt Options) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
	root.Store(&l)
	return &l
}

// Get returns the root logger, initialising it with defaults on first use.
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	return Init(Options{})
}

// Named returns a child logger with a component field.
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

// Nop returns a logger that discards everything, for tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &l
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type ctxKey struct{}

// WithContext stores l on ctx.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// C returns the logger stored on ctx, or the root logger.
func C(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Get()
}
