// Package logger provides slog handlers for terminal and structured output.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// ColorHandler wraps a text handler and colors records by level: warnings
// yellow, errors red, persistence messages green.
type ColorHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	inner slog.Handler
	buf   *strings.Builder
}

// NewColorHandler creates a handler that writes colored text records to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	buf := &strings.Builder{}
	return &ColorHandler{
		mu:    &sync.Mutex{},
		out:   w,
		inner: slog.NewTextHandler(buf, opts),
		buf:   buf,
	}
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, record); err != nil {
		return err
	}

	color := ""
	switch {
	case record.Level >= slog.LevelError:
		color = colorRed
	case record.Level >= slog.LevelWarn:
		color = colorYellow
	case record.Level < slog.LevelInfo:
		color = colorGray
	case strings.Contains(record.Message, "persist") || strings.Contains(record.Message, "Persist"):
		color = colorGreen
	}

	line := h.buf.String()
	if color != "" {
		line = color + strings.TrimSuffix(line, "\n") + colorReset + "\n"
	}
	_, err := io.WriteString(h.out, line)
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{mu: h.mu, out: h.out, inner: h.inner.WithAttrs(attrs), buf: h.buf}
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{mu: h.mu, out: h.out, inner: h.inner.WithGroup(name), buf: h.buf}
}

// NewDefaultLogger creates a colored stderr logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// New creates a logger from string level and format settings. Format "json"
// produces structured output; anything else produces colored text.
func New(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	}
	return NewDefaultLogger(lvl)
}
