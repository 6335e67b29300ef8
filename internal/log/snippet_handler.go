package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the length at which string attribute values are
// truncated. Long enough to keep an identifying excerpt, short enough
// that a full component file never lands in the log.
const DefaultMaxValueLen = 160

// Ellipsis marks a truncated value, with the original length appended.
const Ellipsis = "..."

// SnippetHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records on.
//
// Design decision: We use a handler wrapper rather than trimming at
// every call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free of presentation concerns
type SnippetHandler struct {
	// handler is the underlying slog handler that receives trimmed records.
	handler slog.Handler

	// maxValueLen is the truncation threshold in bytes.
	maxValueLen int
}

// SnippetHandlerOption configures a SnippetHandler.
type SnippetHandlerOption func(*SnippetHandler)

// WithMaxValueLen sets the truncation threshold.
// Values below one are ignored.
func WithMaxValueLen(n int) SnippetHandlerOption {
	return func(h *SnippetHandler) {
		if n > 0 {
			h.maxValueLen = n
		}
	}
}

// NewSnippetHandler creates a SnippetHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSnippetHandler(handler slog.Handler, opts ...SnippetHandlerOption) *SnippetHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	h := &SnippetHandler{
		handler:     handler,
		maxValueLen: DefaultMaxValueLen,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SnippetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it to the underlying
// handler.
func (h *SnippetHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})

	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are trimmed before being added.
func (h *SnippetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &SnippetHandler{handler: h.handler.WithAttrs(trimmedAttrs), maxValueLen: h.maxValueLen}
}

// WithGroup returns a new handler with the given group name.
func (h *SnippetHandler) WithGroup(name string) slog.Handler {
	return &SnippetHandler{handler: h.handler.WithGroup(name), maxValueLen: h.maxValueLen}
}

// trimAttr truncates a single attribute, recursively handling groups.
func (h *SnippetHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	strVal := a.Value.String()
	if len(strVal) <= h.maxValueLen {
		return a
	}

	return slog.String(a.Key, truncate(strVal, h.maxValueLen))
}

// truncate cuts s at a rune boundary at or below maxLen bytes and
// appends an ellipsis with the original byte length.
func truncate(s string, maxLen int) string {
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s%s(%d bytes)", s[:cut], Ellipsis, len(s))
}

// NewLogger creates a *slog.Logger writing text records to w, with all
// string attribute values trimmed through a SnippetHandler.
//
// Parameters:
//   - w: the io.Writer to write log output to (typically os.Stderr)
//   - verbose: if true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewSnippetHandler(textHandler))
}
