package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the maximum length of a logged string
// attribute value before truncation. Long enough for any grouping key
// or file path, short enough that a dumped subtree cannot flood a
// line.
const DefaultMaxValueLen = 256

// truncationMark is appended to shortened values so a reader knows
// content was dropped.
const truncationMark = "…(truncated)"

// TruncatingHandler wraps an slog.Handler and caps oversized string
// attribute values before passing records on.
//
// Design decision: a handler wrapper rather than a custom logger
// because it integrates with standard slog APIs, works with any
// underlying handler (text, JSON), and composes with handlers other
// packages install.
type TruncatingHandler struct {
	// handler is the underlying slog handler receiving capped records.
	handler slog.Handler

	// maxLen is the value length cap in bytes.
	maxLen int
}

// TruncatingHandlerOption configures a TruncatingHandler.
type TruncatingHandlerOption func(*TruncatingHandler)

// WithMaxValueLen overrides the value length cap. Non-positive values
// keep the default.
func WithMaxValueLen(n int) TruncatingHandlerOption {
	return func(h *TruncatingHandler) {
		if n > 0 {
			h.maxLen = n
		}
	}
}

// NewTruncatingHandler creates a TruncatingHandler wrapping the given
// handler. A nil handler wraps slog.Default()'s handler.
func NewTruncatingHandler(handler slog.Handler, opts ...TruncatingHandlerOption) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &TruncatingHandler{handler: handler, maxLen: DefaultMaxValueLen}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled delegates to the underlying handler.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle caps the record's attribute values and passes it on.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	capped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		capped.AddAttrs(h.capAttr(a))
		return true
	})
	return h.handler.Handle(ctx, capped)
}

// WithAttrs returns a new handler with the given attributes added,
// capped first.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cappedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cappedAttrs[i] = h.capAttr(a)
	}
	return &TruncatingHandler{handler: h.handler.WithAttrs(cappedAttrs), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// capAttr shortens one attribute, recursing into groups. Non-string
// scalars are left alone; they cannot grow unbounded. Values of other
// kinds that stringify past the cap (slices, structs) are formatted
// and capped.
func (h *TruncatingHandler) capAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		capped := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			capped[i] = h.capAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(capped...)}
	case slog.KindString:
		if s := a.Value.String(); len(s) > h.maxLen {
			return slog.String(a.Key, h.cut(s))
		}
		return a
	case slog.KindAny:
		s := fmt.Sprintf("%v", a.Value.Any())
		if len(s) > h.maxLen {
			return slog.String(a.Key, h.cut(s))
		}
		return a
	default:
		return a
	}
}

// cut shortens s to the cap on a rune boundary and appends the mark.
func (h *TruncatingHandler) cut(s string) string {
	end := h.maxLen
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + truncationMark
}

// NewLogger creates the application logger: a text handler behind a
// TruncatingHandler. Verbose selects Debug level; otherwise only
// warnings and errors are emitted.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTruncatingHandler(textHandler))
}
