package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Handler is a slog.Handler that writes records through a Logger, so packages
// logging with log/slog end up in the configured sinks.
type Handler struct {
	logger *Logger
	// attrs holds attributes already rendered with the groups open at the time.
	attrs  string
	groups []string
}

// NewHandler returns a slog handler backed by logger.
func NewHandler(logger *Logger) *Handler {
	return &Handler{logger: logger}
}

// Enabled lets every record through; sink thresholds decide.
func (h *Handler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)

	b.WriteString(h.attrs)

	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, prefix, a)
		return true
	})

	h.logger.Log(levelFromSlog(r.Level), b.String())
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		appendAttr(&b, prefix, a)
	}

	next := *h
	next.attrs = b.String()
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, key, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}

// SetDefault routes slog.Default through logger.
func SetDefault(logger *Logger) {
	slog.SetDefault(slog.New(NewHandler(logger)))
}

var _ slog.Handler = (*Handler)(nil)
