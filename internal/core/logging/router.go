package logging

import (
	"context"
	"log/slog"
)

// splitHandler routes records below threshold to the low handler and
// everything else to the high handler. Both handlers share the same
// LevelVar so SetLevel applies uniformly.
type splitHandler struct {
	threshold slog.Level
	low       slog.Handler
	high      slog.Handler
}

func (h *splitHandler) Enabled(ctx context.Context, lv slog.Level) bool {
	if lv >= h.threshold {
		return h.high.Enabled(ctx, lv)
	}
	return h.low.Enabled(ctx, lv)
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.threshold {
		return h.high.Handle(ctx, r)
	}
	return h.low.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{
		threshold: h.threshold,
		low:       h.low.WithAttrs(attrs),
		high:      h.high.WithAttrs(attrs),
	}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{
		threshold: h.threshold,
		low:       h.low.WithGroup(name),
		high:      h.high.WithGroup(name),
	}
}
