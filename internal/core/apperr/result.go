package apperr

import (
	"context"
	"fmt"
)

// Result is the tagged union returned by RunSafely. Exactly one of Value and
// Err is meaningful, selected by OK.
type Result[T any] struct {
	OK    bool
	Value T
	Err   *Record
}

// RunOption tunes a RunSafely call.
type RunOption func(*runConfig)

type runConfig struct {
	severity Severity
	context  map[string]any
}

// WithSeverity overrides the default Medium severity for failures.
func WithSeverity(s Severity) RunOption {
	return func(c *runConfig) { c.severity = s }
}

// WithContext attaches diagnostic context to any resulting record.
func WithContext(ctx map[string]any) RunOption {
	return func(c *runConfig) { c.context = ctx }
}

// RunSafely executes op and captures its outcome uniformly. Errors and
// panics are classified under kind, handled (logged) exactly once, and
// returned as the Err arm; callers never need their own recovery layer.
func RunSafely[T any](
	ctx context.Context,
	h *Handler,
	kind Kind,
	op func(context.Context) (T, error),
	opts ...RunOption,
) (res Result[T]) {
	cfg := runConfig{severity: SeverityMedium}
	for _, opt := range opts {
		opt(&cfg)
	}

	defer func() {
		if p := recover(); p != nil {
			rec := Classify(fmt.Errorf("panic: %v", p), kind, cfg.severity, cfg.context)
			h.Handle(rec)
			res = Result[T]{Err: rec}
		}
	}()

	value, err := op(ctx)
	if err != nil {
		rec := Classify(err, kind, cfg.severity, cfg.context)
		h.Handle(rec)
		return Result[T]{Err: rec}
	}

	return Result[T]{OK: true, Value: value}
}
