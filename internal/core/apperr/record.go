package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Record is one classified failure. It is constructed where the failure is
// caught and immutable afterwards; logging and handlers consume it read-only.
type Record struct {
	Kind             Kind
	Severity         Severity
	TechnicalMessage string
	UserMessage      string
	Cause            error
	CreatedAt        time.Time
	Context          map[string]any
}

// Error implements the error interface
func (r *Record) Error() string {
	return fmt.Sprintf("[%s/%s] %s", r.Kind, r.Severity, r.TechnicalMessage)
}

// Unwrap returns the original failure
func (r *Record) Unwrap() error {
	return r.Cause
}

// Classify converts any raised failure into a Record. A failure that is
// already a Record passes through unchanged, so wrapping layers never
// re-classify or double-log. A nil error yields a generic record.
func Classify(err error, kind Kind, severity Severity, context map[string]any) *Record {
	var rec *Record
	if errors.As(err, &rec) {
		return rec
	}

	technical := "Unknown error occurred"
	if err != nil {
		technical = err.Error()
	}

	return &Record{
		Kind:             kind,
		Severity:         severity,
		TechnicalMessage: technical,
		UserMessage:      UserMessage(kind),
		Cause:            err,
		CreatedAt:        time.Now(),
		Context:          context,
	}
}
