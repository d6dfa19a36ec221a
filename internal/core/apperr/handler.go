package apperr

import (
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/metrics"
)

// Handler routes classified errors to logging, metrics and alerting.
// Handle never returns an error and never panics.
type Handler struct {
	log   *logging.Logger
	alert func(*Record)
}

// NewHandler creates a Handler writing to log. The alert hook starts as a
// no-op; wire an external sink with SetAlertHook.
func NewHandler(log *logging.Logger) *Handler {
	return &Handler{log: log}
}

// SetAlertHook installs the external alert sink invoked for Critical records.
func (h *Handler) SetAlertHook(alert func(*Record)) {
	h.alert = alert
}

// Handle logs a record according to its severity. Critical records are also
// forwarded to the alert hook; High records are flagged as needing user
// attention. Medium and Low are logged only.
func (h *Handler) Handle(rec *Record) {
	defer func() {
		// A broken alert hook or log sink must not take the caller down.
		_ = recover()
	}()

	if rec == nil {
		return
	}

	metrics.ErrorsTotal.WithLabelValues(string(rec.Kind), rec.Severity.String()).Inc()

	ctx := map[string]any{
		"kind":     string(rec.Kind),
		"severity": rec.Severity.String(),
	}
	for k, v := range rec.Context {
		ctx[k] = v
	}
	ctx["error"] = rec.TechnicalMessage

	switch rec.Severity {
	case SeverityCritical:
		h.log.Log(logging.LevelCritical, categoryFor(rec.Kind), "critical failure", ctx, "🚨")
		if h.alert != nil {
			h.alert(rec)
		}
	case SeverityHigh:
		ctx["needs_attention"] = true
		h.log.Log(logging.LevelError, categoryFor(rec.Kind), "failure requires attention", ctx, "")
	case SeverityMedium:
		h.log.Log(logging.LevelWarn, categoryFor(rec.Kind), "recoverable failure", ctx, "")
	default:
		h.log.Log(logging.LevelInfo, categoryFor(rec.Kind), "minor failure", ctx, "")
	}
}

func categoryFor(k Kind) logging.Category {
	switch k {
	case KindNetwork:
		return logging.CategoryService
	case KindAudio:
		return logging.CategoryAudio
	case KindStoryGeneration:
		return logging.CategoryStory
	case KindConversation:
		return logging.CategoryConversation
	case KindStorage:
		return logging.CategoryStorage
	default:
		return logging.CategorySystem
	}
}
