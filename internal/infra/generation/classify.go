package generation

import (
	"context"
	"errors"
	"time"

	"github.com/portfola/storywriter/internal/core/apperr"
)

// failureAction determines how the retry loop handles a failed attempt.
type failureAction int

const (
	actionRetry    failureAction = iota // exponential backoff, then retry
	actionWaitHint                      // sleep the provider-reported wait, then retry
	actionTerminal                      // stop immediately
)

// classifyFailure decides the action for a failed attempt and, for wait
// hints, the duration to sleep.
func classifyFailure(err error) (failureAction, time.Duration) {
	if err == nil {
		return actionRetry, 0
	}

	var loading *ModelLoadingError
	if errors.As(err, &loading) {
		return actionWaitHint, loading.EstimatedWait
	}

	var rateLimit *RateLimitError
	if errors.As(err, &rateLimit) && rateLimit.RetryAfter > 0 {
		return actionWaitHint, rateLimit.RetryAfter
	}

	// A canceled parent context means the caller abandoned the sequence.
	if errors.Is(err, context.Canceled) {
		return actionTerminal, 0
	}

	// Network errors, timeouts, 5xx and malformed payloads are all transient
	// from the loop's point of view.
	return actionRetry, 0
}

// terminalKind maps an exhausted failure to its error-model kind: transport
// failures are Network, response-shape failures are System.
func terminalKind(err error) apperr.Kind {
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return apperr.KindSystem
	}
	return apperr.KindNetwork
}
