package domain

import (
	"time"
)

// AttemptOutcome classifies how a single generation attempt ended.
type AttemptOutcome string

const (
	AttemptSuccess   AttemptOutcome = "success"
	AttemptRetryable AttemptOutcome = "retryable"
	AttemptWaitHint  AttemptOutcome = "wait_hint" // provider asked for a specific wait
	AttemptTerminal  AttemptOutcome = "terminal"
)

// GenerationAttempt is one try of the resilient generation client.
// It exists only for the lifetime of the retry loop and for logging.
type GenerationAttempt struct {
	Number    int // 1-based
	Prompt    string
	StartedAt time.Time
	Elapsed   time.Duration
	Outcome   AttemptOutcome
	WaitHint  time.Duration // only for wait_hint outcomes
	Err       error
}
