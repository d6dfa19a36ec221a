package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/portfola/storywriter/internal/core/apperr"
	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/metrics"
)

// RetryConfig defines the retry behavior of the resilient client.
type RetryConfig struct {
	// MaxRetries bounds retries after the initial attempt, so a permanently
	// failing provider sees MaxRetries+1 attempts in total.
	MaxRetries int `yaml:"max_retries"`

	// InitialDelay seeds the exponential backoff: attempt n (0-based) waits
	// InitialDelay * 2^n before the next try.
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxWarmupWait caps the cumulative time spent honoring model-loading
	// wait hints, which do not consume backoff retries and would otherwise
	// be unbounded if the provider kept reporting loading.
	MaxWarmupWait time.Duration `yaml:"max_warmup_wait"`
}

// DefaultRetryConfig provides the standard retry behavior.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:    3,
	InitialDelay:  1 * time.Second,
	MaxWarmupWait: 60 * time.Second,
}

// InterviewContinuationMarker opens every interview continuation prompt.
const InterviewContinuationMarker = "Based on our conversation so far"

// TurnPrefix marks a recorded child answer inside a continuation prompt.
const TurnPrefix = "Child:"

// FallbackStoryPrompt is returned when a continuation prompt carries no
// recorded turns: the remote call would be useless, so the client answers
// locally with a generic starter.
const FallbackStoryPrompt = "Once upon a time, a curious child set off on a wonderful adventure. " +
	"What happened next surprised everyone..."

var errEmptyPrompt = errors.New("prompt must be a non-empty string")

// Client wraps a TextProvider with bounded retry, adaptive backoff and
// error classification. Every failure that leaves Generate is an
// *apperr.Record; raw provider errors never cross this boundary. Calls are
// independent: the client keeps no per-call state, so concurrent use is safe.
type Client struct {
	provider TextProvider
	log      *logging.Logger
	cfg      RetryConfig

	// sleep is a seam for tests; the default honors ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a resilient client around provider. Zero-value config
// fields fall back to DefaultRetryConfig.
func NewClient(provider TextProvider, log *logging.Logger, cfg RetryConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRetryConfig.MaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultRetryConfig.InitialDelay
	}
	if cfg.MaxWarmupWait <= 0 {
		cfg.MaxWarmupWait = DefaultRetryConfig.MaxWarmupWait
	}

	return &Client{
		provider: provider,
		log:      log,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

// Generate produces text for prompt, retrying transient failures with
// exponential backoff and honoring provider wait hints. It validates input
// before any network work and returns either trimmed text or exactly one
// classified error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Classify(errEmptyPrompt, apperr.KindValidation, apperr.SeverityMedium, map[string]any{
			"provider": c.provider.Name(),
		})
	}

	// A continuation prompt with no recorded turns cannot produce anything
	// the fallback would not; skip the round trip entirely.
	if strings.Contains(prompt, InterviewContinuationMarker) && !strings.Contains(prompt, TurnPrefix) {
		c.log.Conversation("continuation prompt has no turns, using fallback", map[string]any{
			"provider": c.provider.Name(),
		})
		return FallbackStoryPrompt, nil
	}

	var lastErr error
	backoffRetries := 0
	warmupRetries := 0
	var warmupWaited time.Duration

	for attemptNum := 1; ; attemptNum++ {
		attempt := domain.GenerationAttempt{
			Number:    attemptNum,
			Prompt:    prompt,
			StartedAt: time.Now(),
		}

		text, err := c.provider.Generate(ctx, prompt)
		attempt.Elapsed = time.Since(attempt.StartedAt)
		metrics.GenerationLatency.WithLabelValues(c.provider.Name()).Observe(attempt.Elapsed.Seconds())

		if err == nil {
			text = strings.TrimSpace(text)
			attempt.Outcome = domain.AttemptSuccess
			metrics.GenerationAttempts.WithLabelValues(c.provider.Name(), string(attempt.Outcome)).Inc()
			c.log.Service(c.provider.Name(), "generation succeeded", map[string]any{
				"attempt":    attempt.Number,
				"elapsed_ms": attempt.Elapsed.Milliseconds(),
				"chars":      len(text),
			})
			return text, nil
		}

		lastErr = err
		attempt.Err = err

		if ctx.Err() != nil {
			// Caller abandoned the sequence; no further retries.
			attempt.Outcome = domain.AttemptTerminal
			break
		}

		action, hint := classifyFailure(err)
		switch action {
		case actionWaitHint:
			attempt.Outcome = domain.AttemptWaitHint
			attempt.WaitHint = hint
			metrics.GenerationAttempts.WithLabelValues(c.provider.Name(), string(attempt.Outcome)).Inc()

			if warmupRetries >= c.cfg.MaxRetries || warmupWaited+hint > c.cfg.MaxWarmupWait {
				c.log.Service(c.provider.Name(), "warm-up budget exhausted", map[string]any{
					"attempt":   attempt.Number,
					"waited_ms": warmupWaited.Milliseconds(),
				})
				break
			}

			metrics.ModelLoadingWaits.WithLabelValues(c.provider.Name()).Inc()
			c.log.Service(c.provider.Name(), "model warming up, honoring wait hint", map[string]any{
				"attempt": attempt.Number,
				"wait_ms": hint.Milliseconds(),
			})
			if err := c.sleep(ctx, hint); err != nil {
				lastErr = err
				break
			}
			warmupRetries++
			warmupWaited += hint
			continue

		case actionRetry:
			attempt.Outcome = domain.AttemptRetryable
			metrics.GenerationAttempts.WithLabelValues(c.provider.Name(), string(attempt.Outcome)).Inc()

			if backoffRetries >= c.cfg.MaxRetries {
				break
			}

			delay := c.cfg.InitialDelay << backoffRetries
			c.log.Service(c.provider.Name(), "generation attempt failed, backing off", map[string]any{
				"attempt":    attempt.Number,
				"elapsed_ms": attempt.Elapsed.Milliseconds(),
				"cause":      err.Error(),
				"delay_ms":   delay.Milliseconds(),
			})
			if err := c.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
			backoffRetries++
			continue

		default:
			attempt.Outcome = domain.AttemptTerminal
			metrics.GenerationAttempts.WithLabelValues(c.provider.Name(), string(attempt.Outcome)).Inc()
		}

		break
	}

	kind := terminalKind(lastErr)
	rec := apperr.Classify(
		fmt.Errorf("generation failed after %d backoff retries: %w", backoffRetries, lastErr),
		kind,
		apperr.SeverityHigh,
		map[string]any{
			"provider":   c.provider.Name(),
			"prompt_len": len(prompt),
		},
	)
	c.log.ServiceError(c.provider.Name(), lastErr, map[string]any{
		"backoff_retries": backoffRetries,
		"warmup_retries":  warmupRetries,
		"kind":            string(kind),
	})
	return "", rec
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
