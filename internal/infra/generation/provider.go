// Package generation contains the resilient text-generation client and the
// provider implementations it drives. Providers are polymorphic: the client
// only assumes "submit prompt, receive text".
package generation

import (
	"context"
	"fmt"
	"time"
)

// TextProvider is a remote text-generation endpoint.
type TextProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Generate submits a prompt and returns the generated text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig holds settings for a generation provider.
type ProviderConfig struct {
	Name         string        `yaml:"name"`
	URL          string        `yaml:"url"`
	Token        string        `yaml:"token"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxNewTokens int           `yaml:"max_new_tokens"`
	Temperature  float64       `yaml:"temperature"`
	TopP         float64       `yaml:"top_p"`
	WaitForModel bool          `yaml:"wait_for_model"`
}

// ModelLoadingError signals a provider cold start. EstimatedWait carries the
// provider-reported time until the model is ready.
type ModelLoadingError struct {
	EstimatedWait time.Duration
}

func (e *ModelLoadingError) Error() string {
	return fmt.Sprintf("model loading, estimated wait %s", e.EstimatedWait)
}

// RateLimitError signals a 429 from the provider.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// HTTPError is a non-success provider response that carries no wait hint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// MalformedResponseError signals a 200 response whose body does not contain
// usable generated text.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response: %s", e.Reason)
}
