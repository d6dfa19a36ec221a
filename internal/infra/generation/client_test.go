package generation

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portfola/storywriter/internal/core/apperr"
	"github.com/portfola/storywriter/internal/core/logging"
)

// fakeProvider scripts one response per call.
type fakeProvider struct {
	calls   int
	respond func(call int) (string, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.respond(f.calls)
}

func newTestClient(p TextProvider) (*Client, *[]time.Duration) {
	log := logging.New("test", logging.WithWriters(&bytes.Buffer{}, &bytes.Buffer{}))
	c := NewClient(p, log, DefaultRetryConfig)

	sleeps := &[]time.Duration{}
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return c, sleeps
}

func TestGenerateRejectsBlankPrompts(t *testing.T) {
	prompts := []string{"", "   ", "\t\n  \n"}

	for _, prompt := range prompts {
		p := &fakeProvider{respond: func(int) (string, error) { return "never", nil }}
		c, _ := newTestClient(p)

		_, err := c.Generate(context.Background(), prompt)

		var rec *apperr.Record
		if !errors.As(err, &rec) {
			t.Fatalf("prompt %q: expected classified record, got %v", prompt, err)
		}
		if rec.Kind != apperr.KindValidation {
			t.Errorf("prompt %q: kind = %s, want validation", prompt, rec.Kind)
		}
		if p.calls != 0 {
			t.Errorf("prompt %q: made %d network calls, want 0", prompt, p.calls)
		}
	}
}

func TestGenerateFallbackForBareContinuation(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) { return "never", nil }}
	c, _ := newTestClient(p)

	prompt := InterviewContinuationMarker + ", write the rest of the story."
	text, err := c.Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != FallbackStoryPrompt {
		t.Errorf("got %q, want the fallback prompt", text)
	}
	if p.calls != 0 {
		t.Errorf("made %d network calls, want 0", p.calls)
	}
}

func TestGenerateContinuationWithTurnsCallsProvider(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) { return "a real story", nil }}
	c, _ := newTestClient(p)

	prompt := InterviewContinuationMarker + ":\nChild: I want a dragon story.\nWrite the story."
	text, err := c.Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "a real story" || p.calls != 1 {
		t.Errorf("text=%q calls=%d", text, p.calls)
	}
}

func TestGenerateExhaustsRetriesOnTransportFailure(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) {
		return "", &HTTPError{Status: 500, Body: "upstream broken"}
	}}
	c, sleeps := newTestClient(p)

	_, err := c.Generate(context.Background(), "a nice story about cats")

	if p.calls != 4 {
		t.Errorf("total attempts = %d, want 4 (1 initial + 3 retries)", p.calls)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("backoff sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], d)
		}
	}

	var rec *apperr.Record
	if !errors.As(err, &rec) {
		t.Fatalf("expected classified record, got %v", err)
	}
	if rec.Kind != apperr.KindNetwork {
		t.Errorf("kind = %s, want network", rec.Kind)
	}
}

func TestGenerateMalformedResponseClassifiedAsSystem(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) {
		return "", &MalformedResponseError{Reason: "empty generated_text field"}
	}}
	c, _ := newTestClient(p)

	_, err := c.Generate(context.Background(), "a story")

	var rec *apperr.Record
	if !errors.As(err, &rec) {
		t.Fatalf("expected classified record, got %v", err)
	}
	if rec.Kind != apperr.KindSystem {
		t.Errorf("kind = %s, want system", rec.Kind)
	}
	if p.calls != 4 {
		t.Errorf("malformed payloads should still be retried, got %d attempts", p.calls)
	}
}

func TestGenerateHonorsWaitHintWithoutConsumingBackoff(t *testing.T) {
	p := &fakeProvider{respond: func(call int) (string, error) {
		if call == 1 {
			return "", &ModelLoadingError{EstimatedWait: 2 * time.Second}
		}
		return "warm now", nil
	}}
	c, sleeps := newTestClient(p)

	text, err := c.Generate(context.Background(), "a story about spring")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "warm now" {
		t.Errorf("text = %q", text)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 2*time.Second {
		t.Errorf("sleeps = %v, want exactly [2s]", *sleeps)
	}
}

func TestWaitHintRetriesDoNotReduceBackoffBudget(t *testing.T) {
	p := &fakeProvider{respond: func(call int) (string, error) {
		if call == 1 {
			return "", &ModelLoadingError{EstimatedWait: 2 * time.Second}
		}
		return "", &HTTPError{Status: 502, Body: "bad gateway"}
	}}
	c, sleeps := newTestClient(p)

	_, err := c.Generate(context.Background(), "a story")
	if err == nil {
		t.Fatal("expected terminal failure")
	}

	// 1 warm-up attempt plus the full 4-attempt backoff sequence.
	if p.calls != 5 {
		t.Errorf("total attempts = %d, want 5", p.calls)
	}
	want := []time.Duration{2 * time.Second, 1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestWarmupRetriesAreBounded(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) {
		return "", &ModelLoadingError{EstimatedWait: time.Second}
	}}
	c, _ := newTestClient(p)

	_, err := c.Generate(context.Background(), "a story")
	if err == nil {
		t.Fatal("expected terminal failure")
	}
	if p.calls != 4 {
		t.Errorf("total attempts = %d, want 4", p.calls)
	}
}

func TestWarmupWallClockCap(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) {
		return "", &ModelLoadingError{EstimatedWait: 40 * time.Second}
	}}
	c, sleeps := newTestClient(p)

	_, err := c.Generate(context.Background(), "a story")
	if err == nil {
		t.Fatal("expected terminal failure")
	}
	// First 40s hint fits the 60s budget, the second would exceed it.
	if p.calls != 2 {
		t.Errorf("total attempts = %d, want 2", p.calls)
	}
	if len(*sleeps) != 1 {
		t.Errorf("sleeps = %v, want one 40s wait", *sleeps)
	}
}

func TestGenerateStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &fakeProvider{respond: func(int) (string, error) {
		cancel() // caller walks away while the attempt is in flight
		return "", &HTTPError{Status: 500, Body: "boom"}
	}}
	c, sleeps := newTestClient(p)

	_, err := c.Generate(ctx, "a story")
	if err == nil {
		t.Fatal("expected failure")
	}
	if p.calls != 1 {
		t.Errorf("made %d attempts after cancellation, want 1", p.calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("scheduled sleeps after cancellation: %v", *sleeps)
	}

	var rec *apperr.Record
	if !errors.As(err, &rec) {
		t.Fatalf("expected classified record, got %v", err)
	}
}

func TestGenerateTrimsProviderOutput(t *testing.T) {
	p := &fakeProvider{respond: func(int) (string, error) {
		return "  \n A tidy tale. \t\n", nil
	}}
	c, _ := newTestClient(p)

	text, err := c.Generate(context.Background(), "tell me a story")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A tidy tale." {
		t.Errorf("text = %q, want surrounding whitespace removed", text)
	}
}
