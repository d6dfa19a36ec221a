package apperr

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/portfola/storywriter/internal/core/logging"
)

func newTestHandler() (*Handler, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	log := logging.New("development", logging.WithWriters(&stdout, &stderr))
	return NewHandler(log), &stdout, &stderr
}

func TestClassifyUserMessageIsPureFunctionOfKind(t *testing.T) {
	raw := errors.New("dial tcp 10.0.0.1:443: i/o timeout")

	first := Classify(raw, KindNetwork, SeverityHigh, nil)
	second := Classify(errors.New("dial tcp 10.0.0.1:443: i/o timeout"), KindNetwork, SeverityLow, nil)

	if first.UserMessage != second.UserMessage {
		t.Errorf("user message differs for same kind: %q vs %q", first.UserMessage, second.UserMessage)
	}
	if strings.Contains(first.UserMessage, "tcp") {
		t.Errorf("technical detail leaked into user message: %q", first.UserMessage)
	}
	if first.TechnicalMessage != raw.Error() {
		t.Errorf("technical message not preserved verbatim: %q", first.TechnicalMessage)
	}
}

func TestClassifyPassthrough(t *testing.T) {
	rec := Classify(errors.New("boom"), KindStorage, SeverityMedium, nil)

	again := Classify(rec, KindNetwork, SeverityCritical, nil)
	if again != rec {
		t.Error("already-classified error was re-classified")
	}
	if again.Kind != KindStorage {
		t.Errorf("kind changed on passthrough: %s", again.Kind)
	}
}

func TestClassifyNilError(t *testing.T) {
	rec := Classify(nil, KindSystem, SeverityLow, nil)
	if rec.TechnicalMessage != "Unknown error occurred" {
		t.Errorf("got technical message %q", rec.TechnicalMessage)
	}
}

func TestUserMessageTableIsClosed(t *testing.T) {
	kinds := []Kind{
		KindNetwork, KindValidation, KindSystem, KindAudio,
		KindStoryGeneration, KindConversation, KindStorage,
	}
	for _, k := range kinds {
		if UserMessage(k) == "" {
			t.Errorf("kind %s has no user message", k)
		}
	}
	if UserMessage(Kind("bogus")) != defaultUserMessage {
		t.Error("unknown kind should fall back to the default message")
	}
}

func TestRunSafelySuccess(t *testing.T) {
	h, _, _ := newTestHandler()

	res := RunSafely(context.Background(), h, KindStoryGeneration, func(context.Context) (int, error) {
		return 42, nil
	})

	if !res.OK || res.Value != 42 || res.Err != nil {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRunSafelyLogsFailureExactlyOnce(t *testing.T) {
	h, _, stderr := newTestHandler()

	res := RunSafely(context.Background(), h, KindStoryGeneration, func(context.Context) (string, error) {
		return "", errors.New("generator exploded")
	}, WithSeverity(SeverityHigh))

	if res.OK {
		t.Fatal("expected failure result")
	}
	if res.Err.Kind != KindStoryGeneration {
		t.Errorf("kind = %s", res.Err.Kind)
	}
	if got := strings.Count(stderr.String(), "generator exploded"); got != 1 {
		t.Errorf("failure logged %d times, want exactly 1: %q", got, stderr.String())
	}
}

func TestRunSafelyRecoversPanic(t *testing.T) {
	h, _, stderr := newTestHandler()

	res := RunSafely(context.Background(), h, KindSystem, func(context.Context) (string, error) {
		panic("corrupt state")
	})

	if res.OK {
		t.Fatal("expected failure result after panic")
	}
	if !strings.Contains(res.Err.TechnicalMessage, "corrupt state") {
		t.Errorf("panic detail missing: %q", res.Err.TechnicalMessage)
	}
	if !strings.Contains(stderr.String(), "corrupt state") {
		t.Error("panic was not logged")
	}
}

func TestRunSafelyDoesNotReclassifyRecords(t *testing.T) {
	h, _, _ := newTestHandler()

	inner := Classify(errors.New("empty prompt"), KindValidation, SeverityMedium, nil)
	res := RunSafely(context.Background(), h, KindStoryGeneration, func(context.Context) (string, error) {
		return "", inner
	})

	if res.Err.Kind != KindValidation {
		t.Errorf("validation record lost its kind: %s", res.Err.Kind)
	}
}

func TestHandleCriticalFiresAlertHook(t *testing.T) {
	h, _, stderr := newTestHandler()

	var alerted *Record
	h.SetAlertHook(func(rec *Record) { alerted = rec })

	h.Handle(Classify(errors.New("db gone"), KindStorage, SeverityHigh, nil))
	if alerted != nil {
		t.Error("alert hook fired for non-critical record")
	}

	crit := Classify(errors.New("total outage"), KindSystem, SeverityCritical, nil)
	h.Handle(crit)
	if alerted != crit {
		t.Error("alert hook did not receive critical record")
	}
	if !strings.Contains(stderr.String(), "total outage") {
		t.Error("critical record not logged")
	}
}

func TestHandleSurvivesPanickingHook(t *testing.T) {
	h, _, _ := newTestHandler()
	h.SetAlertHook(func(*Record) { panic("pager service down") })

	// Must not propagate.
	h.Handle(Classify(errors.New("oops"), KindSystem, SeverityCritical, nil))
	h.Handle(nil)
}
