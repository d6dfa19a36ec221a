package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// countingValue counts how often the logging pipeline resolves it.
type countingValue struct {
	resolved int
}

func (c *countingValue) LogValue() slog.Value {
	c.resolved++
	return slog.StringValue("resolved")
}

func TestSuppressedLevelIsFreeNoOp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := New("production", WithWriters(&stdout, &stderr))

	cv := &countingValue{}
	log.Log(LevelDebug, CategoryStory, "should not appear", map[string]any{"value": cv}, "")
	log.Log(LevelInfo, CategoryStory, "should not appear either", map[string]any{"value": cv}, "")

	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("suppressed levels produced output: stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
	if cv.resolved != 0 {
		t.Errorf("context value resolved %d times for suppressed events", cv.resolved)
	}

	log.Log(LevelError, CategoryStory, "visible", map[string]any{"value": cv}, "")
	if cv.resolved == 0 {
		t.Error("context value not resolved for emitted event")
	}
}

func TestDefaultLevelPerEnvironment(t *testing.T) {
	tests := []struct {
		env    string
		level  Level
		expect bool
	}{
		{"test", LevelError, false},
		{"test", LevelCritical, true},
		{"production", LevelInfo, false},
		{"production", LevelWarn, true},
		{"development", LevelDebug, true},
		{"", LevelDebug, true},
	}

	for _, tt := range tests {
		log := New(tt.env, WithWriters(&bytes.Buffer{}, &bytes.Buffer{}))
		if got := log.Enabled(tt.level); got != tt.expect {
			t.Errorf("env %q: Enabled(%v) = %v, want %v", tt.env, tt.level, got, tt.expect)
		}
	}
}

func TestSetLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := New("production", WithWriters(&stdout, &stderr))

	log.Info("hidden", nil)
	if stdout.Len() != 0 {
		t.Fatalf("info emitted below threshold: %q", stdout.String())
	}

	log.SetLevel(LevelDebug)
	log.Info("now visible", nil)
	if !strings.Contains(stdout.String(), "now visible") {
		t.Errorf("info not emitted after SetLevel: %q", stdout.String())
	}
}

func TestStreamRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := New("development", WithWriters(&stdout, &stderr))

	log.Info("info line", nil)
	log.Error("error line", nil)

	if !strings.Contains(stdout.String(), "info line") {
		t.Errorf("info missing from stdout: %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "error line") {
		t.Errorf("error leaked to stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "error line") {
		t.Errorf("error missing from stderr: %q", stderr.String())
	}
}

func TestCriticalHook(t *testing.T) {
	var stderr bytes.Buffer
	log := New("production", WithWriters(&bytes.Buffer{}, &stderr))

	var gotCat Category
	var gotMsg string
	log.SetCriticalHook(func(cat Category, msg string) {
		gotCat = cat
		gotMsg = msg
	})

	log.Error("plain error", nil)
	if gotMsg != "" {
		t.Errorf("hook fired for non-critical event: %q", gotMsg)
	}

	log.Critical("the sky is falling", nil)
	if gotCat != CategorySystem || !strings.Contains(gotMsg, "the sky is falling") {
		t.Errorf("hook got (%q, %q)", gotCat, gotMsg)
	}
}

func TestServiceErrorRedaction(t *testing.T) {
	multi := errors.New("boom\ngoroutine 1 [running]:\nmain.main()")

	var stderr bytes.Buffer
	log := New("production", WithWriters(&bytes.Buffer{}, &stderr))
	log.ServiceError("huggingface", multi, nil)

	if strings.Contains(stderr.String(), "goroutine") {
		t.Errorf("stack detail not redacted: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "detail redacted") {
		t.Errorf("redaction marker missing: %q", stderr.String())
	}

	stderr.Reset()
	dev := New("development", WithWriters(&bytes.Buffer{}, &stderr))
	dev.ServiceError("huggingface", multi, nil)
	if !strings.Contains(stderr.String(), "goroutine") {
		t.Errorf("development run should keep detail: %q", stderr.String())
	}
}
