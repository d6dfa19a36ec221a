// Package logging provides the leveled, categorized event sink used across
// the service. It is built on log/slog with tint console handlers: Debug and
// Info go to stdout, Warn and above to stderr. Critical events additionally
// invoke an overridable external-sink hook.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level aliases slog levels and adds Critical above Error.
type Level = slog.Level

const (
	LevelDebug    Level = slog.LevelDebug
	LevelInfo     Level = slog.LevelInfo
	LevelWarn     Level = slog.LevelWarn
	LevelError    Level = slog.LevelError
	LevelCritical Level = slog.LevelError + 4
)

// Category tags a log event with the subsystem it came from.
type Category string

const (
	CategoryConversation Category = "conversation"
	CategoryStory        Category = "story"
	CategoryAudio        Category = "audio"
	CategoryService      Category = "service"
	CategoryStorage      Category = "storage"
	CategorySession      Category = "session"
	CategorySystem       Category = "system"
)

// Logger is the process-wide structured logger. It is constructed once at
// startup and injected into components; the minimum level is mutable at
// runtime via SetLevel.
type Logger struct {
	level        *slog.LevelVar
	out          *slog.Logger
	env          string
	criticalHook func(category Category, message string)
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	stdout io.Writer
	stderr io.Writer
}

// WithWriters overrides the output streams. Used by tests.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// New creates a Logger whose minimum level is derived from env:
// "test" logs Critical only, "production" logs Warn and above,
// anything else logs Debug and above.
func New(env string, opts ...Option) *Logger {
	o := options{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	level := new(slog.LevelVar)
	level.Set(defaultLevel(env))

	tintOpts := &tint.Options{
		Level:       level,
		TimeFormat:  time.RFC3339,
		ReplaceAttr: renameCritical,
	}

	handler := &splitHandler{
		threshold: slog.LevelWarn,
		low:       tint.NewHandler(o.stdout, tintOpts),
		high:      tint.NewHandler(o.stderr, tintOpts),
	}

	return &Logger{
		level: level,
		out:   slog.New(handler),
		env:   env,
	}
}

// NewFromEnv creates a Logger using the APP_ENV environment variable.
func NewFromEnv(opts ...Option) *Logger {
	return New(os.Getenv("APP_ENV"), opts...)
}

func defaultLevel(env string) Level {
	switch env {
	case "test":
		return LevelCritical
	case "production":
		return LevelWarn
	default:
		return LevelDebug
	}
}

func renameCritical(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lv, ok := a.Value.Any().(slog.Level); ok && lv >= LevelCritical {
			a.Value = slog.StringValue("CRT")
		}
	}
	return a
}

// SetLevel changes the minimum level at runtime. Last writer wins.
func (l *Logger) SetLevel(lv Level) {
	l.level.Set(lv)
}

// Enabled reports whether events at lv would be emitted.
func (l *Logger) Enabled(lv Level) bool {
	return lv >= l.level.Level()
}

// SetCriticalHook installs the external sink invoked on Critical events.
// The default is a no-op.
func (l *Logger) SetCriticalHook(hook func(category Category, message string)) {
	l.criticalHook = hook
}

// Log emits one event. The threshold check happens before any attr
// construction so suppressed calls cost nothing.
func (l *Logger) Log(lv Level, cat Category, msg string, ctx map[string]any, emoji string) {
	if !l.Enabled(lv) {
		return
	}

	if emoji != "" {
		msg = emoji + " " + msg
	}

	attrs := make([]slog.Attr, 0, len(ctx)+1)
	attrs = append(attrs, slog.String("category", string(cat)))
	for k, v := range ctx {
		attrs = append(attrs, slog.Any(k, v))
	}

	l.out.LogAttrs(context.Background(), lv, msg, attrs...)

	if lv >= LevelCritical && l.criticalHook != nil {
		l.criticalHook(cat, msg)
	}
}

// Debug logs a system-category debug event.
func (l *Logger) Debug(msg string, ctx map[string]any) {
	l.Log(LevelDebug, CategorySystem, msg, ctx, "")
}

// Info logs a system-category info event.
func (l *Logger) Info(msg string, ctx map[string]any) {
	l.Log(LevelInfo, CategorySystem, msg, ctx, "")
}

// Warn logs a system-category warning.
func (l *Logger) Warn(msg string, ctx map[string]any) {
	l.Log(LevelWarn, CategorySystem, msg, ctx, "")
}

// Error logs a system-category error.
func (l *Logger) Error(msg string, ctx map[string]any) {
	l.Log(LevelError, CategorySystem, msg, ctx, "")
}

// Critical logs a system-category critical event and fires the hook.
func (l *Logger) Critical(msg string, ctx map[string]any) {
	l.Log(LevelCritical, CategorySystem, msg, ctx, "🚨")
}

// Conversation logs an interview-flow event.
func (l *Logger) Conversation(msg string, ctx map[string]any) {
	l.Log(LevelInfo, CategoryConversation, msg, ctx, "💬")
}

// Story logs a story-generation event.
func (l *Logger) Story(msg string, ctx map[string]any) {
	l.Log(LevelInfo, CategoryStory, msg, ctx, "📖")
}

// Audio logs an audio-pipeline event.
func (l *Logger) Audio(msg string, ctx map[string]any) {
	l.Log(LevelInfo, CategoryAudio, msg, ctx, "🔊")
}

// Service logs an external-provider event.
func (l *Logger) Service(provider, msg string, ctx map[string]any) {
	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["provider"] = provider
	l.Log(LevelInfo, CategoryService, msg, ctx, "🌐")
}

// ServiceError logs a provider failure at Error level. Outside the
// development environment only the first line of the technical detail is
// kept, so stack-like payloads never reach the console.
func (l *Logger) ServiceError(provider string, err error, ctx map[string]any) {
	if !l.Enabled(LevelError) {
		return
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["provider"] = provider
	if err != nil {
		ctx["error"] = l.redact(err.Error())
	}
	l.Log(LevelError, CategoryService, "service call failed", ctx, "🌐")
}

func (l *Logger) redact(detail string) string {
	if l.env == "development" {
		return detail
	}
	if i := strings.IndexByte(detail, '\n'); i >= 0 {
		return detail[:i] + " [detail redacted]"
	}
	return detail
}
