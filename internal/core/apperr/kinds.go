// Package apperr is the closed error taxonomy for the service. Every failure
// that reaches a caller or the UI is classified into exactly one Record with
// a (kind, severity) pair and a deterministic user-facing message. Raw errors
// never cross subsystem boundaries.
package apperr

// Kind identifies the subsystem a failure belongs to. The set is closed;
// extend it only together with a new userMessages entry.
type Kind string

const (
	KindNetwork         Kind = "network"
	KindValidation      Kind = "validation"
	KindSystem          Kind = "system"
	KindAudio           Kind = "audio"
	KindStoryGeneration Kind = "story_generation"
	KindConversation    Kind = "conversation"
	KindStorage         Kind = "storage"
)

// Severity orders failures by impact. It selects logging and alerting
// behavior only; it never changes user-facing text.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// userMessages maps each kind to the text shown to users. Messages depend on
// the kind alone, never on the technical detail, so internal errors cannot
// leak to the UI.
var userMessages = map[Kind]string{
	KindNetwork:         "We're having trouble connecting. Please check your internet and try again.",
	KindValidation:      "Please check what you entered and try again.",
	KindSystem:          "Something went wrong. Please try again.",
	KindAudio:           "The sound isn't working right now, but your story will continue.",
	KindStoryGeneration: "The story machine needs a little rest. Let's try again in a moment!",
	KindConversation:    "Let's try that question one more time.",
	KindStorage:         "We couldn't save that. Please try again.",
}

const defaultUserMessage = "Something went wrong. Please try again."

// UserMessage returns the fixed user-facing text for a kind.
func UserMessage(k Kind) string {
	if msg, ok := userMessages[k]; ok {
		return msg
	}
	return defaultUserMessage
}
