package domain

import (
	"time"
)

// StoryEvent represents an emitted application event
type StoryEvent struct {
	EventType  EventType
	StoryID    string
	SessionID  string
	ChildName  string
	OccurredAt time.Time
	Metadata   map[string]any
}

type EventType string

const (
	EventTypeStoryGenerated     EventType = "story_generated"
	EventTypeStoryFailed        EventType = "story_failed"
	EventTypeInterviewStarted   EventType = "interview_started"
	EventTypeInterviewCompleted EventType = "interview_completed"
)
