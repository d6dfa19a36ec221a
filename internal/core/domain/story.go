package domain

import (
	"time"
)

// StoryStatus tracks a story through its lifecycle.
type StoryStatus string

const (
	StoryStatusDraft  StoryStatus = "draft"  // generation in progress
	StoryStatusReady  StoryStatus = "ready"  // generated and saved
	StoryStatusFailed StoryStatus = "failed" // generation gave up
)

// Story is one generated story.
type Story struct {
	ID        string
	ChildName string
	Age       int
	Topic     string
	Prompt    string
	Text      string
	Status    StoryStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoryRequest is the caller input for a topic-based story.
type StoryRequest struct {
	ChildName string `json:"child_name"`
	Age       int    `json:"age"`
	Topic     string `json:"topic"`
}
