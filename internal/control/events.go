package control

import (
	"context"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/core/logging"
	redisclient "github.com/portfola/storywriter/internal/infra/redis"
)

// eventLogger is the default event sink: it logs every event and records
// generated stories in the child's recent list when Redis is available.
type eventLogger struct {
	log   *logging.Logger
	redis *redisclient.Client
}

func newEventLogger(log *logging.Logger, redis *redisclient.Client) *eventLogger {
	return &eventLogger{log: log, redis: redis}
}

func (e *eventLogger) Emit(event domain.StoryEvent) {
	fields := map[string]any{
		"type":  string(event.EventType),
		"child": event.ChildName,
	}
	if event.StoryID != "" {
		fields["story_id"] = event.StoryID
	}
	if event.SessionID != "" {
		fields["session_id"] = event.SessionID
	}

	switch event.EventType {
	case domain.EventTypeStoryFailed:
		e.log.Log(logging.LevelWarn, logging.CategoryStory, "story event", fields, "")
	default:
		e.log.Log(logging.LevelInfo, logging.CategoryStory, "story event", fields, "")
	}

	if event.EventType == domain.EventTypeStoryGenerated && e.redis != nil && event.StoryID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.redis.PushRecentStory(ctx, event.ChildName, event.StoryID); err != nil {
			e.log.Warn("failed to record recent story", map[string]any{"error": err.Error()})
		}
	}
}
