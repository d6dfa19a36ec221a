package story

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/portfola/storywriter/internal/core/apperr"
	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/infra/storage"
	"github.com/portfola/storywriter/internal/metrics"
)

// Generator produces text from a prompt. Satisfied by *generation.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventSink receives application events. The default sink drops them.
type EventSink interface {
	Emit(event domain.StoryEvent)
}

type noopSink struct{}

func (noopSink) Emit(domain.StoryEvent) {}

// Service is the caller-facing story API. Every generation call goes through
// apperr.RunSafely so UI code only ever sees tagged results, never raw
// failures.
type Service struct {
	gen      Generator
	stories  storage.StoryRepository
	sessions SessionStore
	handler  *apperr.Handler
	log      *logging.Logger
	events   EventSink
}

// NewService wires the story service.
func NewService(
	gen Generator,
	stories storage.StoryRepository,
	sessions SessionStore,
	handler *apperr.Handler,
	log *logging.Logger,
) *Service {
	return &Service{
		gen:      gen,
		stories:  stories,
		sessions: sessions,
		handler:  handler,
		log:      log,
		events:   noopSink{},
	}
}

// SetEventSink installs a sink for story events.
func (s *Service) SetEventSink(sink EventSink) {
	if sink != nil {
		s.events = sink
	}
}

func validateRequest(req domain.StoryRequest) error {
	if strings.TrimSpace(req.ChildName) == "" {
		return apperr.Classify(
			fmt.Errorf("child name is required"),
			apperr.KindValidation, apperr.SeverityMedium, nil)
	}
	if req.Age < 2 || req.Age > 12 {
		return apperr.Classify(
			fmt.Errorf("age %d is outside the supported range 2-12", req.Age),
			apperr.KindValidation, apperr.SeverityMedium, nil)
	}
	if strings.TrimSpace(req.Topic) == "" {
		return apperr.Classify(
			fmt.Errorf("topic is required"),
			apperr.KindValidation, apperr.SeverityMedium, nil)
	}
	return nil
}

// GenerateStory produces and saves a story for a topic request.
func (s *Service) GenerateStory(ctx context.Context, req domain.StoryRequest) apperr.Result[*domain.Story] {
	return apperr.RunSafely(ctx, s.handler, apperr.KindStoryGeneration,
		func(ctx context.Context) (*domain.Story, error) {
			if err := validateRequest(req); err != nil {
				return nil, err
			}
			prompt := StoryPrompt(req.ChildName, req.Age, req.Topic)
			return s.generateAndSave(ctx, req.ChildName, req.Age, req.Topic, prompt, "topic", "")
		},
		apperr.WithSeverity(apperr.SeverityHigh),
		apperr.WithContext(map[string]any{"child": req.ChildName, "topic": req.Topic}),
	)
}

// CompleteInterview turns a finished interview session into a story and
// closes the session.
func (s *Service) CompleteInterview(ctx context.Context, sessionID string) apperr.Result[*domain.Story] {
	return apperr.RunSafely(ctx, s.handler, apperr.KindConversation,
		func(ctx context.Context) (*domain.Story, error) {
			session, err := s.sessions.GetSession(ctx, sessionID)
			if err != nil {
				return nil, fmt.Errorf("load session: %w", err)
			}
			if session == nil {
				return nil, ErrSessionNotFound
			}

			prompt := ContinuationPrompt(session)
			story, err := s.generateAndSave(
				ctx, session.ChildName, session.Age, "interview", prompt, "interview", sessionID)
			if err != nil {
				return nil, err
			}

			if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
				// The story is already saved; an expired-session cleanup
				// failure is not worth failing the call.
				s.log.Warn("failed to delete completed session", map[string]any{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
			metrics.InterviewSessions.WithLabelValues("completed").Inc()
			return story, nil
		},
		apperr.WithSeverity(apperr.SeverityHigh),
		apperr.WithContext(map[string]any{"session_id": sessionID}),
	)
}

// GetStory loads a saved story.
func (s *Service) GetStory(ctx context.Context, id string) apperr.Result[*domain.Story] {
	return apperr.RunSafely(ctx, s.handler, apperr.KindStorage,
		func(ctx context.Context) (*domain.Story, error) {
			return s.stories.GetByID(ctx, id)
		})
}

// ListStories returns the newest stories for a child.
func (s *Service) ListStories(ctx context.Context, childName string, limit int) apperr.Result[[]*domain.Story] {
	return apperr.RunSafely(ctx, s.handler, apperr.KindStorage,
		func(ctx context.Context) ([]*domain.Story, error) {
			return s.stories.ListByChild(ctx, childName, limit)
		})
}

func (s *Service) generateAndSave(
	ctx context.Context,
	childName string,
	age int,
	topic, prompt, source, sessionID string,
) (*domain.Story, error) {
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		// Keep a failed record so the attempt is diagnosable afterwards.
		// The retention worker removes these past the configured period.
		now := time.Now()
		failed := &domain.Story{
			ID:        uuid.NewString(),
			ChildName: childName,
			Age:       age,
			Topic:     topic,
			Prompt:    prompt,
			Status:    domain.StoryStatusFailed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if saveErr := s.stories.Save(ctx, failed); saveErr != nil {
			s.log.Warn("failed to record failed story", map[string]any{
				"story_id": failed.ID,
				"error":    saveErr.Error(),
			})
		}
		s.events.Emit(domain.StoryEvent{
			EventType:  domain.EventTypeStoryFailed,
			StoryID:    failed.ID,
			SessionID:  sessionID,
			ChildName:  childName,
			OccurredAt: now,
		})
		return nil, err
	}

	now := time.Now()
	story := &domain.Story{
		ID:        uuid.NewString(),
		ChildName: childName,
		Age:       age,
		Topic:     topic,
		Prompt:    prompt,
		Text:      text,
		Status:    domain.StoryStatusReady,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stories.Save(ctx, story); err != nil {
		return nil, apperr.Classify(
			fmt.Errorf("save story: %w", err),
			apperr.KindStorage, apperr.SeverityHigh,
			map[string]any{"story_id": story.ID})
	}

	metrics.StoriesGenerated.WithLabelValues(source).Inc()
	s.events.Emit(domain.StoryEvent{
		EventType:  domain.EventTypeStoryGenerated,
		StoryID:    story.ID,
		SessionID:  sessionID,
		ChildName:  childName,
		OccurredAt: now,
		Metadata:   map[string]any{"source": source, "chars": len(text)},
	})
	s.log.Story("story generated", map[string]any{
		"story_id": story.ID,
		"child":    childName,
		"source":   source,
	})
	return story, nil
}
