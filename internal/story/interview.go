package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/metrics"
)

// SessionStore persists interview sessions between turns.
type SessionStore interface {
	SaveSession(ctx context.Context, s *domain.InterviewSession, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*domain.InterviewSession, error)
	DeleteSession(ctx context.Context, id string) error
}

var (
	ErrSessionNotFound  = errors.New("interview session not found or expired")
	ErrInterviewDone    = errors.New("interview already has all answers")
	ErrEmptyAnswer      = errors.New("answer must not be empty")
	ErrInvalidChildName = errors.New("child name must not be empty")
)

// Interviewer drives the question/answer conversation with a child.
type Interviewer struct {
	store        SessionStore
	log          *logging.Logger
	ttl          time.Duration
	maxQuestions int
}

// NewInterviewer creates an interviewer. maxQuestions is clamped to the
// scripted question count.
func NewInterviewer(store SessionStore, log *logging.Logger, ttl time.Duration, maxQuestions int) *Interviewer {
	if maxQuestions <= 0 || maxQuestions > QuestionCount() {
		maxQuestions = QuestionCount()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Interviewer{
		store:        store,
		log:          log,
		ttl:          ttl,
		maxQuestions: maxQuestions,
	}
}

// Start opens a session and returns it together with the first question.
func (iv *Interviewer) Start(ctx context.Context, childName string, age int) (*domain.InterviewSession, string, error) {
	if strings.TrimSpace(childName) == "" {
		return nil, "", ErrInvalidChildName
	}

	question, _ := QuestionAt(0)
	now := time.Now()
	session := &domain.InterviewSession{
		ID:        uuid.NewString(),
		ChildName: strings.TrimSpace(childName),
		Age:       age,
		Turns:     []domain.Turn{{Question: question, AskedAt: now}},
		StartedAt: now,
		UpdatedAt: now,
	}

	if err := iv.store.SaveSession(ctx, session, iv.ttl); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	metrics.InterviewSessions.WithLabelValues("started").Inc()
	iv.log.Conversation("interview started", map[string]any{
		"session_id": session.ID,
		"child":      session.ChildName,
	})
	return session, question, nil
}

// Answer records the child's reply and returns the next question. done is
// true when the interview script is exhausted.
func (iv *Interviewer) Answer(ctx context.Context, sessionID, answer string) (next string, done bool, err error) {
	if strings.TrimSpace(answer) == "" {
		return "", false, ErrEmptyAnswer
	}

	session, err := iv.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return "", false, ErrSessionNotFound
	}

	answered := len(session.AnsweredTurns())
	if answered >= iv.maxQuestions {
		return "", true, ErrInterviewDone
	}

	now := time.Now()
	session.Turns[len(session.Turns)-1].Answer = strings.TrimSpace(answer)
	session.Turns[len(session.Turns)-1].AnsweredAt = now
	session.UpdatedAt = now
	answered++

	done = answered >= iv.maxQuestions
	if !done {
		next, _ = QuestionAt(answered)
		session.Turns = append(session.Turns, domain.Turn{Question: next, AskedAt: now})
	}

	if err := iv.store.SaveSession(ctx, session, iv.ttl); err != nil {
		return "", false, fmt.Errorf("save session: %w", err)
	}

	iv.log.Conversation("answer recorded", map[string]any{
		"session_id": sessionID,
		"answered":   answered,
		"done":       done,
	})
	return next, done, nil
}
