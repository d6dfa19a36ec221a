package storage

import (
	"context"
	"errors"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
)

var (
	// ErrStoryNotFound is returned when a story doesn't exist
	ErrStoryNotFound = errors.New("story not found")
)

// StoryRepository handles story storage operations
type StoryRepository interface {
	// Save inserts or updates a story
	Save(ctx context.Context, story *domain.Story) error

	// GetByID retrieves a story by ID
	GetByID(ctx context.Context, id string) (*domain.Story, error)

	// ListByChild retrieves the newest stories for a child
	ListByChild(ctx context.Context, childName string, limit int) ([]*domain.Story, error)

	// DeleteOlderThan removes stories with the given status created before
	// cutoff; returns the number deleted
	DeleteOlderThan(ctx context.Context, status domain.StoryStatus, cutoff time.Time) (int64, error)
}
