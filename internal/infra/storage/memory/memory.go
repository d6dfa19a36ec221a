// Package memory provides an in-memory StoryRepository used when no
// database is configured (local development, tests).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/infra/storage"
)

// StoryRepo is a map-backed story repository.
type StoryRepo struct {
	mu      sync.RWMutex
	stories map[string]*domain.Story
}

// NewStoryRepo creates an empty in-memory repository.
func NewStoryRepo() *StoryRepo {
	return &StoryRepo{stories: make(map[string]*domain.Story)}
}

// Save inserts or updates a story.
func (r *StoryRepo) Save(ctx context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

// GetByID retrieves a story by ID.
func (r *StoryRepo) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	story, ok := r.stories[id]
	if !ok {
		return nil, storage.ErrStoryNotFound
	}
	copied := *story
	return &copied, nil
}

// ListByChild retrieves the newest stories for a child.
func (r *StoryRepo) ListByChild(ctx context.Context, childName string, limit int) ([]*domain.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Story
	for _, story := range r.stories {
		if story.ChildName == childName {
			copied := *story
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DeleteOlderThan removes stories with the given status created before cutoff.
func (r *StoryRepo) DeleteOlderThan(ctx context.Context, status domain.StoryStatus, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, story := range r.stories {
		if story.Status == status && story.CreatedAt.Before(cutoff) {
			delete(r.stories, id)
			deleted++
		}
	}
	return deleted, nil
}
