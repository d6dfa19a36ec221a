package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/infra/storage"
)

func TestStoryRepoRoundTrip(t *testing.T) {
	repo := NewStoryRepo()
	ctx := context.Background()

	story := &domain.Story{
		ID:        "s1",
		ChildName: "Mia",
		Age:       6,
		Topic:     "dragons",
		Text:      "Once upon a time...",
		Status:    domain.StoryStatusReady,
		CreatedAt: time.Now(),
	}

	if err := repo.Save(ctx, story); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Topic != "dragons" || got.Status != domain.StoryStatusReady {
		t.Errorf("unexpected story: %+v", got)
	}

	// Mutating the returned copy must not affect the stored story.
	got.Text = "tampered"
	again, _ := repo.GetByID(ctx, "s1")
	if again.Text != "Once upon a time..." {
		t.Error("repository returned a shared pointer")
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrStoryNotFound) {
		t.Errorf("expected ErrStoryNotFound, got %v", err)
	}
}

func TestStoryRepoListAndPrune(t *testing.T) {
	repo := NewStoryRepo()
	ctx := context.Background()
	now := time.Now()

	for i, age := range []time.Duration{72 * time.Hour, 48 * time.Hour, time.Hour} {
		status := domain.StoryStatusFailed
		if i == 2 {
			status = domain.StoryStatusReady
		}
		_ = repo.Save(ctx, &domain.Story{
			ID:        string(rune('a' + i)),
			ChildName: "Leo",
			Status:    status,
			CreatedAt: now.Add(-age),
		})
	}

	stories, err := repo.ListByChild(ctx, "Leo", 2)
	if err != nil {
		t.Fatalf("ListByChild failed: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("got %d stories, want 2", len(stories))
	}
	if !stories[0].CreatedAt.After(stories[1].CreatedAt) {
		t.Error("stories not sorted newest first")
	}

	deleted, err := repo.DeleteOlderThan(ctx, domain.StoryStatusFailed, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d stories, want 2", deleted)
	}

	remaining, _ := repo.ListByChild(ctx, "Leo", 0)
	if len(remaining) != 1 || remaining[0].Status != domain.StoryStatusReady {
		t.Errorf("unexpected remaining stories: %v", remaining)
	}
}
