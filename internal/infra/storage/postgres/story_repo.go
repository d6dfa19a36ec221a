package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/infra/storage"
)

// StoryRepo implements storage.StoryRepository using PostgreSQL.
type StoryRepo struct {
	db *DB
}

// NewStoryRepo creates a new PostgreSQL story repository.
func NewStoryRepo(db *DB) *StoryRepo {
	return &StoryRepo{db: db}
}

type storyRow struct {
	ID        string    `db:"id"`
	ChildName string    `db:"child_name"`
	Age       int       `db:"age"`
	Topic     string    `db:"topic"`
	Prompt    string    `db:"prompt"`
	Text      string    `db:"text"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r storyRow) toDomain() *domain.Story {
	return &domain.Story{
		ID:        r.ID,
		ChildName: r.ChildName,
		Age:       r.Age,
		Topic:     r.Topic,
		Prompt:    r.Prompt,
		Text:      r.Text,
		Status:    domain.StoryStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Save inserts or updates a story.
func (r *StoryRepo) Save(ctx context.Context, story *domain.Story) error {
	row := storyRow{
		ID:        story.ID,
		ChildName: story.ChildName,
		Age:       story.Age,
		Topic:     story.Topic,
		Prompt:    story.Prompt,
		Text:      story.Text,
		Status:    string(story.Status),
		CreatedAt: story.CreatedAt,
		UpdatedAt: story.UpdatedAt,
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO stories (id, child_name, age, topic, prompt, text, status, created_at, updated_at)
		VALUES (:id, :child_name, :age, :topic, :prompt, :text, :status, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		row,
	)
	if err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

// GetByID retrieves a story by ID.
func (r *StoryRepo) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	var row storyRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, child_name, age, topic, prompt, text, status, created_at, updated_at
		 FROM stories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return row.toDomain(), nil
}

// ListByChild retrieves the newest stories for a child.
func (r *StoryRepo) ListByChild(ctx context.Context, childName string, limit int) ([]*domain.Story, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []storyRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, child_name, age, topic, prompt, text, status, created_at, updated_at
		 FROM stories WHERE child_name = $1
		 ORDER BY created_at DESC LIMIT $2`, childName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	stories := make([]*domain.Story, len(rows))
	for i, row := range rows {
		stories[i] = row.toDomain()
	}
	return stories, nil
}

// DeleteOlderThan removes stories with the given status created before cutoff.
func (r *StoryRepo) DeleteOlderThan(ctx context.Context, status domain.StoryStatus, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM stories WHERE status = $1 AND created_at < $2`,
		string(status), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stories: %w", err)
	}
	return res.RowsAffected()
}
