package worker

import (
	"context"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/infra/storage"
	"github.com/portfola/storywriter/internal/metrics"
)

// Pruner deletes failed story drafts past the retention period.
type Pruner struct {
	retention time.Duration
	stories   storage.StoryRepository
	log       *logging.Logger
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, stories storage.StoryRepository, log *logging.Logger) *Pruner {
	return &Pruner{
		retention: retention,
		stories:   stories,
		log:       log,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of the retention period, clamped to [1m, 1h].
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)

	deleted, err := p.stories.DeleteOlderThan(ctx, domain.StoryStatusFailed, cutoff)
	if err != nil {
		p.log.Log(logging.LevelError, logging.CategoryStorage, "failed to prune stories", map[string]any{
			"error": err.Error(),
		}, "")
		return
	}
	if deleted > 0 {
		metrics.StoriesPruned.Add(float64(deleted))
		p.log.Log(logging.LevelInfo, logging.CategoryStorage, "pruned failed story drafts", map[string]any{
			"deleted": deleted,
		}, "")
	}
}
