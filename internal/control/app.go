// Package control wires the application together and runs its lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/portfola/storywriter/internal/core/apperr"
	"github.com/portfola/storywriter/internal/core/config"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/core/worker"
	"github.com/portfola/storywriter/internal/infra/generation"
	redisclient "github.com/portfola/storywriter/internal/infra/redis"
	"github.com/portfola/storywriter/internal/infra/storage"
	"github.com/portfola/storywriter/internal/infra/storage/memory"
	"github.com/portfola/storywriter/internal/infra/storage/postgres"
	"github.com/portfola/storywriter/internal/story"
)

// App is the assembled application.
type App struct {
	cfg         config.AppConfig
	server      *Server
	pruner      *worker.Pruner
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *logging.Logger
}

// NewApp builds the application from configuration. Storage falls back to
// in-memory implementations when no database or Redis URL is configured.
func NewApp(ctx context.Context, cfg config.AppConfig, log *logging.Logger) (*App, error) {
	// Storage
	var stories storage.StoryRepository
	var db *postgres.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		stories = postgres.NewStoryRepo(db)
		log.Info("using postgres storage", nil)
	} else {
		stories = memory.NewStoryRepo()
		log.Info("using in-memory storage", nil)
	}

	// Sessions
	var sessions story.SessionStore
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		sessions = redisClient
		log.Info("using redis sessions", nil)
	} else {
		sessions = memory.NewSessionStore()
		log.Info("using in-memory sessions", nil)
	}

	// Generation
	provider := generation.NewHuggingFace(cfg.Provider)
	client := generation.NewClient(provider, log, cfg.Retry)

	handler := apperr.NewHandler(log)

	service := story.NewService(client, stories, sessions, handler, log)
	service.SetEventSink(newEventLogger(log, redisClient))

	interviewer := story.NewInterviewer(sessions, log,
		cfg.Interview.SessionTTL, cfg.Interview.MaxQuestions)

	var pruner *worker.Pruner
	if cfg.Retention.Period > 0 {
		pruner = worker.NewPruner(cfg.Retention.Period, stories, log)
	}

	server := NewServer(cfg.Server.Port, service, interviewer, provider.Monitor, log)

	return &App{
		cfg:         cfg,
		server:      server,
		pruner:      pruner,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Run starts all components and blocks until ctx is cancelled or a component
// fails. Resources are released before returning.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server listening", map[string]any{"port": a.cfg.Server.Port})
		if err := a.server.Start(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.pruner != nil {
		g.Go(func() error {
			a.pruner.Start(ctx)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Stop(shutdownCtx)
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("failed to close redis", map[string]any{"error": err.Error()})
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("failed to close database", map[string]any{"error": err.Error()})
		}
	}
	a.log.Info("shutdown complete", nil)
}
