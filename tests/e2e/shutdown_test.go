package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/portfola/storywriter/internal/control"
	"github.com/portfola/storywriter/internal/core/config"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/infra/generation"
)

func TestGracefulShutdown(t *testing.T) {
	// In-memory storage and sessions, provider never called.
	cfg := config.AppConfig{
		Server: config.ServerConfig{Port: 18231},
		Provider: generation.ProviderConfig{
			URL: "http://localhost:9/never-called",
		},
	}
	log := logging.New("test")

	app, err := control.NewApp(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runError := make(chan error, 1)
	go func() {
		runError <- app.Run(ctx)
	}()

	// Wait for the server to come up.
	healthURL := fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not become healthy within 5s")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-runError:
		if err != nil && err != context.Canceled {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("Run did not return within 10s of cancellation")
	}
}
