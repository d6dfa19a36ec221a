// Command admin purges all interview sessions from Redis. Intended for
// one-off operational use, not for the running service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	redisclient "github.com/portfola/storywriter/internal/infra/redis"
)

func main() {
	_ = godotenv.Load()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	client, err := redisclient.NewClient(redisclient.Config{
		URL:      url,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to redis: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := client.PurgeSessions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "purge sessions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("purged %d interview sessions\n", purged)
}
