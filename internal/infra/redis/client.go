package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/portfola/storywriter/internal/core/domain"
)

// Client wraps Redis operations for interview sessions and the
// recent-story cache.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client. The connection is verified with a
// short exponential-backoff retry so a Redis that is still starting does not
// fail the whole app.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func sessionKey(id string) string {
	return fmt.Sprintf("interview:%s", id)
}

func recentKey(childName string) string {
	return fmt.Sprintf("recent:%s", childName)
}

// SaveSession stores a session as JSON with the given TTL.
func (c *Client) SaveSession(ctx context.Context, s *domain.InterviewSession, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := c.rdb.Set(ctx, sessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. Returns (nil, nil) when the session
// does not exist or has expired.
func (c *Client) GetSession(ctx context.Context, id string) (*domain.InterviewSession, error) {
	data, err := c.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}

	var s domain.InterviewSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, sessionKey(id)).Err()
}

// PurgeSessions deletes all interview sessions and returns the count removed.
func (c *Client) PurgeSessions(ctx context.Context) (int, error) {
	var purged int
	iter := c.rdb.Scan(ctx, 0, sessionKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return purged, fmt.Errorf("del failed: %w", err)
		}
		purged++
	}
	if err := iter.Err(); err != nil {
		return purged, fmt.Errorf("scan failed: %w", err)
	}
	return purged, nil
}

// PushRecentStory records a story ID in the child's recent list, keeping the
// newest ten.
func (c *Client) PushRecentStory(ctx context.Context, childName, storyID string) error {
	key := recentKey(childName)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, storyID)
	pipe.LTrim(ctx, key, 0, 9)
	pipe.Expire(ctx, key, 30*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("lpush failed: %w", err)
	}
	return nil
}

// RecentStories returns the newest story IDs for a child.
func (c *Client) RecentStories(ctx context.Context, childName string) ([]string, error) {
	return c.rdb.LRange(ctx, recentKey(childName), 0, -1).Result()
}
