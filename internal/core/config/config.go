package config

import (
	"time"

	"github.com/portfola/storywriter/internal/infra/generation"
	redisclient "github.com/portfola/storywriter/internal/infra/redis"
	"github.com/portfola/storywriter/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig              `yaml:"server"`
	Provider  generation.ProviderConfig `yaml:"provider"`
	Retry     generation.RetryConfig    `yaml:"retry"`
	Interview InterviewConfig           `yaml:"interview"`
	Redis     redisclient.Config        `yaml:"redis"`
	Logging   LoggingConfig             `yaml:"logging"`
	Database  postgres.Config           `yaml:"database"`
	Retention RetentionConfig           `yaml:"retention"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error, critical
	Env   string `yaml:"env"`   // overrides APP_ENV when set
}

// InterviewConfig holds interview session settings.
type InterviewConfig struct {
	SessionTTL   time.Duration `yaml:"session_ttl"`
	MaxQuestions int           `yaml:"max_questions"`
}

// RetentionConfig controls pruning of failed story drafts.
type RetentionConfig struct {
	Period time.Duration `yaml:"period"` // 0 = keep forever
}
