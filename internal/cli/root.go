package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/portfola/storywriter/internal/control"
	"github.com/portfola/storywriter/internal/core/config"
	"github.com/portfola/storywriter/internal/core/logging"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "storywriter",
	Short: "Storywriter generation service",
	Long:  `Storywriter interviews a child, builds a personalized prompt, and generates a bedtime story through a resilient text-generation client.`,
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Global slog for startup messages
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	env := cfg.Logging.Env
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	log := logging.New(env)
	if lv, ok := parseLevel(cfg.Logging.Level); ok {
		log.SetLevel(lv)
	}
	if isDebug {
		log.SetLevel(logging.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := control.NewApp(ctx, *cfg, log)
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}

	slog.Info("Storywriter started", "config", cfgPath, "port", cfg.Server.Port)

	if err := app.Run(ctx); err != nil {
		slog.Error("App exited with error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) (logging.Level, bool) {
	switch s {
	case "debug":
		return logging.LevelDebug, true
	case "info":
		return logging.LevelInfo, true
	case "warn":
		return logging.LevelWarn, true
	case "error":
		return logging.LevelError, true
	case "critical":
		return logging.LevelCritical, true
	}
	return 0, false
}
