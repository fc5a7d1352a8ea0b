package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"rfpdesk/api/internal/config"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/repositories"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $RFPDESK_CONFIG or "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	err = repositories.EnsureSchema(ctx, pool, func(step string) {
		logger.Info("created", zap.String("step", step))
	})
	if err != nil {
		logger.Fatal("schema setup failed", zap.Error(err))
	}

	logger.Info("database setup complete")
}
