package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"rfpdesk/api/internal/config"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/repositories"
	"rfpdesk/api/internal/services"
)

const pollTimeout = 5 * time.Minute

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

	if !cfg.IMAPConfigured() {
		logger.Fatal("IMAP_HOST, IMAP_USER and IMAP_PASS must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rfpRepo := repositories.NewRFPRepository(pool)
	vendorRepo := repositories.NewVendorRepository(pool)
	proposalRepo := repositories.NewProposalRepository(pool)

	inbox := services.NewIMAPInbox(cfg.IMAPAddr(), cfg.IMAP.User, cfg.IMAP.Pass, cfg.IMAP.Mailbox, logger)
	intake := services.NewProposalIntake(inbox, vendorRepo, rfpRepo, proposalRepo, logger, nil)

	lock := func(ctx context.Context) (bool, func(context.Context) error, error) {
		return repositories.TryAdvisoryLock(ctx, pool, repositories.InboxPollLockKey)
	}
	poller := services.NewPoller(intake, cfg.PollInterval(), lock, logger)

	stats, err := poller.RunOnce(ctx)
	if err != nil {
		logger.Error("inbox poll failed", zap.Error(err))
		os.Exit(1)
	}
	if stats == nil {
		// another poller holds the lock
		os.Exit(0)
	}
	if stats.Errors > 0 {
		logger.Warn("some messages could not be stored and will be retried", zap.Int("errors", stats.Errors))
		os.Exit(1)
	}
}
