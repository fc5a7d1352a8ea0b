package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"rfpdesk/api/internal/config"
	"rfpdesk/api/internal/handlers"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/repositories"
	"rfpdesk/api/internal/services"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := repositories.EnsureSchema(ctx, pool, func(step string) {
		logger.Debug("schema step applied", zap.String("step", step))
	}); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	// Initialize repositories
	rfpRepo := repositories.NewRFPRepository(pool)
	vendorRepo := repositories.NewVendorRepository(pool)
	proposalRepo := repositories.NewProposalRepository(pool)

	// Initialize services
	rfpService := services.NewRFPService(rfpRepo, proposalRepo, logger, metrics)

	var sender handlers.RFPSender
	if cfg.SMTPConfigured() {
		sender = services.NewMailer(cfg.SMTPAddr(), cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From, logger, metrics)
	} else {
		logger.Warn("SMTP is not configured; sending RFPs is disabled")
	}

	var source services.MessageSource
	if cfg.IMAPConfigured() {
		source = services.NewIMAPInbox(cfg.IMAPAddr(), cfg.IMAP.User, cfg.IMAP.Pass, cfg.IMAP.Mailbox, logger)
	}
	intake := services.NewProposalIntake(source, vendorRepo, rfpRepo, proposalRepo, logger, metrics)

	var pollRunner handlers.PollRunner
	var poller *services.Poller
	if source != nil {
		lock := func(ctx context.Context) (bool, func(context.Context) error, error) {
			return repositories.TryAdvisoryLock(ctx, pool, repositories.InboxPollLockKey)
		}
		poller = services.NewPoller(intake, cfg.PollInterval(), lock, logger)
		pollRunner = poller
	} else {
		logger.Warn("IMAP is not configured; inbox polling is disabled")
	}

	// Initialize handlers
	vendorsHandler := handlers.NewVendorsHandler(vendorRepo, rfpRepo, sender, logger)
	handler := handlers.NewRouter(handlers.Router{
		RFPs:      handlers.NewRFPHandler(rfpService, rfpRepo, logger),
		Vendors:   vendorsHandler,
		Proposals: handlers.NewProposalsHandler(proposalRepo, vendorRepo, rfpRepo, intake, logger),
		Compare:   handlers.NewCompareHandler(rfpService),
		Inbox:     handlers.NewInboxHandler(pollRunner),
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	if poller != nil && cfg.IMAP.PollEnabled {
		if err := poller.Start(); err != nil {
			logger.Fatal("failed to start inbox poller", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rfpdesk API listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	if poller != nil {
		poller.Stop(shutdownCtx)
	}
	vendorsHandler.Wait()
}
