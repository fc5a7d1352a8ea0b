package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
)

// InboxPoller is the intake step the poller runs; *ProposalIntake implements it.
type InboxPoller interface {
	Poll(ctx context.Context) (*IntakeStats, error)
}

// LockFunc tries to take a cross-process lock for one poll.
// When acquired is false the poll is skipped; otherwise unlock must be called.
type LockFunc func(ctx context.Context) (acquired bool, unlock func(context.Context) error, err error)

// Poller runs inbox polls on a fixed interval.
type Poller struct {
	intake   InboxPoller
	lock     LockFunc
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewPoller creates a Poller. lock may be nil for single-instance deployments.
func NewPoller(intake InboxPoller, interval time.Duration, lock LockFunc, logger *zap.Logger) *Poller {
	return &Poller{
		intake:   intake,
		lock:     lock,
		interval: interval,
		timeout:  5 * time.Minute,
		logger:   logging.OrNop(logger),
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Start schedules polling every interval. A poll still running when the next
// tick fires causes that tick to be skipped.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval < time.Second {
		return fmt.Errorf("poll interval must be at least 1s, got %s", p.interval)
	}
	if p.cron != nil {
		return fmt.Errorf("poller already started")
	}

	logger := cronLogger{s: p.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	schedule := fmt.Sprintf("@every %s", p.interval)
	if _, err := c.AddFunc(schedule, p.run); err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}

	p.cron = c
	c.Start()
	p.logger.Info("inbox polling scheduled", zap.Duration("interval", p.interval))
	return nil
}

// Stop halts scheduling and waits for a running poll to finish or ctx to end.
func (p *Poller) Stop(ctx context.Context) {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()

	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

func (p *Poller) run() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if _, err := p.RunOnce(ctx); err != nil {
		p.logger.Error("inbox poll failed", zap.Error(err))
	}
}

// RunOnce takes the lock (if any) and performs a single poll.
// It returns nil stats and no error when another process holds the lock.
func (p *Poller) RunOnce(ctx context.Context) (*IntakeStats, error) {
	if p.lock != nil {
		acquired, unlock, err := p.lock(ctx)
		if err != nil {
			return nil, err
		}
		if !acquired {
			p.logger.Info("another inbox poll is already running, skipping")
			return nil, nil
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				p.logger.Warn("failed to release poll lock", zap.Error(err))
			}
		}()
	}

	stats, err := p.intake.Poll(ctx)
	if stats != nil {
		p.logger.Info("inbox poll finished",
			zap.Int("total", stats.Total),
			zap.Int("new", stats.New),
			zap.Int("skipped", stats.Skipped),
			zap.Int("unmatched", stats.Unmatched),
			zap.Int("errors", stats.Errors),
		)
	}
	return stats, err
}
