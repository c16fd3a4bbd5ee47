package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/wg-scraper/internal/ports"
)

const (
	DefaultPollInterval       = 2 * time.Minute
	DefaultFreshnessThreshold = 5 * time.Minute
)

type SchedulerConfig struct {
	Interval           time.Duration
	FreshnessThreshold time.Duration
}

// TriggerResult summarises one discovery pass.
type TriggerResult struct {
	Ready     int `json:"ready"`
	Submitted int `json:"submitted"`
	Saturated int `json:"saturated"`
	Duplicate int `json:"duplicate"`
}

// Scheduler periodically submits accounts that have gone stale.
type Scheduler struct {
	mu       sync.RWMutex
	repo     ports.AccountRepository
	executor *Executor
	stats    *Stats
	clock    ports.Clock
	logger   *slog.Logger
	cfg      SchedulerConfig
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(repo ports.AccountRepository, executor *Executor, stats *Stats, clock ports.Clock, logger *slog.Logger, cfg SchedulerConfig) *Scheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if stats == nil {
		stats = NewStats(DefaultHistorySize)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.FreshnessThreshold <= 0 {
		cfg.FreshnessThreshold = DefaultFreshnessThreshold
	}

	return &Scheduler{
		repo:     repo,
		executor: executor,
		stats:    stats,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
}

func (s *Scheduler) Config() SchedulerConfig {
	return s.cfg
}

// Start runs a discovery pass immediately and then on every tick until ctx is
// cancelled or Stop is called. It reports false when the loop is already
// running.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		s.logger.Warn("scheduler already started")
		return false
	}
	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	s.logger.Info("scheduler started",
		"interval", s.cfg.Interval,
		"freshness_threshold", s.cfg.FreshnessThreshold,
		"max_concurrent", s.executor.Capacity(),
	)

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()

	return true
}

// Stop ends the polling loop. Pipelines already submitted keep running. The
// scheduler can be started again afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.logger.Info("scheduler stopped")
}

// Trigger runs one discovery pass outside the timer.
func (s *Scheduler) Trigger(ctx context.Context) (TriggerResult, error) {
	return s.discover(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	result, err := s.discover(ctx)
	if err != nil {
		s.logger.Error("discovery failed", "error", err)
		return
	}
	if result.Ready > 0 {
		s.logger.Info("discovery pass",
			"ready", result.Ready,
			"submitted", result.Submitted,
			"saturated", result.Saturated,
			"duplicate", result.Duplicate,
		)
	}
}

func (s *Scheduler) discover(ctx context.Context) (TriggerResult, error) {
	now := s.clock.Now()
	s.stats.MarkDiscovery(now)

	accounts, err := s.repo.ListReady(ctx, now.Add(-s.cfg.FreshnessThreshold))
	if err != nil {
		return TriggerResult{}, fmt.Errorf("list ready accounts: %w", err)
	}

	result := TriggerResult{Ready: len(accounts)}
	for _, account := range accounts {
		switch s.executor.Submit(ctx, account) {
		case SubmitStarted:
			result.Submitted++
		case SubmitSaturated:
			result.Saturated++
		case SubmitDuplicate:
			result.Duplicate++
		}
	}

	return result, nil
}
