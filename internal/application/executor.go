package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
	"golang.org/x/sync/semaphore"
)

const DefaultMaxConcurrent = 10

type AccountRunner interface {
	Run(ctx context.Context, account domain.Account) domain.RunRecord
}

type SubmitResult string

const (
	SubmitStarted   SubmitResult = "started"
	SubmitSaturated SubmitResult = "saturated"
	SubmitDuplicate SubmitResult = "duplicate"
	SubmitClosed    SubmitResult = "closed"
)

// Executor runs account pipelines on at most capacity goroutines. Submissions
// never queue: a full pool rejects the account until the next discovery pass.
type Executor struct {
	runner   AccountRunner
	stats    *Stats
	clock    ports.Clock
	logger   *slog.Logger
	capacity int64
	sem      *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[domain.AccountID]struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewExecutor(runner AccountRunner, stats *Stats, capacity int, clock ports.Clock, logger *slog.Logger) *Executor {
	if capacity <= 0 {
		capacity = DefaultMaxConcurrent
	}
	if stats == nil {
		stats = NewStats(DefaultHistorySize)
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		runner:   runner,
		stats:    stats,
		clock:    clock,
		logger:   logger,
		capacity: int64(capacity),
		sem:      semaphore.NewWeighted(int64(capacity)),
		inFlight: map[domain.AccountID]struct{}{},
	}
}

func (e *Executor) Capacity() int {
	return int(e.capacity)
}

func (e *Executor) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.inFlight)
}

// Submit starts a pipeline for the account if a slot is free and the account
// is not already running. The run outlives ctx cancellation.
func (e *Executor) Submit(ctx context.Context, account domain.Account) SubmitResult {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return SubmitClosed
	}
	if _, running := e.inFlight[account.ID]; running {
		e.mu.Unlock()
		return SubmitDuplicate
	}
	if !e.sem.TryAcquire(1) {
		e.mu.Unlock()
		return SubmitSaturated
	}
	e.inFlight[account.ID] = struct{}{}
	e.wg.Add(1)
	e.mu.Unlock()

	e.stats.RunStarted()
	go e.run(context.WithoutCancel(ctx), account)

	return SubmitStarted
}

// Close rejects further submissions. Runs already started continue.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// Wait blocks until every started run has finished or ctx is done. When ctx
// ends first, the helper goroutine lives on until the last run returns; runs
// are bounded by the source and store timeouts, so it does not outlive them.
func (e *Executor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running pipelines: %w", ctx.Err())
	}
}

func (e *Executor) run(ctx context.Context, account domain.Account) {
	defer e.wg.Done()
	defer e.release(account.ID)

	e.stats.Record(e.safeRun(ctx, account))
}

func (e *Executor) safeRun(ctx context.Context, account domain.Account) (record domain.RunRecord) {
	startedAt := e.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("account pipeline panicked",
				"account_id", account.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			record = domain.RunRecord{
				AccountID:  account.ID,
				Email:      account.Credentials.Email,
				StartedAt:  startedAt,
				FinishedAt: e.clock.Now(),
				Err:        fmt.Errorf("pipeline panic: %v", r),
			}
		}
	}()

	return e.runner.Run(ctx, account)
}

func (e *Executor) release(id domain.AccountID) {
	e.mu.Lock()
	delete(e.inFlight, id)
	e.mu.Unlock()

	e.sem.Release(1)
	e.stats.RunFinished()
}
