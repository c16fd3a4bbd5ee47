package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
	"github.com/google/uuid"
)

const defaultStoreTimeout = 10 * time.Second

type PipelineConfig struct {
	// ProxyBase is combined with each account's proxy port.
	ProxyBase string
	// StoreTimeout bounds every repository call made during a run.
	StoreTimeout time.Duration
}

// Pipeline runs the scrape-and-contact sequence for a single account.
type Pipeline struct {
	repo     ports.AccountRepository
	source   ports.ListingSource
	sessions *SessionManager
	clock    ports.Clock
	logger   *slog.Logger
	cfg      PipelineConfig
}

func NewPipeline(repo ports.AccountRepository, source ports.ListingSource, sessions *SessionManager, clock ports.Clock, logger *slog.Logger, cfg PipelineConfig) *Pipeline {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		sessions = NewSessionManager(repo, source, clock, logger)
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}

	return &Pipeline{
		repo:     repo,
		source:   source,
		sessions: sessions,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run processes one account and always returns a record describing the run.
// Only a failed fetch marks the run unsuccessful; later step failures are
// collected as issues.
func (p *Pipeline) Run(ctx context.Context, account domain.Account) domain.RunRecord {
	record := domain.RunRecord{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		Email:        account.Credentials.Email,
		StartedAt:    p.clock.Now(),
		SessionState: domain.SessionStateAt(account.Session, p.clock.Now()),
	}
	logger := p.logger.With("account_id", account.ID, "email", account.Credentials.Email, "run_id", record.ID)
	proxy := domain.ProxyEndpoint(p.cfg.ProxyBase, account.Search.ProxyPort)

	p.safeProcess(ctx, account, proxy, &record, logger)

	finishedAt := p.clock.Now()
	if err := p.store(ctx, func(ctx context.Context) error {
		return p.repo.UpdateWatermarks(ctx, account.ID, nil, finishedAt)
	}); err != nil {
		record.AddIssue(domain.StepFinalize, "", fmt.Errorf("%w: update last_updated_at: %w", domain.ErrPersistence, err))
	}
	record.FinishedAt = finishedAt

	logger.Info("account run finished",
		"success", record.Success,
		"new_listings", record.NewListings,
		"contacted", record.Contacted,
		"issues", len(record.Issues),
		"duration", record.Duration(),
	)

	return record
}

// safeProcess turns a panic in any step into a failed run so the final
// last_updated_at write still happens.
func (p *Pipeline) safeProcess(ctx context.Context, account domain.Account, proxy string, record *domain.RunRecord, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("account run panicked", "panic", r, "stack", string(debug.Stack()))
			record.Success = false
			record.Err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	p.process(ctx, account, proxy, record, logger)
}

func (p *Pipeline) process(ctx context.Context, account domain.Account, proxy string, record *domain.RunRecord, logger *slog.Logger) {
	fetched, err := p.source.FetchListings(ctx, account.Search, proxy)
	if err != nil {
		record.Err = fmt.Errorf("%w: %w", domain.ErrFetch, err)
		logger.Warn("fetch listings failed", "error", err)
		return
	}
	record.Success = true

	var fresh []domain.Listing
	if account.LastLatest == nil {
		logger.Info("no watermark yet, initializing from current listings", "fetched", len(fetched))
	} else {
		fresh = domain.NewListings(fetched, *account.LastLatest)
	}
	record.NewListings = len(fresh)

	if len(fresh) > 0 {
		if err := p.store(ctx, func(ctx context.Context) error {
			return p.repo.SaveListings(ctx, account.ID, fresh)
		}); err != nil {
			record.AddIssue(domain.StepPersist, "", fmt.Errorf("%w: save listings: %w", domain.ErrPersistence, err))
			logger.Error("save listings failed", "error", err)
		}
	}

	if latest, moved := domain.AdvanceWatermark(account.LastLatest, fetched); moved {
		now := p.clock.Now()
		if err := p.store(ctx, func(ctx context.Context) error {
			return p.repo.UpdateWatermarks(ctx, account.ID, &latest, now)
		}); err != nil {
			record.AddIssue(domain.StepWatermark, "", fmt.Errorf("%w: update last_latest: %w", domain.ErrPersistence, err))
			logger.Error("update watermark failed", "error", err)
		}
	}

	if !account.CanContact() {
		return
	}

	outcome, err := p.sessions.Advance(ctx, account, proxy)
	record.SessionState = outcome.State
	if outcome.PersistErr != nil {
		record.AddIssue(domain.StepSession, "", outcome.PersistErr)
	}
	if err != nil {
		record.AddIssue(domain.StepSession, "", err)
		logger.Warn("session unavailable, skipping contact", "error", err)
		return
	}
	if !outcome.Usable() || len(fresh) == 0 {
		return
	}

	record.Contacted = p.contact(ctx, *outcome.Bundle, account, fresh, proxy, record, logger)
	if record.Contacted == 0 {
		return
	}

	if err := p.store(ctx, func(ctx context.Context) error {
		return p.repo.AddContacted(ctx, account.ID, record.Contacted)
	}); err != nil {
		record.AddIssue(domain.StepContact, "", fmt.Errorf("%w: add contacted count: %w", domain.ErrPersistence, err))
	}
}

func (p *Pipeline) contact(ctx context.Context, bundle domain.SessionBundle, account domain.Account, listings []domain.Listing, proxy string, record *domain.RunRecord, logger *slog.Logger) int {
	contacted := 0
	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			record.AddIssue(domain.StepContact, listing.ID, fmt.Errorf("%w: %w", domain.ErrContact, err))
			break
		}

		if err := p.source.Contact(ctx, bundle, listing.ID, account.Message, proxy); err != nil {
			record.AddIssue(domain.StepContact, listing.ID, fmt.Errorf("%w: listing %s: %w", domain.ErrContact, listing.ID, err))
			logger.Warn("contact listing failed", "listing_id", listing.ID, "error", err)
			continue
		}

		contacted++
		logger.Debug("contacted listing", "listing_id", listing.ID, "title", listing.Title)
	}

	return contacted
}

func (p *Pipeline) store(ctx context.Context, call func(context.Context) error) error {
	storeCtx, cancel := context.WithTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()

	if err := call(storeCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timed out after %s: %w", p.cfg.StoreTimeout, err)
		}
		return err
	}

	return nil
}
