package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bnema/wg-scraper/internal/adapters/render/report"
	pgrepo "github.com/bnema/wg-scraper/internal/adapters/repo/postgres"
	sqliterepo "github.com/bnema/wg-scraper/internal/adapters/repo/sqlite"
	tomlrepo "github.com/bnema/wg-scraper/internal/adapters/repo/toml"
	"github.com/bnema/wg-scraper/internal/adapters/source/wggesucht"
	"github.com/bnema/wg-scraper/internal/application"
	"github.com/bnema/wg-scraper/internal/config"
	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/logging"
	"github.com/bnema/wg-scraper/internal/ports"
)

// accountStore is what every storage backend offers on top of the pipeline's
// repository port.
type accountStore interface {
	ports.AccountRepository
	SaveAccount(ctx context.Context, account domain.Account) error
}

type app struct {
	cfg            config.Config
	logger         *slog.Logger
	repo           accountStore
	service        *application.Service
	stats          *application.Stats
	executor       *application.Executor
	scheduler      *application.Scheduler
	renderStats    func(application.StatsSnapshot, report.Options) (string, error)
	renderAccounts func([]application.AccountStatus, report.Options) (string, error)
	httpClient     *http.Client
	now            func() time.Time
	closers        []func() error
}

// appState defers wiring until flags are parsed and lets Execute release
// whatever was opened.
type appState struct {
	app *app
}

func (s *appState) wire(opts config.LoadOptions, stderr io.Writer) error {
	if s.app != nil {
		return nil
	}

	wired, err := wireApp(opts, stderr)
	if err != nil {
		return err
	}
	s.app = wired
	return nil
}

func (s *appState) close() {
	if s.app == nil {
		return
	}
	if err := s.app.close(); err != nil {
		s.app.logger.Warn("close resources", "error", err)
	}
	s.app = nil
}

func wireApp(opts config.LoadOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, now: time.Now, httpClient: http.DefaultClient}

	logOutput := stderr
	if cfg.Log.File != "" {
		file, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, file.Close)
		logOutput = io.MultiWriter(stderr, file)
	}
	a.logger = logging.Setup(cfg.Log.Level, cfg.Log.Format, logOutput)

	source := wggesucht.NewClient(wggesucht.API{
		BaseURL:    cfg.Source.BaseURL,
		ListingURL: cfg.Source.ListingURL,
	}, &http.Client{}, cfg.Source.Timeout)

	repo, closeRepo, err := openStore(cfg, source.Location)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("wire account repository: %w", err)
	}
	a.repo = repo
	a.closers = append(a.closers, closeRepo)

	clock := ports.SystemClock{}
	sessions := application.NewSessionManager(repo, source, clock, a.logger)
	pipeline := application.NewPipeline(repo, source, sessions, clock, a.logger, application.PipelineConfig{
		ProxyBase:    cfg.Source.ProxyURL,
		StoreTimeout: cfg.Store.Timeout,
	})

	a.stats = application.NewStats(cfg.Scheduler.HistorySize)
	a.executor = application.NewExecutor(pipeline, a.stats, cfg.Scheduler.MaxConcurrent, clock, a.logger)
	a.scheduler = application.NewScheduler(repo, a.executor, a.stats, clock, a.logger, application.SchedulerConfig{
		Interval:           cfg.Scheduler.Interval,
		FreshnessThreshold: cfg.Scheduler.Freshness,
	})
	a.service = application.NewService(repo, clock, cfg.Scheduler.Freshness)
	a.renderStats = report.RenderStats
	a.renderAccounts = report.RenderAccounts

	a.logger.Debug("configuration loaded",
		"file", cfg.File,
		"store", cfg.Store.Driver,
		"website", cfg.Website,
	)

	return a, nil
}

func openStore(cfg config.Config, loc *time.Location) (accountStore, func() error, error) {
	switch cfg.Store.Driver {
	case config.StoreTOML:
		repo, err := tomlrepo.NewRepository(cfg.Store.Path, cfg.Website)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	case config.StoreSQLite:
		repo, err := sqliterepo.Open(cfg.Store.Path, cfg.Website)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.StorePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
		defer cancel()

		repo, err := pgrepo.Open(ctx, cfg.Store.DSN, cfg.Website, pgrepo.Options{
			MaxConns:       cfg.Store.MaxConns,
			SimpleProtocol: cfg.Store.SimpleProtocol,
			Location:       loc,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		return repo, func() error { repo.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *app) schedulerSettings() report.Options {
	return report.Options{
		Now:           a.now(),
		PollInterval:  a.cfg.Scheduler.Interval,
		Freshness:     a.cfg.Scheduler.Freshness,
		MaxConcurrent: a.cfg.Scheduler.MaxConcurrent,
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
