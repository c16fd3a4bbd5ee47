package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
)

// SessionOutcome is the result of advancing an account's session for one run.
type SessionOutcome struct {
	State     domain.SessionState
	Bundle    *domain.SessionBundle
	Refreshed bool
	LoggedIn  bool
	// PersistErr is set when the renewed bundle could not be stored. The
	// in-memory bundle is still usable for the current run.
	PersistErr error
}

// Usable reports whether the outcome carries a session that can authenticate calls.
func (o SessionOutcome) Usable() bool {
	return o.State == domain.SessionValid && o.Bundle != nil
}

type SessionManager struct {
	repo   ports.AccountRepository
	source ports.ListingSource
	clock  ports.Clock
	logger *slog.Logger
}

func NewSessionManager(repo ports.AccountRepository, source ports.ListingSource, clock ports.Clock, logger *slog.Logger) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{repo: repo, source: source, clock: clock, logger: logger}
}

// Advance brings the account's session to a usable state when possible.
// Login with stored credentials is only attempted after a refresh failed.
func (m *SessionManager) Advance(ctx context.Context, account domain.Account, proxy string) (SessionOutcome, error) {
	state := domain.SessionStateAt(account.Session, m.clock.Now())
	switch state {
	case domain.SessionNone:
		return SessionOutcome{State: domain.SessionNone}, nil
	case domain.SessionValid:
		bundle := *account.Session
		return SessionOutcome{State: domain.SessionValid, Bundle: &bundle}, nil
	}

	logger := m.logger.With("account_id", account.ID, "session_state", state)

	refreshed, refreshErr := m.refresh(ctx, *account.Session, proxy)
	if refreshErr == nil {
		outcome := SessionOutcome{State: domain.SessionValid, Bundle: &refreshed, Refreshed: true}
		outcome.PersistErr = m.persist(ctx, account.ID, refreshed)
		logger.Debug("session refreshed")
		return outcome, nil
	}
	logger.Info("session refresh failed, falling back to login", "error", refreshErr)

	bundle, loginErr := m.source.Login(ctx, account.Credentials, proxy)
	if loginErr != nil {
		authErr := fmt.Errorf("%w: %w", domain.ErrAuth, errors.Join(
			fmt.Errorf("refresh session: %w", refreshErr),
			fmt.Errorf("login: %w", loginErr),
		))
		if errors.Is(loginErr, domain.ErrMFARequired) {
			logger.Warn("login requires two-factor verification, disabling account")
			if err := m.repo.DisableScraping(ctx, account.ID); err != nil {
				authErr = errors.Join(authErr, fmt.Errorf("%w: disable scraping: %w", domain.ErrPersistence, err))
			}
		}
		return SessionOutcome{State: domain.SessionExpired}, authErr
	}

	bundle.CreatedAt = m.clock.Now()
	outcome := SessionOutcome{State: domain.SessionValid, Bundle: &bundle, LoggedIn: true}
	outcome.PersistErr = m.persist(ctx, account.ID, bundle)
	logger.Info("session restored by login")

	return outcome, nil
}

func (m *SessionManager) refresh(ctx context.Context, bundle domain.SessionBundle, proxy string) (domain.SessionBundle, error) {
	if !bundle.CanRefresh() {
		return domain.SessionBundle{}, errors.New("session bundle is missing refresh fields")
	}

	refreshed, err := m.source.Refresh(ctx, bundle, proxy)
	if err != nil {
		return domain.SessionBundle{}, err
	}
	refreshed.CreatedAt = m.clock.Now()

	return refreshed, nil
}

func (m *SessionManager) persist(ctx context.Context, id domain.AccountID, bundle domain.SessionBundle) error {
	if err := m.repo.SaveSession(ctx, id, bundle); err != nil {
		return fmt.Errorf("%w: save session: %w", domain.ErrPersistence, err)
	}

	return nil
}
