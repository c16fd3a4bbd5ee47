package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
)

// Service answers account queries for the CLI and the monitoring API.
type Service struct {
	repo      ports.AccountRepository
	clock     ports.Clock
	freshness time.Duration
}

func NewService(repo ports.AccountRepository, clock ports.Clock, freshness time.Duration) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if freshness <= 0 {
		freshness = DefaultFreshnessThreshold
	}

	return &Service{repo: repo, clock: clock, freshness: freshness}
}

func (s *Service) ListAccounts(ctx context.Context) ([]AccountStatus, error) {
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return s.statuses(accounts), nil
}

func (s *Service) ListReady(ctx context.Context) ([]AccountStatus, error) {
	accounts, err := s.repo.ListReady(ctx, s.clock.Now().Add(-s.freshness))
	if err != nil {
		return nil, fmt.Errorf("list ready accounts: %w", err)
	}

	return s.statuses(accounts), nil
}

func (s *Service) statuses(accounts []domain.Account) []AccountStatus {
	now := s.clock.Now()
	cutoff := now.Add(-s.freshness)

	statuses := make([]AccountStatus, 0, len(accounts))
	for _, account := range accounts {
		status := AccountStatus{
			Account:      account,
			Ready:        account.IsReady(cutoff),
			SessionState: domain.SessionStateAt(account.Session, now),
		}
		if account.Session != nil && !account.Session.CreatedAt.IsZero() {
			status.SessionAge = account.Session.Age(now)
		}
		statuses = append(statuses, status)
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Account.ID < statuses[j].Account.ID
	})

	return statuses
}
