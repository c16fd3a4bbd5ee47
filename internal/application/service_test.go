package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceListAccountsReportsReadinessAndSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, fixedClock{now: now}, 5*time.Minute)

	repo.EXPECT().ListAll(mockAnyContext()).Return([]domain.Account{
		{ID: "b", LastUpdatedAt: timePtr(now.Add(-time.Minute))},
		{ID: "a", Session: &domain.SessionBundle{AccessToken: "tok", CreatedAt: now.Add(-45 * time.Minute)}},
	}, nil)

	statuses, err := service.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, domain.AccountID("a"), statuses[0].Account.ID)
	assert.True(t, statuses[0].Ready)
	assert.Equal(t, domain.SessionNearExpiry, statuses[0].SessionState)
	assert.Equal(t, 45*time.Minute, statuses[0].SessionAge)

	assert.Equal(t, domain.AccountID("b"), statuses[1].Account.ID)
	assert.False(t, statuses[1].Ready)
	assert.Equal(t, domain.SessionNone, statuses[1].SessionState)
}

func TestServiceListReadyUsesFreshnessCutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, fixedClock{now: now}, 5*time.Minute)

	repo.EXPECT().ListReady(mockAnyContext(), now.Add(-5*time.Minute)).Return([]domain.Account{{ID: "a"}}, nil)

	statuses, err := service.ListReady(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Ready)
}

func TestServiceListAccountsWrapsRepositoryError(t *testing.T) {
	t.Parallel()

	listErr := errors.New("db down")
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, nil, 0)

	repo.EXPECT().ListAll(mockAnyContext()).Return(nil, listErr)

	_, err := service.ListAccounts(context.Background())
	require.ErrorIs(t, err, listErr)
	assert.Contains(t, err.Error(), "list accounts")
}
