package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bnema/wg-scraper/internal/application"
	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStatsShowsTotalsAndNewestRunsFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)

	output, err := RenderStats(application.StatsSnapshot{
		TotalRuns:        3,
		SuccessfulRuns:   2,
		FailedRuns:       1,
		TotalNewListings: 5,
		TotalContacted:   4,
		CurrentlyRunning: 1,
		LastDiscovery:    now.Add(-3 * time.Minute),
		History: []domain.RunRecord{
			{AccountID: "1", Email: "mila@example.com", StartedAt: now.Add(-9 * time.Minute), FinishedAt: now.Add(-9*time.Minute + 1500*time.Millisecond), Success: true, NewListings: 5, Contacted: 4},
			{AccountID: "2", Email: "ben@example.com", StartedAt: now.Add(-5 * time.Minute), Err: errors.New("fetch listings: status 503")},
			{
				AccountID: "3", StartedAt: now.Add(-time.Minute), Success: true,
				Issues: []domain.StepIssue{{Step: domain.StepContact, ListingID: "42", Err: errors.New("status 500")}},
			},
		},
	}, Options{Now: now, PollInterval: 2 * time.Minute, Freshness: 5 * time.Minute, MaxConcurrent: 10, HistoryLimit: 2})

	require.NoError(t, err)
	assert.Contains(t, output, "Scraper Stats")
	assert.Contains(t, output, "runs: 3")
	assert.Contains(t, output, "failed: 1")
	assert.Contains(t, output, "contacted: 4")
	assert.Contains(t, output, "last check: 3 min ago")
	assert.Contains(t, output, "poll every 2m0s, stale after 5m0s, max 10 concurrent")
	assert.Contains(t, output, "Recent runs (2)")
	assert.Contains(t, output, "fetch listings: status 503")
	assert.Contains(t, output, "! contact 42: status 500")
	assert.NotContains(t, output, "mila@example.com")
	assert.Less(t, strings.Index(output, "! contact 42"), strings.Index(output, "ben@example.com"))
}

func TestRenderStatsWithoutRuns(t *testing.T) {
	output, err := RenderStats(application.StatsSnapshot{}, Options{})

	require.NoError(t, err)
	assert.Contains(t, output, "last check: never")
	assert.Contains(t, output, "No runs recorded yet.")
	assert.NotContains(t, output, "poll every")
}

func TestRenderAccounts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := now.Add(-2 * time.Hour)

	output, err := RenderAccounts([]application.AccountStatus{
		{
			Account: domain.Account{
				ID:            "1",
				Credentials:   domain.Credentials{Email: "mila@example.com", Password: "secret"},
				Search:        domain.SearchConfig{CityID: "8", MaxRent: 700, ProxyPort: "8001", ContactedAds: 3},
				LastUpdatedAt: &updated,
			},
			Ready:        true,
			SessionState: domain.SessionValid,
			SessionAge:   20 * time.Minute,
		},
		{
			Account: domain.Account{
				ID:          "2",
				Credentials: domain.Credentials{Email: "ben@example.com"},
				Search:      domain.SearchConfig{Disabled: true},
			},
			SessionState: domain.SessionNone,
		},
	}, Options{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 2, ready: 1")
	assert.Contains(t, output, "mila@example.com (1) [ready]")
	assert.Contains(t, output, "ben@example.com (2) [disabled]")
	assert.Contains(t, output, "city 8, max 700 EUR, proxy :8001")
	assert.Contains(t, output, "last scrape: 2 h ago")
	assert.Contains(t, output, "newest listing: never")
	assert.Contains(t, output, "20m0s old")
	assert.NotContains(t, output, "secret")
}

func TestRenderAccountsEmpty(t *testing.T) {
	output, err := RenderAccounts(nil, Options{})

	require.NoError(t, err)
	assert.Contains(t, output, "No accounts configured.")
}

func TestFormatAgo(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{at: time.Time{}, want: "never"},
		{at: now.Add(-10 * time.Second), want: "just now"},
		{at: now.Add(-45 * time.Minute), want: "45 min ago"},
		{at: now.Add(-5 * time.Hour), want: "5 h ago"},
		{at: now.Add(-72 * time.Hour), want: "3 days ago"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAgo(tt.at, now))
	}
	assert.Equal(t, "2026-03-01T12:00:00Z", formatAgo(now, time.Time{}))
}
