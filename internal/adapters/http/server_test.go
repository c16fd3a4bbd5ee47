package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/wg-scraper/internal/application"
	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueries struct {
	all   []application.AccountStatus
	ready []application.AccountStatus
	err   error
}

func (f fakeQueries) ListAccounts(context.Context) ([]application.AccountStatus, error) {
	return f.all, f.err
}

func (f fakeQueries) ListReady(context.Context) ([]application.AccountStatus, error) {
	return f.ready, f.err
}

type fakeTrigger struct {
	result application.TriggerResult
	err    error
	calls  int
}

func (f *fakeTrigger) Trigger(context.Context) (application.TriggerResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeStats application.StatsSnapshot

func (f fakeStats) Snapshot() application.StatsSnapshot {
	return application.StatsSnapshot(f)
}

func newTestRouter(t *testing.T, queries fakeQueries, trigger *fakeTrigger, stats fakeStats) (http.Handler, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handler := NewHandler(queries, trigger, stats, ConfigView{PollIntervalMinutes: 2, FreshnessThresholdMinutes: 5, MaxConcurrent: 10}, "1.2.3")
	return NewRouter(handler, logger), &logs
}

func serve(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func sampleStatus() application.AccountStatus {
	updated := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	return application.AccountStatus{
		Account: domain.Account{
			ID:            "1",
			Credentials:   domain.Credentials{Email: "mila@example.com", Password: "secret-password"},
			Website:       domain.WebsiteWGGesucht,
			Search:        domain.SearchConfig{CityID: "8", Categories: []int{0}, ContactedAds: 4},
			Session:       &domain.SessionBundle{AccessToken: "secret-token", RefreshToken: "secret-refresh"},
			LastUpdatedAt: &updated,
		},
		Ready:        true,
		SessionState: domain.SessionValid,
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, fakeQueries{}, &fakeTrigger{}, fakeStats{})
	rec := serve(t, router, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"running","service":"wg-scraper","version":"1.2.3"}`, rec.Body.String())

	rec = serve(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsIncludesHistoryAndConfig(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := fakeStats{
		TotalRuns:        2,
		SuccessfulRuns:   1,
		FailedRuns:       1,
		TotalNewListings: 3,
		TotalContacted:   2,
		CurrentlyRunning: 1,
		LastDiscovery:    started,
		History: []domain.RunRecord{{
			ID:          "run-1",
			AccountID:   "1",
			StartedAt:   started,
			FinishedAt:  started.Add(time.Second),
			NewListings: 3,
			Err:         errors.New("fetch listings: boom"),
			Issues:      []domain.StepIssue{{Step: domain.StepContact, ListingID: "42", Err: errors.New("status 500")}},
		}},
	}

	router, _ := newTestRouter(t, fakeQueries{}, &fakeTrigger{}, stats)
	rec := serve(t, router, http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var got StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Stats.TotalRuns)
	assert.Equal(t, 1, got.Stats.CurrentlyRunning)
	assert.Equal(t, 10, got.Config.MaxConcurrent)
	assert.InDelta(t, 5, got.Config.FreshnessThresholdMinutes, 0.001)
	require.Len(t, got.Stats.History, 1)
	assert.Equal(t, "fetch listings: boom", got.Stats.History[0].Error)
	assert.Equal(t, "42", got.Stats.History[0].Issues[0].ListingID)

	snapshot := got.Snapshot()
	assert.True(t, started.Equal(snapshot.LastDiscovery))
	require.Len(t, snapshot.History, 1)
	assert.EqualError(t, snapshot.History[0].Err, "fetch listings: boom")
	assert.Equal(t, domain.StepContact, snapshot.History[0].Issues[0].Step)
}

func TestAccountsNeverExposeSecrets(t *testing.T) {
	t.Parallel()

	status := sampleStatus()
	router, _ := newTestRouter(t, fakeQueries{all: []application.AccountStatus{status}, ready: []application.AccountStatus{status}}, &fakeTrigger{}, fakeStats{})

	for _, path := range []string{"/accounts", "/accounts/ready"} {
		rec := serve(t, router, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := rec.Body.String()
		assert.NotContains(t, body, "secret", path)

		var got AccountsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Success)
		assert.Equal(t, 1, got.Count)
		assert.Equal(t, "mila@example.com", got.Accounts[0].Email)
	}

	rec := serve(t, router, http.MethodGet, "/accounts")
	var all AccountsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.NotNil(t, all.Accounts[0].Configuration)
	assert.Equal(t, 4, all.Accounts[0].Configuration.ContactedAds)
	assert.True(t, all.Accounts[0].Configuration.ScrapeEnabled)
}

func TestAccountsRepositoryErrorRenders500(t *testing.T) {
	t.Parallel()

	router, logs := newTestRouter(t, fakeQueries{err: errors.New("list accounts: db down")}, &fakeTrigger{}, fakeStats{})
	rec := serve(t, router, http.MethodGet, "/accounts/ready")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"list accounts: db down"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "status=500")
}

func TestTriggerScrape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		trigger     *fakeTrigger
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "submits ready accounts",
			trigger:     &fakeTrigger{result: application.TriggerResult{Ready: 3, Submitted: 2, Saturated: 1}},
			wantStatus:  http.StatusOK,
			wantMessage: "Triggered scraping for 2 accounts",
		},
		{
			name:        "nothing ready",
			trigger:     &fakeTrigger{},
			wantStatus:  http.StatusOK,
			wantMessage: "No accounts ready to scrape",
		},
		{
			name:       "repository failure",
			trigger:    &fakeTrigger{err: errors.New("list ready accounts: timeout")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, fakeQueries{}, tt.trigger, fakeStats{})
			rec := serve(t, router, http.MethodPost, "/scrape/trigger")
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 1, tt.trigger.calls)

			if tt.wantStatus != http.StatusOK {
				return
			}
			var got TriggerResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.True(t, got.Success)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, tt.trigger.result, got.TriggerResult)
		})
	}
}

func TestTriggerRequiresPost(t *testing.T) {
	t.Parallel()

	trigger := &fakeTrigger{}
	router, _ := newTestRouter(t, fakeQueries{}, trigger, fakeStats{})
	rec := serve(t, router, http.MethodGet, "/scrape/trigger")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, trigger.calls)
}

func TestClientStats(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, fakeQueries{}, &fakeTrigger{}, fakeStats{TotalRuns: 7})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}
	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Stats.TotalRuns)
	assert.Equal(t, 10, stats.Config.MaxConcurrent)
}

func TestClientReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		Error(w, http.StatusInternalServerError, errors.New("boom"))
	}))
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL + "/"}
	_, err := client.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500: boom")
}

func TestClientRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "ftp://host", "http://"} {
		_, err := (&Client{BaseURL: base}).Stats(context.Background())
		assert.Error(t, err, base)
	}
}
