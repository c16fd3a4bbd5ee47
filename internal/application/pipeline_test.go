package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pipelineNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func listingsAt(base time.Time, offsets ...time.Duration) []domain.Listing {
	listings := make([]domain.Listing, 0, len(offsets))
	for i, offset := range offsets {
		id := string(rune('a' + i))
		listings = append(listings, domain.Listing{ID: id, Title: "Room " + id, PostedAt: base.Add(offset)})
	}

	return listings
}

func newTestPipeline(repo *inMemoryAccountRepo, source *fakeSource, now time.Time) *Pipeline {
	clock := fixedClock{now: now}
	return NewPipeline(repo, source, NewSessionManager(repo, source, clock, nil), clock, nil, PipelineConfig{})
}

func TestPipelineNoTemplateNoContact(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{ID: "acc-1", LastLatest: &watermark}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{listings: listingsAt(watermark, -time.Minute, time.Minute, 2*time.Minute, 3*time.Minute)}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Equal(t, 3, record.NewListings)
	assert.Zero(t, record.Contacted)
	assert.Empty(t, source.contacted)
	assert.Zero(t, source.refreshes)
	assert.Zero(t, source.logins)
	assert.Len(t, repo.listings["acc-1"], 3)

	stored := repo.get("acc-1")
	require.NotNil(t, stored.LastLatest)
	assert.Equal(t, watermark.Add(3*time.Minute), *stored.LastLatest)
	require.NotNil(t, stored.LastUpdatedAt)
	assert.Equal(t, pipelineNow, *stored.LastUpdatedAt)
}

func TestPipelineExpiredSessionLoginThenContact(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{
		ID:          "acc-1",
		Credentials: domain.Credentials{Email: "mila@example.com", Password: "pw"},
		Message:     "Hallo, ich interessiere mich fuer das Zimmer.",
		LastLatest:  &watermark,
		Session: &domain.SessionBundle{
			UserID: "u1", AccessToken: "old", RefreshToken: "r", DevRefNo: "d",
			CreatedAt: pipelineNow.Add(-70 * time.Minute),
		},
	}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{
		listings:   listingsAt(watermark, time.Minute, 2*time.Minute),
		refreshErr: errors.New("refresh rejected"),
	}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Equal(t, 1, source.refreshes)
	assert.Equal(t, 1, source.logins)
	assert.Equal(t, domain.SessionValid, record.SessionState)
	assert.Equal(t, 2, record.Contacted)
	assert.Equal(t, []string{"b", "a"}, source.contacted)

	stored := repo.get("acc-1")
	require.NotNil(t, stored.Session)
	assert.Equal(t, "login-token", stored.Session.AccessToken)
	assert.Equal(t, pipelineNow, stored.Session.CreatedAt)
	assert.Equal(t, 2, stored.Search.ContactedAds)
}

func TestPipelineFetchFailureKeepsWatermark(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{ID: "acc-1", Message: "hi", LastLatest: &watermark}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{fetchErr: errUpstream}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.False(t, record.Success)
	require.ErrorIs(t, record.Err, domain.ErrFetch)
	require.ErrorIs(t, record.Err, errUpstream)
	assert.Empty(t, source.contacted)
	assert.Zero(t, source.logins)

	stored := repo.get("acc-1")
	assert.Equal(t, watermark, *stored.LastLatest)
	require.NotNil(t, stored.LastUpdatedAt)
	assert.Equal(t, pipelineNow, *stored.LastUpdatedAt)
	assert.Equal(t, 0, repo.watermark)
}

func TestPipelineIsIdempotentForUnchangedUpstream(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{
		ID:         "acc-1",
		Message:    "hi",
		LastLatest: &watermark,
		Session:    &domain.SessionBundle{AccessToken: "tok", CreatedAt: pipelineNow},
	}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{listings: listingsAt(watermark, time.Minute, 2*time.Minute)}

	clock := &steppingClock{now: pipelineNow, step: time.Second}
	pipeline := NewPipeline(repo, source, NewSessionManager(repo, source, fixedClock{now: pipelineNow}, nil), clock, nil, PipelineConfig{})

	first := pipeline.Run(context.Background(), repo.get("acc-1"))
	firstUpdated := *repo.get("acc-1").LastUpdatedAt
	second := pipeline.Run(context.Background(), repo.get("acc-1"))

	assert.Equal(t, 2, first.Contacted)
	assert.Zero(t, second.NewListings)
	assert.Zero(t, second.Contacted)
	assert.Len(t, source.contacted, 2)
	assert.Equal(t, watermark.Add(2*time.Minute), *repo.get("acc-1").LastLatest)
	assert.True(t, repo.get("acc-1").LastUpdatedAt.After(firstUpdated))
}

func TestPipelineFirstRunInitializesWatermarkWithoutContacting(t *testing.T) {
	t.Parallel()

	account := domain.Account{
		ID:      "acc-1",
		Message: "hi",
		Session: &domain.SessionBundle{AccessToken: "tok", CreatedAt: pipelineNow},
	}
	repo := newInMemoryAccountRepo(account)
	base := pipelineNow.Add(-2 * time.Hour)
	source := &fakeSource{listings: listingsAt(base, 0, time.Hour)}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Zero(t, record.NewListings)
	assert.Empty(t, source.contacted)
	assert.Equal(t, base.Add(time.Hour), *repo.get("acc-1").LastLatest)
}

func TestPipelinePersistFailureStillContacts(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{
		ID:         "acc-1",
		Message:    "hi",
		LastLatest: &watermark,
		Session:    &domain.SessionBundle{AccessToken: "tok", CreatedAt: pipelineNow.Add(-time.Minute)},
	}
	repo := newInMemoryAccountRepo(account)
	repo.saveErr = errors.New("write failed")
	source := &fakeSource{listings: listingsAt(watermark, time.Minute)}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Equal(t, 1, record.Contacted)
	require.Len(t, record.Issues, 1)
	assert.Equal(t, domain.StepPersist, record.Issues[0].Step)
	require.ErrorIs(t, record.Issues[0].Err, domain.ErrPersistence)
}

func TestPipelineContactFailureDoesNotStopLoop(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{
		ID:         "acc-1",
		Message:    "hi",
		LastLatest: &watermark,
		Session:    &domain.SessionBundle{AccessToken: "tok", CreatedAt: pipelineNow},
	}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{
		listings:   listingsAt(watermark, time.Minute, 2*time.Minute, 3*time.Minute),
		contactErr: map[string]error{"b": errors.New("conversation exists")},
	}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Equal(t, 2, record.Contacted)
	assert.Equal(t, []string{"c", "a"}, source.contacted)
	require.Len(t, record.Issues, 1)
	assert.Equal(t, "b", record.Issues[0].ListingID)
	require.ErrorIs(t, record.Issues[0].Err, domain.ErrContact)
	assert.Equal(t, 2, repo.get("acc-1").Search.ContactedAds)
}

func TestPipelineSessionFailureSkipsContact(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{
		ID:         "acc-1",
		Message:    "hi",
		LastLatest: &watermark,
		Session: &domain.SessionBundle{
			UserID: "u1", AccessToken: "tok", RefreshToken: "r", DevRefNo: "d",
			CreatedAt: pipelineNow.Add(-2 * time.Hour),
		},
	}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{
		listings:   listingsAt(watermark, time.Minute),
		refreshErr: errors.New("refresh rejected"),
		loginErr:   errors.New("login rejected"),
	}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Equal(t, domain.SessionExpired, record.SessionState)
	assert.Empty(t, source.contacted)
	require.Len(t, record.Issues, 1)
	require.ErrorIs(t, record.Issues[0].Err, domain.ErrAuth)
}

func TestPipelineWithoutSessionNeverLogsIn(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{ID: "acc-1", Message: "hi", LastLatest: &watermark}
	repo := newInMemoryAccountRepo(account)
	source := &fakeSource{listings: listingsAt(watermark, time.Minute)}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.Equal(t, domain.SessionNone, record.SessionState)
	assert.Zero(t, source.logins)
	assert.Zero(t, source.refreshes)
	assert.Empty(t, source.contacted)
}

func TestPipelineRoutesThroughAccountProxy(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{ID: "acc-1", LastLatest: &watermark, Search: domain.SearchConfig{CityID: "8", ProxyPort: "8001"}}

	repo := mocks.NewMockAccountRepository(t)
	source := mocks.NewMockListingSource(t)
	clock := fixedClock{now: pipelineNow}
	pipeline := NewPipeline(repo, source, nil, clock, nil, PipelineConfig{ProxyBase: "http://user:pw@proxy.example"})

	source.EXPECT().FetchListings(mockAnyContext(), account.Search, "http://user:pw@proxy.example:8001").Return(nil, nil)
	repo.EXPECT().UpdateWatermarks(mockAnyContext(), domain.AccountID("acc-1"), (*time.Time)(nil), pipelineNow).Return(nil)

	record := pipeline.Run(context.Background(), account)
	assert.True(t, record.Success)
	assert.NotEmpty(t, record.ID)
}

func TestPipelineFinalizeFailureIsRecorded(t *testing.T) {
	t.Parallel()

	account := domain.Account{ID: "acc-1"}
	repo := mocks.NewMockAccountRepository(t)
	source := mocks.NewMockListingSource(t)
	pipeline := NewPipeline(repo, source, nil, fixedClock{now: pipelineNow}, nil, PipelineConfig{})

	source.EXPECT().FetchListings(mockAnyContext(), mock.Anything, "").Return(nil, errUpstream)
	repo.EXPECT().UpdateWatermarks(mockAnyContext(), domain.AccountID("acc-1"), (*time.Time)(nil), pipelineNow).Return(errors.New("db down"))

	record := pipeline.Run(context.Background(), account)
	assert.False(t, record.Success)
	require.Len(t, record.Issues, 1)
	assert.Equal(t, domain.StepFinalize, record.Issues[0].Step)
}

func TestPipelineNearExpiryRefreshFailureFallsBackToLogin(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{
		ID:          "acc-1",
		Credentials: domain.Credentials{Email: "mila@example.com", Password: "pw"},
		Message:     "Hallo, ist das Zimmer noch frei?",
		LastLatest:  &watermark,
		Session: &domain.SessionBundle{
			UserID: "u1", AccessToken: "old", RefreshToken: "r", DevRefNo: "d",
			CreatedAt: pipelineNow.Add(-45 * time.Minute),
		},
	}
	require.Equal(t, domain.SessionNearExpiry, domain.SessionStateAt(account.Session, pipelineNow))

	repo := newInMemoryAccountRepo(account)
	fresh := listingsAt(watermark, time.Minute, 2*time.Minute, 3*time.Minute)
	source := &fakeSource{
		listings:   fresh,
		refreshErr: errors.New("refresh rejected"),
	}

	record := newTestPipeline(repo, source, pipelineNow).Run(context.Background(), account)

	assert.True(t, record.Success)
	assert.Equal(t, 1, source.refreshes)
	assert.Equal(t, 1, source.logins)
	assert.Equal(t, len(fresh), record.NewListings)
	assert.Equal(t, len(fresh), record.Contacted)
	assert.Len(t, source.contacted, len(fresh))

	stored := repo.get("acc-1")
	require.NotNil(t, stored.Session)
	assert.Equal(t, "login-token", stored.Session.AccessToken)
	assert.Equal(t, pipelineNow, stored.Session.CreatedAt)
	assert.Equal(t, len(fresh), stored.Search.ContactedAds)
}

// panickingSource blows up on fetch.
type panickingSource struct {
	fakeSource
}

func (s *panickingSource) FetchListings(context.Context, domain.SearchConfig, string) ([]domain.Listing, error) {
	panic("decoder exploded")
}

func TestPipelinePanicStillAdvancesLastUpdatedAt(t *testing.T) {
	t.Parallel()

	watermark := pipelineNow.Add(-time.Hour)
	account := domain.Account{ID: "acc-1", LastLatest: &watermark}
	repo := newInMemoryAccountRepo(account)
	stats := NewStats(10)
	pipeline := NewPipeline(repo, &panickingSource{}, nil, fixedClock{now: pipelineNow}, nil, PipelineConfig{})
	executor := NewExecutor(pipeline, stats, 1, fixedClock{now: pipelineNow}, nil)

	require.Equal(t, SubmitStarted, executor.Submit(context.Background(), account))
	executor.Close()
	require.NoError(t, executor.Wait(context.Background()))

	snapshot := stats.Snapshot()
	assert.Equal(t, 1, snapshot.FailedRuns)
	require.Len(t, snapshot.History, 1)
	require.Error(t, snapshot.History[0].Err)
	assert.Contains(t, snapshot.History[0].Err.Error(), "decoder exploded")
	assert.NotEmpty(t, snapshot.History[0].ID)

	stored := repo.get("acc-1")
	require.NotNil(t, stored.LastUpdatedAt)
	assert.Equal(t, pipelineNow, *stored.LastUpdatedAt)
	assert.Equal(t, watermark, *stored.LastLatest)
}
