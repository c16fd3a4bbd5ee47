package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/stretchr/testify/mock"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(c.step)
	return c.now
}

func mockAnyContext() interface{} {
	return mock.Anything
}

type inMemoryAccountRepo struct {
	mu        sync.Mutex
	accounts  map[domain.AccountID]domain.Account
	listings  map[domain.AccountID][]domain.Listing
	saveErr   error
	listErr   error
	sessions  int
	watermark int
}

func newInMemoryAccountRepo(accounts ...domain.Account) *inMemoryAccountRepo {
	repo := &inMemoryAccountRepo{
		accounts: map[domain.AccountID]domain.Account{},
		listings: map[domain.AccountID][]domain.Listing{},
	}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}

	return repo
}

func (r *inMemoryAccountRepo) get(id domain.AccountID) domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.accounts[id]
}

func (r *inMemoryAccountRepo) ListReady(_ context.Context, updatedBefore time.Time) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}

	ready := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		if account.IsReady(updatedBefore) {
			ready = append(ready, account)
		}
	}

	return ready, nil
}

func (r *inMemoryAccountRepo) ListAll(_ context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}

	all := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		all = append(all, account)
	}

	return all, nil
}

func (r *inMemoryAccountRepo) SaveSession(_ context.Context, id domain.AccountID, bundle domain.SessionBundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Session = &bundle
	r.accounts[id] = account
	r.sessions++

	return nil
}

func (r *inMemoryAccountRepo) SaveListings(_ context.Context, id domain.AccountID, listings []domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.listings[id] = append([]domain.Listing(nil), listings...)

	return nil
}

func (r *inMemoryAccountRepo) UpdateWatermarks(_ context.Context, id domain.AccountID, lastLatest *time.Time, lastUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if lastLatest != nil {
		latest := *lastLatest
		account.LastLatest = &latest
		r.watermark++
	}
	updated := lastUpdatedAt
	account.LastUpdatedAt = &updated
	r.accounts[id] = account

	return nil
}

func (r *inMemoryAccountRepo) DisableScraping(_ context.Context, id domain.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Search.Disabled = true
	r.accounts[id] = account

	return nil
}

func (r *inMemoryAccountRepo) AddContacted(_ context.Context, id domain.AccountID, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Search.ContactedAds += count
	r.accounts[id] = account

	return nil
}

// fakeSource serves a fixed listing set and counts calls.
type fakeSource struct {
	mu         sync.Mutex
	listings   []domain.Listing
	fetchErr   error
	refreshErr error
	loginErr   error
	contactErr map[string]error
	fetches    int
	refreshes  int
	logins     int
	contacted  []string
}

func (s *fakeSource) FetchListings(context.Context, domain.SearchConfig, string) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}

	return append([]domain.Listing(nil), s.listings...), nil
}

func (s *fakeSource) Login(_ context.Context, credentials domain.Credentials, _ string) (domain.SessionBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logins++
	if s.loginErr != nil {
		return domain.SessionBundle{}, s.loginErr
	}

	return domain.SessionBundle{UserID: "u-" + credentials.Email, AccessToken: "login-token", RefreshToken: "login-refresh", DevRefNo: "dev"}, nil
}

func (s *fakeSource) Refresh(_ context.Context, bundle domain.SessionBundle, _ string) (domain.SessionBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshes++
	if s.refreshErr != nil {
		return domain.SessionBundle{}, s.refreshErr
	}
	bundle.AccessToken = "refreshed-token"

	return bundle, nil
}

func (s *fakeSource) Contact(_ context.Context, _ domain.SessionBundle, listingID, _ string, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.contactErr[listingID]; err != nil {
		return err
	}
	s.contacted = append(s.contacted, listingID)

	return nil
}

var errUpstream = errors.New("upstream unavailable")

func timePtr(t time.Time) *time.Time {
	return &t
}
