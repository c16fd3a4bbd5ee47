package ports

import (
	"context"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
)

type AccountRepository interface {
	// ListReady returns enabled accounts whose last_updated_at is missing or
	// not after updatedBefore.
	ListReady(ctx context.Context, updatedBefore time.Time) ([]domain.Account, error)
	ListAll(ctx context.Context) ([]domain.Account, error)
	SaveSession(ctx context.Context, id domain.AccountID, bundle domain.SessionBundle) error
	// SaveListings replaces the account's stored batch of new listings.
	SaveListings(ctx context.Context, id domain.AccountID, listings []domain.Listing) error
	// UpdateWatermarks sets last_updated_at and, when lastLatest is non-nil, last_latest.
	UpdateWatermarks(ctx context.Context, id domain.AccountID, lastLatest *time.Time, lastUpdatedAt time.Time) error
	DisableScraping(ctx context.Context, id domain.AccountID) error
	AddContacted(ctx context.Context, id domain.AccountID, count int) error
}
