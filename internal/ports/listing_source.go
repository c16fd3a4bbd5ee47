package ports

import (
	"context"

	"github.com/bnema/wg-scraper/internal/domain"
)

// ListingSource talks to the listing site. Every call takes the proxy endpoint
// for the account it runs on behalf of; an empty proxy means a direct connection.
type ListingSource interface {
	FetchListings(ctx context.Context, search domain.SearchConfig, proxy string) ([]domain.Listing, error)
	Login(ctx context.Context, credentials domain.Credentials, proxy string) (domain.SessionBundle, error)
	Refresh(ctx context.Context, bundle domain.SessionBundle, proxy string) (domain.SessionBundle, error)
	Contact(ctx context.Context, bundle domain.SessionBundle, listingID, message, proxy string) error
}
