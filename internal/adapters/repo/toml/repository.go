package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	accountsFileMode = 0o600
	accountsDirMode  = 0o700
	tempFilePattern  = ".accounts-*.toml.tmp"
)

// Repository stores accounts in a single TOML file. Writes replace the file
// atomically; repositories opened on the same path share one lock.
type Repository struct {
	accountsPath string
	website      domain.Website
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AccountRepository = (*Repository)(nil)

func NewRepository(path string, website domain.Website) (*Repository, error) {
	if path == "" {
		return nil, errors.New("accounts path is empty")
	}
	accountsPath, err := normalizeAccountsPath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{accountsPath: accountsPath, website: website, mu: lockForPath(accountsPath)}, nil
}

func (r *Repository) Path() string {
	return r.accountsPath
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Account, error) {
	return r.list(ctx, func(domain.Account) bool { return true })
}

func (r *Repository) ListReady(ctx context.Context, updatedBefore time.Time) ([]domain.Account, error) {
	return r.list(ctx, func(account domain.Account) bool {
		return account.IsReady(updatedBefore)
	})
}

// SaveAccount inserts or replaces an account's identity, search settings and
// session. Watermarks and stored listings already on file are kept unless the
// incoming account carries its own.
func (r *Repository) SaveAccount(ctx context.Context, account domain.Account) error {
	if account.ID == "" {
		return errors.New("account id is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	entry := toSchema(account, r.website)
	replaced := false
	for i := range file.Accounts {
		if file.Accounts[i].ID != entry.ID {
			continue
		}
		existing := file.Accounts[i]
		if entry.LastLatest == "" {
			entry.LastLatest = existing.LastLatest
		}
		if entry.LastUpdatedAt == "" {
			entry.LastUpdatedAt = existing.LastUpdatedAt
		}
		if entry.Session == nil {
			entry.Session = existing.Session
		}
		entry.Listings = existing.Listings
		file.Accounts[i] = entry
		replaced = true
		break
	}
	if !replaced {
		file.Accounts = append(file.Accounts, entry)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) SaveSession(ctx context.Context, id domain.AccountID, bundle domain.SessionBundle) error {
	return r.update(ctx, id, func(entry *accountSchema) {
		entry.Session = toSessionSchema(&bundle)
	})
}

func (r *Repository) SaveListings(ctx context.Context, id domain.AccountID, listings []domain.Listing) error {
	return r.update(ctx, id, func(entry *accountSchema) {
		entry.Listings = make([]listingSchema, 0, len(listings))
		for _, listing := range listings {
			entry.Listings = append(entry.Listings, listingSchema{
				ID:         listing.ID,
				Title:      listing.Title,
				UserID:     listing.UserID,
				PublicName: listing.PublicName,
				PostedAt:   formatTime(listing.PostedAt),
				URL:        listing.URL,
			})
		}
	})
}

func (r *Repository) UpdateWatermarks(ctx context.Context, id domain.AccountID, lastLatest *time.Time, lastUpdatedAt time.Time) error {
	return r.update(ctx, id, func(entry *accountSchema) {
		if lastLatest != nil {
			entry.LastLatest = formatTime(*lastLatest)
		}
		entry.LastUpdatedAt = formatTime(lastUpdatedAt)
	})
}

func (r *Repository) DisableScraping(ctx context.Context, id domain.AccountID) error {
	return r.update(ctx, id, func(entry *accountSchema) {
		enabled := false
		entry.Search.ScrapeEnabled = &enabled
	})
}

func (r *Repository) AddContacted(ctx context.Context, id domain.AccountID, count int) error {
	return r.update(ctx, id, func(entry *accountSchema) {
		entry.Search.ContactedAds += count
	})
}

// Listings returns the last stored batch of new listings for an account.
func (r *Repository) Listings(ctx context.Context, id domain.AccountID) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	for _, entry := range file.Accounts {
		if entry.ID != string(id) {
			continue
		}
		listings := make([]domain.Listing, 0, len(entry.Listings))
		for _, listing := range entry.Listings {
			listings = append(listings, domain.Listing{
				ID:         listing.ID,
				Title:      listing.Title,
				UserID:     listing.UserID,
				PublicName: listing.PublicName,
				PostedAt:   parseTime(listing.PostedAt),
				URL:        listing.URL,
			})
		}
		return listings, nil
	}

	return nil, domain.ErrAccountNotFound
}

func (r *Repository) list(ctx context.Context, keep func(domain.Account) bool) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(file.Accounts))
	for _, entry := range file.Accounts {
		if r.website != "" && domain.Website(entry.Website) != r.website {
			continue
		}
		account := fromSchema(entry)
		if keep(account) {
			accounts = append(accounts, account)
		}
	}

	return accounts, nil
}

func (r *Repository) update(ctx context.Context, id domain.AccountID, mutate func(*accountSchema)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	index := -1
	for i := range file.Accounts {
		if file.Accounts[i].ID == string(id) {
			index = i
			break
		}
	}
	if index < 0 {
		return domain.ErrAccountNotFound
	}

	mutate(&file.Accounts[index])

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeAccountsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve accounts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.accountsPath), accountsDirMode); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.accountsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp accounts file: %w", err)
	}

	if err := tempFile.Chmod(accountsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp accounts file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp accounts file: %w", err)
	}

	if err := os.Rename(tempName, r.accountsPath); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	cleanup = false
	return nil
}

func fromSchema(entry accountSchema) domain.Account {
	account := domain.Account{
		ID:          domain.AccountID(entry.ID),
		Credentials: domain.Credentials{Email: entry.Email, Password: entry.Password},
		Website:     domain.Website(entry.Website),
		Message:     entry.Message,
		Search: domain.SearchConfig{
			CityID:       entry.Search.CityID,
			Categories:   entry.Search.Categories,
			RentTypes:    entry.Search.RentTypes,
			MaxRent:      entry.Search.MaxRent,
			MinSize:      entry.Search.MinSize,
			ProxyPort:    entry.Search.ProxyPort,
			Disabled:     entry.Search.ScrapeEnabled != nil && !*entry.Search.ScrapeEnabled,
			ContactedAds: entry.Search.ContactedAds,
		},
		LastLatest:    parseTimePtr(entry.LastLatest),
		LastUpdatedAt: parseTimePtr(entry.LastUpdatedAt),
	}

	if entry.Session != nil {
		account.Session = &domain.SessionBundle{
			UserID:       entry.Session.UserID,
			AccessToken:  entry.Session.AccessToken,
			RefreshToken: entry.Session.RefreshToken,
			DevRefNo:     entry.Session.DevRefNo,
			CreatedAt:    parseTime(entry.Session.CreatedAt),
		}
	}

	return account
}

func toSchema(account domain.Account, fallback domain.Website) accountSchema {
	website := account.Website
	if website == "" {
		website = fallback
	}

	entry := accountSchema{
		ID:       string(account.ID),
		Email:    account.Credentials.Email,
		Password: account.Credentials.Password,
		Website:  string(website),
		Message:  account.Message,
		Search: searchSchema{
			CityID:       account.Search.CityID,
			Categories:   account.Search.Categories,
			RentTypes:    account.Search.RentTypes,
			MaxRent:      account.Search.MaxRent,
			MinSize:      account.Search.MinSize,
			ProxyPort:    account.Search.ProxyPort,
			ContactedAds: account.Search.ContactedAds,
		},
		Session: toSessionSchema(account.Session),
	}
	if account.Search.Disabled {
		enabled := false
		entry.Search.ScrapeEnabled = &enabled
	}
	if account.LastLatest != nil {
		entry.LastLatest = formatTime(*account.LastLatest)
	}
	if account.LastUpdatedAt != nil {
		entry.LastUpdatedAt = formatTime(*account.LastUpdatedAt)
	}

	return entry
}

func toSessionSchema(bundle *domain.SessionBundle) *sessionSchema {
	if bundle == nil {
		return nil
	}

	return &sessionSchema{
		UserID:       bundle.UserID,
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		DevRefNo:     bundle.DevRefNo,
		CreatedAt:    formatTime(bundle.CreatedAt),
	}
}

func parseTimePtr(raw string) *time.Time {
	parsed := parseTime(raw)
	if parsed.IsZero() {
		return nil
	}

	return &parsed
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
