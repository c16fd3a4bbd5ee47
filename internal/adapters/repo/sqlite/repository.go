package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const memoryPath = ":memory:"

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

// Repository is an AccountRepository backed by a local SQLite database.
type Repository struct {
	db      *sql.DB
	website domain.Website
}

var _ ports.AccountRepository = (*Repository)(nil)

// Open opens the database at path, runs migrations, and scopes every query
// to website.
func Open(path string, website domain.Website) (*Repository, error) {
	dsn := path
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == memoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, website: website}, nil
}

func runMigrations(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const selectAccounts = `
SELECT a.id, a.email, a.password, a.website, a.message,
       a.city_id, a.categories, a.rent_types, a.max_rent, a.min_size, a.proxy_port,
       a.scrape_enabled, a.contacted_ads, a.last_latest, a.last_updated_at,
       s.user_id, s.access_token, s.refresh_token, s.dev_ref_no, s.created_at
FROM accounts a
LEFT JOIN account_sessions s ON s.account_id = a.id
WHERE a.website = ?`

func (r *Repository) ListAll(ctx context.Context) ([]domain.Account, error) {
	return r.query(ctx, selectAccounts+` ORDER BY a.id`, string(r.website))
}

func (r *Repository) ListReady(ctx context.Context, updatedBefore time.Time) ([]domain.Account, error) {
	return r.query(ctx, selectAccounts+`
  AND a.scrape_enabled = 1
  AND (a.last_updated_at IS NULL OR a.last_updated_at <= ?)
ORDER BY a.last_updated_at IS NOT NULL, a.last_updated_at, a.id`, string(r.website), updatedBefore.UnixNano())
}

// SaveAccount inserts or replaces an account's profile, search settings and
// session. Watermarks already stored are kept unless the account carries them.
func (r *Repository) SaveAccount(ctx context.Context, account domain.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	website := account.Website
	if website == "" {
		website = r.website
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO accounts (id, email, password, website, message, city_id, categories, rent_types,
                      max_rent, min_size, proxy_port, scrape_enabled, contacted_ads, last_latest, last_updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    email = excluded.email,
    password = excluded.password,
    website = excluded.website,
    message = excluded.message,
    city_id = excluded.city_id,
    categories = excluded.categories,
    rent_types = excluded.rent_types,
    max_rent = excluded.max_rent,
    min_size = excluded.min_size,
    proxy_port = excluded.proxy_port,
    scrape_enabled = excluded.scrape_enabled,
    contacted_ads = excluded.contacted_ads,
    last_latest = COALESCE(excluded.last_latest, accounts.last_latest),
    last_updated_at = COALESCE(excluded.last_updated_at, accounts.last_updated_at)`,
		string(account.ID), account.Credentials.Email, account.Credentials.Password, string(website), account.Message,
		account.Search.CityID, joinInts(account.Search.Categories), joinInts(account.Search.RentTypes),
		account.Search.MaxRent, account.Search.MinSize, account.Search.ProxyPort,
		boolInt(!account.Search.Disabled), account.Search.ContactedAds,
		nullableUnix(account.LastLatest), nullableUnix(account.LastUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	if account.Session != nil {
		if err := upsertSession(ctx, tx, account.ID, *account.Session); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit account: %w", err)
	}

	return nil
}

func (r *Repository) SaveSession(ctx context.Context, id domain.AccountID, bundle domain.SessionBundle) error {
	if err := r.requireAccount(ctx, id); err != nil {
		return err
	}

	return upsertSession(ctx, r.db, id, bundle)
}

func (r *Repository) SaveListings(ctx context.Context, id domain.AccountID, listings []domain.Listing) error {
	if err := r.requireAccount(ctx, id); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE account_id = ?`, string(id)); err != nil {
		return fmt.Errorf("clear listings: %w", err)
	}

	savedAt := time.Now().UnixNano()
	for _, listing := range listings {
		_, err := tx.ExecContext(ctx, `
INSERT INTO listings (account_id, listing_id, title, user_id, public_name, posted_at, url, saved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(account_id, listing_id) DO NOTHING`,
			string(id), listing.ID, listing.Title, listing.UserID, listing.PublicName,
			listing.PostedAt.UnixNano(), listing.URL, savedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert listing %s: %w", listing.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit listings: %w", err)
	}

	return nil
}

func (r *Repository) UpdateWatermarks(ctx context.Context, id domain.AccountID, lastLatest *time.Time, lastUpdatedAt time.Time) error {
	return r.exec(ctx, id, `
UPDATE accounts
SET last_latest = COALESCE(?, last_latest), last_updated_at = ?
WHERE id = ?`, nullableUnix(lastLatest), lastUpdatedAt.UnixNano(), string(id))
}

func (r *Repository) DisableScraping(ctx context.Context, id domain.AccountID) error {
	return r.exec(ctx, id, `UPDATE accounts SET scrape_enabled = 0 WHERE id = ?`, string(id))
}

func (r *Repository) AddContacted(ctx context.Context, id domain.AccountID, count int) error {
	return r.exec(ctx, id, `UPDATE accounts SET contacted_ads = contacted_ads + ? WHERE id = ?`, count, string(id))
}

// Listings returns the last stored batch of new listings, newest first.
func (r *Repository) Listings(ctx context.Context, id domain.AccountID, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT listing_id, title, user_id, public_name, posted_at, url
FROM listings
WHERE account_id = ?
ORDER BY posted_at DESC
LIMIT ?`, string(id), limit)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		var postedAt int64
		if err := rows.Scan(&listing.ID, &listing.Title, &listing.UserID, &listing.PublicName, &postedAt, &listing.URL); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listing.PostedAt = time.Unix(0, postedAt).UTC()
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSession(ctx context.Context, db execer, id domain.AccountID, bundle domain.SessionBundle) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO account_sessions (account_id, user_id, access_token, refresh_token, dev_ref_no, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(account_id) DO UPDATE SET
    user_id = excluded.user_id,
    access_token = excluded.access_token,
    refresh_token = excluded.refresh_token,
    dev_ref_no = excluded.dev_ref_no,
    created_at = excluded.created_at`,
		string(id), bundle.UserID, bundle.AccessToken, bundle.RefreshToken, bundle.DevRefNo, nullableUnix(nonZero(bundle.CreatedAt)),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

func (r *Repository) exec(ctx context.Context, id domain.AccountID, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func (r *Repository) requireAccount(ctx context.Context, id domain.AccountID) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, string(id)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup account %s: %w", id, err)
	}

	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(rows *sql.Rows) (domain.Account, error) {
	var (
		account                   domain.Account
		id, website               string
		categories, rentTypes     string
		scrapeEnabled             int
		lastLatest, lastUpdatedAt sql.NullInt64
		userID, accessToken       sql.NullString
		refreshToken, devRefNo    sql.NullString
		sessionCreatedAt          sql.NullInt64
	)

	err := rows.Scan(
		&id, &account.Credentials.Email, &account.Credentials.Password, &website, &account.Message,
		&account.Search.CityID, &categories, &rentTypes, &account.Search.MaxRent, &account.Search.MinSize, &account.Search.ProxyPort,
		&scrapeEnabled, &account.Search.ContactedAds, &lastLatest, &lastUpdatedAt,
		&userID, &accessToken, &refreshToken, &devRefNo, &sessionCreatedAt,
	)
	if err != nil {
		return domain.Account{}, fmt.Errorf("scan account: %w", err)
	}

	account.ID = domain.AccountID(id)
	account.Website = domain.Website(website)
	account.Search.Categories = splitInts(categories)
	account.Search.RentTypes = splitInts(rentTypes)
	account.Search.Disabled = scrapeEnabled == 0
	account.LastLatest = unixPtr(lastLatest)
	account.LastUpdatedAt = unixPtr(lastUpdatedAt)

	if accessToken.Valid {
		account.Session = &domain.SessionBundle{
			UserID:       userID.String,
			AccessToken:  accessToken.String,
			RefreshToken: refreshToken.String,
			DevRefNo:     devRefNo.String,
		}
		if created := unixPtr(sessionCreatedAt); created != nil {
			account.Session.CreatedAt = *created
		}
	}

	return account, nil
}

func nullableUnix(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: value.UnixNano(), Valid: true}
}

func unixPtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}

	t := time.Unix(0, value.Int64).UTC()
	return &t
}

func nonZero(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}

	return &value
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strconv.Itoa(value))
	}

	return strings.Join(parts, ",")
}

func splitInts(raw string) []int {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var values []int
	for _, part := range strings.Split(raw, ",") {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		values = append(values, value)
	}

	return values
}
