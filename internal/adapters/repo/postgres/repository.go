// Package postgres stores accounts in a Supabase-compatible "accounts" table:
// search settings live in the configuration jsonb column, the session bundle
// in session_details and the watermark plus latest listings in listing_data.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxConns = 4

type Options struct {
	MaxConns int
	// SimpleProtocol disables prepared statements, which transaction-mode
	// poolers such as PgBouncer or the Supabase pooler reject.
	SimpleProtocol bool
	// Location is used for offset-less timestamps and listing dates.
	Location *time.Location
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db      querier
	pool    *pgxpool.Pool
	website domain.Website
	loc     *time.Location
}

var _ ports.AccountRepository = (*Repository)(nil)

func Open(ctx context.Context, dsn string, website domain.Website, opts Options) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	cfg.MaxConns = int32(maxConns)
	if opts.SimpleProtocol {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := newRepository(pool, website, opts.Location)
	repo.pool = pool
	return repo, nil
}

func newRepository(db querier, website domain.Website, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}

	return &Repository{db: db, website: website, loc: loc}
}

func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// EnsureSchema creates the accounts table when it does not exist yet. Existing
// Supabase tables are left untouched.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			password TEXT,
			website TEXT NOT NULL,
			configuration JSONB NOT NULL DEFAULT '{}'::jsonb,
			message TEXT,
			session_details JSONB,
			listing_data JSONB,
			last_updated_at TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_website_updated ON accounts(website, last_updated_at);`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

const selectAccounts = `
SELECT id::text, email, COALESCE(password, ''), website, configuration,
       COALESCE(message, ''), session_details, listing_data, last_updated_at
FROM accounts
WHERE website = $1`

func (r *Repository) ListAll(ctx context.Context) ([]domain.Account, error) {
	return r.query(ctx, selectAccounts+` ORDER BY id`, string(r.website))
}

func (r *Repository) ListReady(ctx context.Context, updatedBefore time.Time) ([]domain.Account, error) {
	return r.query(ctx, selectAccounts+`
  AND COALESCE(configuration->>'scrape_enabled', 'true') <> 'false'
  AND (last_updated_at IS NULL OR last_updated_at <= $2)
ORDER BY last_updated_at NULLS FIRST, id`, string(r.website), updatedBefore)
}

// SaveAccount upserts identity, configuration and message. Session, listing
// data and last_updated_at are only written when the account carries them.
func (r *Repository) SaveAccount(ctx context.Context, account domain.Account) error {
	if account.ID == "" {
		return errors.New("account id is empty")
	}
	website := account.Website
	if website == "" {
		website = r.website
	}

	configuration, err := encodeSearch(account.Search)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}

	var session *string
	if account.Session != nil {
		payload, err := encodeSession(*account.Session)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		encoded := string(payload)
		session = &encoded
	}

	var lastLatest *string
	if account.LastLatest != nil {
		formatted := formatSourceTime(*account.LastLatest, r.loc)
		lastLatest = &formatted
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO accounts (id, email, password, website, configuration, message, session_details, listing_data, last_updated_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7::jsonb,
        CASE WHEN $8::text IS NULL THEN NULL ELSE jsonb_build_object('last_latest', $8::text, 'offers', '[]'::jsonb) END,
        $9)
ON CONFLICT (id) DO UPDATE SET
    email = EXCLUDED.email,
    password = EXCLUDED.password,
    website = EXCLUDED.website,
    configuration = EXCLUDED.configuration,
    message = EXCLUDED.message,
    session_details = COALESCE(EXCLUDED.session_details, accounts.session_details),
    listing_data = CASE WHEN $8::text IS NULL THEN accounts.listing_data
        ELSE jsonb_set(COALESCE(accounts.listing_data, '{"offers": []}'::jsonb), '{last_latest}', to_jsonb($8::text), true) END,
    last_updated_at = COALESCE(EXCLUDED.last_updated_at, accounts.last_updated_at)`,
		string(account.ID), account.Credentials.Email, account.Credentials.Password, string(website),
		string(configuration), account.Message, session, lastLatest, account.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}

	return nil
}

func (r *Repository) SaveSession(ctx context.Context, id domain.AccountID, bundle domain.SessionBundle) error {
	payload, err := encodeSession(bundle)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return r.exec(ctx, id, `UPDATE accounts SET session_details = $2::jsonb WHERE id::text = $1`, string(id), string(payload))
}

func (r *Repository) SaveListings(ctx context.Context, id domain.AccountID, listings []domain.Listing) error {
	offers, err := encodeOffers(listings, r.loc)
	if err != nil {
		return fmt.Errorf("encode offers: %w", err)
	}

	return r.exec(ctx, id, `
UPDATE accounts
SET listing_data = jsonb_set(COALESCE(listing_data, '{}'::jsonb), '{offers}', $2::jsonb, true)
WHERE id::text = $1`, string(id), string(offers))
}

func (r *Repository) UpdateWatermarks(ctx context.Context, id domain.AccountID, lastLatest *time.Time, lastUpdatedAt time.Time) error {
	if lastLatest == nil {
		return r.exec(ctx, id, `UPDATE accounts SET last_updated_at = $2 WHERE id::text = $1`, string(id), lastUpdatedAt)
	}

	return r.exec(ctx, id, `
UPDATE accounts
SET listing_data = jsonb_set(COALESCE(listing_data, '{"offers": []}'::jsonb), '{last_latest}', to_jsonb($3::text), true),
    last_updated_at = $2
WHERE id::text = $1`, string(id), lastUpdatedAt, formatSourceTime(*lastLatest, r.loc))
}

func (r *Repository) DisableScraping(ctx context.Context, id domain.AccountID) error {
	return r.exec(ctx, id, `
UPDATE accounts
SET configuration = jsonb_set(COALESCE(configuration, '{}'::jsonb), '{scrape_enabled}', 'false'::jsonb, true)
WHERE id::text = $1`, string(id))
}

func (r *Repository) AddContacted(ctx context.Context, id domain.AccountID, count int) error {
	return r.exec(ctx, id, `
UPDATE accounts
SET configuration = jsonb_set(
    COALESCE(configuration, '{}'::jsonb),
    '{contacted_ads}',
    to_jsonb(COALESCE((configuration->>'contacted_ads')::numeric::int, 0) + $2::int),
    true)
WHERE id::text = $1`, string(id), count)
}

// Listings returns the latest batch of new listings stored in listing_data.
func (r *Repository) Listings(ctx context.Context, id domain.AccountID) ([]domain.Listing, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT listing_data FROM accounts WHERE id::text = $1 AND website = $2`, string(id), string(r.website)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query listing data: %w", err)
	}

	_, listings, err := decodeListingData(raw, r.loc)
	if err != nil {
		return nil, fmt.Errorf("decode listing data: %w", err)
	}

	return listings, nil
}

func (r *Repository) exec(ctx context.Context, id domain.AccountID, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var row accountRow
		if err := rows.Scan(&row.ID, &row.Email, &row.Password, &row.Website, &row.Configuration,
			&row.Message, &row.SessionDetails, &row.ListingData, &row.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		account, err := row.toDomain(r.loc)
		if err != nil {
			return nil, fmt.Errorf("decode account %s: %w", row.ID, err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

type accountRow struct {
	ID             string
	Email          string
	Password       string
	Website        string
	Configuration  []byte
	Message        string
	SessionDetails []byte
	ListingData    []byte
	LastUpdatedAt  *time.Time
}

func (row accountRow) toDomain(loc *time.Location) (domain.Account, error) {
	search, err := decodeSearch(row.Configuration)
	if err != nil {
		return domain.Account{}, fmt.Errorf("configuration: %w", err)
	}

	session, err := decodeSession(row.SessionDetails, loc)
	if err != nil {
		return domain.Account{}, fmt.Errorf("session_details: %w", err)
	}

	lastLatest, _, err := decodeListingData(row.ListingData, loc)
	if err != nil {
		return domain.Account{}, fmt.Errorf("listing_data: %w", err)
	}

	var lastUpdatedAt *time.Time
	if row.LastUpdatedAt != nil {
		utc := row.LastUpdatedAt.UTC()
		lastUpdatedAt = &utc
	}

	return domain.Account{
		ID:            domain.AccountID(row.ID),
		Credentials:   domain.Credentials{Email: row.Email, Password: row.Password},
		Website:       domain.Website(row.Website),
		Search:        search,
		Message:       row.Message,
		Session:       session,
		LastLatest:    lastLatest,
		LastUpdatedAt: lastUpdatedAt,
	}, nil
}
