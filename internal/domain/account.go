package domain

import (
	"strings"
	"time"
)

type AccountID string

type Website string

const WebsiteWGGesucht Website = "wg-gesucht"

type Credentials struct {
	Email    string
	Password string
}

// SearchConfig holds the per-account listing filters and scraping switches.
type SearchConfig struct {
	CityID       string
	Categories   []int
	RentTypes    []int
	MaxRent      int
	MinSize      int
	ProxyPort    string
	Disabled     bool
	ContactedAds int
}

type Account struct {
	ID            AccountID
	Credentials   Credentials
	Website       Website
	Search        SearchConfig
	Message       string
	Session       *SessionBundle
	LastLatest    *time.Time
	LastUpdatedAt *time.Time
}

// IsStale reports whether the account has not been processed since cutoff.
// Accounts that were never processed are always stale.
func (a Account) IsStale(cutoff time.Time) bool {
	if a.LastUpdatedAt == nil {
		return true
	}

	return !a.LastUpdatedAt.After(cutoff)
}

// IsReady reports whether the scheduler should pick the account up.
func (a Account) IsReady(cutoff time.Time) bool {
	return !a.Search.Disabled && a.IsStale(cutoff)
}

func (a Account) CanContact() bool {
	return strings.TrimSpace(a.Message) != ""
}

// ProxyEndpoint appends the account's port suffix to the proxy base, e.g.
// "http://user:pw@proxy.example:" + "8001". A base ending in a bare host gets
// the ":" separator added; any other base is concatenated as is. An empty base
// or port means requests go out directly.
func ProxyEndpoint(base, port string) string {
	base = strings.TrimSpace(base)
	port = strings.TrimSpace(port)
	if base == "" || port == "" {
		return ""
	}

	if endsWithBareHost(base) {
		return base + ":" + port
	}
	return base + port
}

func endsWithBareHost(base string) bool {
	host := base
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}

	return host != "" && !strings.ContainsAny(host, ":/")
}
