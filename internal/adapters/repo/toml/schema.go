package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type accountSchema struct {
	ID            string          `toml:"id"`
	Email         string          `toml:"email"`
	Password      string          `toml:"password"`
	Website       string          `toml:"website"`
	Message       string          `toml:"message,omitempty"`
	LastLatest    string          `toml:"last_latest,omitempty"`
	LastUpdatedAt string          `toml:"last_updated_at,omitempty"`
	Search        searchSchema    `toml:"search"`
	Session       *sessionSchema  `toml:"session,omitempty"`
	Listings      []listingSchema `toml:"listings,omitempty"`
}

type searchSchema struct {
	CityID        string `toml:"city_id"`
	Categories    []int  `toml:"categories,omitempty"`
	RentTypes     []int  `toml:"rent_types,omitempty"`
	MaxRent       int    `toml:"max_rent,omitempty"`
	MinSize       int    `toml:"min_size,omitempty"`
	ProxyPort     string `toml:"proxy_port,omitempty"`
	ScrapeEnabled *bool  `toml:"scrape_enabled,omitempty"`
	ContactedAds  int    `toml:"contacted_ads,omitempty"`
}

type sessionSchema struct {
	UserID       string `toml:"user_id"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	DevRefNo     string `toml:"dev_ref_no"`
	CreatedAt    string `toml:"created_at"`
}

type listingSchema struct {
	ID         string `toml:"id"`
	Title      string `toml:"title"`
	UserID     string `toml:"user_id,omitempty"`
	PublicName string `toml:"public_name,omitempty"`
	PostedAt   string `toml:"posted_at"`
	URL        string `toml:"url"`
}
