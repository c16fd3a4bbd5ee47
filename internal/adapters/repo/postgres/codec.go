package postgres

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
)

// LastLatestLayout is the listing_data.last_latest format shared with the
// frontend; it matches the source's entry dates.
const LastLatestLayout = "02.01.2006, 15:04:05"

var sessionTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

type configurationJSON struct {
	CityID        flexString `json:"city_id,omitempty"`
	Categories    flexInts   `json:"categories,omitempty"`
	RentTypes     flexInts   `json:"rent_types,omitempty"`
	MaxRent       flexInt    `json:"max_rent,omitempty"`
	MinSize       flexInt    `json:"min_size,omitempty"`
	ProxyPort     flexString `json:"proxy_port,omitempty"`
	ScrapeEnabled *bool      `json:"scrape_enabled,omitempty"`
	ContactedAds  flexInt    `json:"contacted_ads,omitempty"`
}

type sessionJSON struct {
	UserID           flexString `json:"userId"`
	AccessToken      string     `json:"accessToken"`
	RefreshToken     string     `json:"refreshToken"`
	DevRefNo         flexString `json:"devRefNo"`
	SessionCreatedAt string     `json:"session_created_at,omitempty"`
}

type listingDataJSON struct {
	LastLatest string      `json:"last_latest,omitempty"`
	Offers     []offerJSON `json:"offers"`
}

type offerJSON struct {
	OfferID     flexString `json:"offer_id"`
	Title       string     `json:"title"`
	UserID      flexString `json:"user_id,omitempty"`
	PublicName  string     `json:"public_name,omitempty"`
	DateOfEntry string     `json:"date_of_entry_details"`
	URL         string     `json:"url"`
}

func decodeSearch(raw []byte) (domain.SearchConfig, error) {
	var config configurationJSON
	if err := decodeOptional(raw, &config); err != nil {
		return domain.SearchConfig{}, err
	}

	return domain.SearchConfig{
		CityID:       string(config.CityID),
		Categories:   []int(config.Categories),
		RentTypes:    []int(config.RentTypes),
		MaxRent:      int(config.MaxRent),
		MinSize:      int(config.MinSize),
		ProxyPort:    string(config.ProxyPort),
		Disabled:     config.ScrapeEnabled != nil && !*config.ScrapeEnabled,
		ContactedAds: int(config.ContactedAds),
	}, nil
}

func encodeSearch(search domain.SearchConfig) ([]byte, error) {
	enabled := !search.Disabled

	return json.Marshal(configurationJSON{
		CityID:        flexString(search.CityID),
		Categories:    flexInts(search.Categories),
		RentTypes:     flexInts(search.RentTypes),
		MaxRent:       flexInt(search.MaxRent),
		MinSize:       flexInt(search.MinSize),
		ProxyPort:     flexString(search.ProxyPort),
		ScrapeEnabled: &enabled,
		ContactedAds:  flexInt(search.ContactedAds),
	})
}

func decodeSession(raw []byte, loc *time.Location) (*domain.SessionBundle, error) {
	var session sessionJSON
	if err := decodeOptional(raw, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, nil
	}

	return &domain.SessionBundle{
		UserID:       string(session.UserID),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		DevRefNo:     string(session.DevRefNo),
		CreatedAt:    parseSessionTime(session.SessionCreatedAt, loc),
	}, nil
}

func encodeSession(bundle domain.SessionBundle) ([]byte, error) {
	session := sessionJSON{
		UserID:       flexString(bundle.UserID),
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		DevRefNo:     flexString(bundle.DevRefNo),
	}
	if !bundle.CreatedAt.IsZero() {
		session.SessionCreatedAt = bundle.CreatedAt.Format(time.RFC3339Nano)
	}

	return json.Marshal(session)
}

func decodeListingData(raw []byte, loc *time.Location) (*time.Time, []domain.Listing, error) {
	var data listingDataJSON
	if err := decodeOptional(raw, &data); err != nil {
		return nil, nil, err
	}

	var lastLatest *time.Time
	if parsed, ok := parseSourceTime(data.LastLatest, loc); ok {
		lastLatest = &parsed
	}

	listings := make([]domain.Listing, 0, len(data.Offers))
	for _, offer := range data.Offers {
		postedAt, _ := parseSourceTime(offer.DateOfEntry, loc)
		listings = append(listings, domain.Listing{
			ID:         string(offer.OfferID),
			Title:      offer.Title,
			UserID:     string(offer.UserID),
			PublicName: offer.PublicName,
			PostedAt:   postedAt,
			URL:        offer.URL,
		})
	}

	return lastLatest, listings, nil
}

func encodeOffers(listings []domain.Listing, loc *time.Location) ([]byte, error) {
	offers := make([]offerJSON, 0, len(listings))
	for _, listing := range listings {
		offers = append(offers, offerJSON{
			OfferID:     flexString(listing.ID),
			Title:       listing.Title,
			UserID:      flexString(listing.UserID),
			PublicName:  listing.PublicName,
			DateOfEntry: formatSourceTime(listing.PostedAt, loc),
			URL:         listing.URL,
		})
	}

	return json.Marshal(offers)
}

func formatSourceTime(value time.Time, loc *time.Location) string {
	if value.IsZero() {
		return ""
	}

	return value.In(loc).Format(LastLatestLayout)
}

func parseSourceTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	parsed, err := time.ParseInLocation(LastLatestLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}

// parseSessionTime accepts RFC 3339 and offset-less ISO timestamps; the
// latter are read in loc. Unparseable values yield the zero time, which the
// session state machine treats as expired.
func parseSessionTime(raw string, loc *time.Location) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range sessionTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed
		}
	}

	return time.Time{}
}

func decodeOptional(raw []byte, target any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	return json.Unmarshal(trimmed, target)
}

// flexString decodes JSON strings and numbers alike.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = flexString(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*s = flexString(number.String())
	return nil
}

type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var text flexString
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}
	if text == "" {
		*n = 0
		return nil
	}

	value, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return err
	}
	*n = flexInt(value)
	return nil
}

type flexInts []int

func (v *flexInts) UnmarshalJSON(data []byte) error {
	var items []flexInt
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	values := make([]int, 0, len(items))
	for _, item := range items {
		values = append(values, int(item))
	}
	*v = values
	return nil
}
