package wggesucht

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/bnema/wg-scraper/internal/ports"
)

const (
	DefaultBaseURL    = "https://www.wg-gesucht.de/api/"
	DefaultListingURL = "https://www.wg-gesucht.de"

	appVersion       = "1.28.0"
	clientID         = "wg_mobile_app"
	userAgent        = "Mozilla/5.0 (Linux; Android 6.0; Google Build/MRA58K; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/74.0.3729.186 Mobile Safari/537.36"
	displayLanguage  = "de"
	maxResponseBytes = 1 << 20
	pageSize         = "50"
	maxRentCap       = 9999
	minSizeCap       = 999
	mfaPendingStatus = 202
)

var (
	defaultCategories = []int{0, 1, 2, 3}
	defaultRentTypes  = []int{1, 2}
)

type API struct {
	BaseURL string
	// ListingURL prefixes public listing links.
	ListingURL string
}

// Client is a concurrency-safe ListingSource for the WG-Gesucht mobile API.
type Client struct {
	API            API
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Location       *time.Location

	mu      sync.Mutex
	proxied map[string]*http.Client
}

var _ ports.ListingSource = (*Client)(nil)

func NewClient(api API, httpClient *http.Client, requestTimeout time.Duration) *Client {
	if api.BaseURL == "" {
		api.BaseURL = DefaultBaseURL
	}
	if api.ListingURL == "" {
		api.ListingURL = DefaultListingURL
	}

	return &Client{
		API:            api,
		HTTPClient:     httpClient,
		RequestTimeout: requestTimeout,
		Location:       berlin(),
	}
}

type loginRequest struct {
	Email           string `json:"login_email_username"`
	Password        string `json:"login_password"`
	ClientID        string `json:"client_id"`
	DisplayLanguage string `json:"display_language"`
}

type refreshRequest struct {
	GrantType       string `json:"grant_type"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	ClientID        string `json:"client_id"`
	DevRefNo        string `json:"dev_ref_no"`
	DisplayLanguage string `json:"display_language"`
}

type sessionResponse struct {
	Status int `json:"status"`
	Detail *struct {
		AccessToken  string          `json:"access_token"`
		RefreshToken string          `json:"refresh_token"`
		UserID       json.RawMessage `json:"user_id"`
		DevRefNo     json.RawMessage `json:"dev_ref_no"`
	} `json:"detail"`
}

type conversationRequest struct {
	UserID   string                `json:"user_id"`
	AdType   int                   `json:"ad_type"`
	AdID     json.Number           `json:"ad_id"`
	Messages []conversationMessage `json:"messages"`
}

type conversationMessage struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

type offersResponse struct {
	Embedded struct {
		Offers []offerPayload `json:"offers"`
	} `json:"_embedded"`
}

type offerPayload struct {
	OfferID     json.RawMessage `json:"offer_id"`
	OfferTitle  string          `json:"offer_title"`
	UserID      json.RawMessage `json:"user_id"`
	DateOfEntry string          `json:"date_of_entry_details"`
	UserData    struct {
		PublicName string `json:"public_name"`
	} `json:"user_data"`
}

func (c *Client) FetchListings(ctx context.Context, search domain.SearchConfig, proxy string) ([]domain.Listing, error) {
	if strings.TrimSpace(search.CityID) == "" {
		return nil, errors.New("city id is required")
	}

	endpoint, err := buildAPIURL(c.API.BaseURL, "asset/offers/")
	if err != nil {
		return nil, err
	}
	endpoint += "?" + offerQuery(search).Encode()

	var payload offersResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, proxy, &payload); err != nil {
		return nil, fmt.Errorf("fetch offers: %w", err)
	}

	listings := make([]domain.Listing, 0, len(payload.Embedded.Offers))
	for _, offer := range payload.Embedded.Offers {
		listing, ok := c.toListing(offer)
		if !ok {
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func (c *Client) Login(ctx context.Context, credentials domain.Credentials, proxy string) (domain.SessionBundle, error) {
	if credentials.Email == "" || credentials.Password == "" {
		return domain.SessionBundle{}, errors.New("email and password are required")
	}

	endpoint, err := buildAPIURL(c.API.BaseURL, "sessions")
	if err != nil {
		return domain.SessionBundle{}, err
	}

	var payload sessionResponse
	if err := c.do(ctx, http.MethodPost, endpoint, loginRequest{
		Email:           credentials.Email,
		Password:        credentials.Password,
		ClientID:        clientID,
		DisplayLanguage: displayLanguage,
	}, nil, proxy, &payload); err != nil {
		return domain.SessionBundle{}, fmt.Errorf("login: %w", err)
	}

	if payload.Status == mfaPendingStatus {
		return domain.SessionBundle{}, domain.ErrMFARequired
	}
	if payload.Detail == nil || payload.Detail.AccessToken == "" {
		return domain.SessionBundle{}, errors.New("login response missing access token")
	}

	return domain.SessionBundle{
		UserID:       rawString(payload.Detail.UserID),
		AccessToken:  payload.Detail.AccessToken,
		RefreshToken: payload.Detail.RefreshToken,
		DevRefNo:     rawString(payload.Detail.DevRefNo),
	}, nil
}

func (c *Client) Refresh(ctx context.Context, bundle domain.SessionBundle, proxy string) (domain.SessionBundle, error) {
	if !bundle.CanRefresh() {
		return domain.SessionBundle{}, errors.New("session is missing user id, refresh token or device reference")
	}

	endpoint, err := buildAPIURL(c.API.BaseURL, "sessions/users/"+url.PathEscape(bundle.UserID))
	if err != nil {
		return domain.SessionBundle{}, err
	}

	var payload sessionResponse
	if err := c.do(ctx, http.MethodPut, endpoint, refreshRequest{
		GrantType:       "refresh_token",
		AccessToken:     bundle.AccessToken,
		RefreshToken:    bundle.RefreshToken,
		ClientID:        clientID,
		DevRefNo:        bundle.DevRefNo,
		DisplayLanguage: displayLanguage,
	}, &bundle, proxy, &payload); err != nil {
		return domain.SessionBundle{}, fmt.Errorf("refresh session: %w", err)
	}

	if payload.Detail == nil || payload.Detail.AccessToken == "" {
		return domain.SessionBundle{}, errors.New("refresh response missing access token")
	}

	refreshed := bundle
	refreshed.AccessToken = payload.Detail.AccessToken
	if payload.Detail.RefreshToken != "" {
		refreshed.RefreshToken = payload.Detail.RefreshToken
	}
	if devRefNo := rawString(payload.Detail.DevRefNo); devRefNo != "" {
		refreshed.DevRefNo = devRefNo
	}

	return refreshed, nil
}

func (c *Client) Contact(ctx context.Context, bundle domain.SessionBundle, listingID, message, proxy string) error {
	if bundle.AccessToken == "" {
		return errors.New("session access token is required")
	}

	endpoint, err := buildAPIURL(c.API.BaseURL, "conversations")
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPost, endpoint, conversationRequest{
		UserID: bundle.UserID,
		AdID:   json.Number(listingID),
		Messages: []conversationMessage{
			{Content: message, MessageType: "text"},
		},
	}, &bundle, proxy, nil); err != nil {
		return fmt.Errorf("contact offer %s: %w", listingID, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, session *domain.SessionBundle, proxy string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	setHeaders(req, session)

	httpClient, err := c.clientFor(proxy)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func setHeaders(req *http.Request, session *domain.SessionBundle) {
	req.Header.Set("X-App-Version", appVersion)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Id", clientID)

	if session == nil || session.AccessToken == "" {
		return
	}
	req.Header.Set("X-Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("X-User-Id", session.UserID)
	req.Header.Set("X-Dev-Ref-No", session.DevRefNo)
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func (c *Client) toListing(offer offerPayload) (domain.Listing, bool) {
	id := rawString(offer.OfferID)
	if id == "" {
		return domain.Listing{}, false
	}

	postedAt, err := parseEntryDate(offer.DateOfEntry, c.location())
	if err != nil {
		return domain.Listing{}, false
	}

	return domain.Listing{
		ID:         id,
		Title:      offer.OfferTitle,
		UserID:     rawString(offer.UserID),
		PublicName: offer.UserData.PublicName,
		PostedAt:   postedAt,
		URL:        strings.TrimSuffix(c.API.ListingURL, "/") + "/" + id + ".html",
	}, true
}

func (c *Client) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}

	return time.UTC
}

func offerQuery(search domain.SearchConfig) url.Values {
	categories := search.Categories
	if len(categories) == 0 {
		categories = defaultCategories
	}
	rentTypes := search.RentTypes
	if len(rentTypes) == 0 {
		rentTypes = defaultRentTypes
	}

	values := url.Values{}
	values.Set("ad_type", "0")
	values.Set("categories", joinInts(categories))
	values.Set("rent_types", joinInts(rentTypes))
	values.Set("city_id", search.CityID)
	values.Set("noDeact", "1")
	values.Set("img", "1")
	values.Set("limit", pageSize)
	values.Set("page", "1")
	if search.MaxRent > 0 {
		values.Set("rMax", fmt.Sprint(min(search.MaxRent, maxRentCap)))
	}
	if search.MinSize > 0 {
		values.Set("sMin", fmt.Sprint(min(search.MinSize, minSizeCap)))
	}

	return values
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	return fmt.Errorf("status %d: %s", resp.StatusCode, text)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
