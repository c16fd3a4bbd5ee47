package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bnema/wg-scraper/internal/application"
	"github.com/bnema/wg-scraper/internal/domain"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type StatsResponse struct {
	Stats  StatsView  `json:"stats"`
	Config ConfigView `json:"config"`
}

type StatsView struct {
	TotalRuns        int        `json:"total_runs"`
	SuccessfulRuns   int        `json:"successful_runs"`
	FailedRuns       int        `json:"failed_runs"`
	TotalNewListings int        `json:"total_new_offers"`
	TotalContacted   int        `json:"total_contacted"`
	CurrentlyRunning int        `json:"currently_running"`
	LastDiscovery    *time.Time `json:"last_check,omitempty"`
	History          []RunView  `json:"history"`
}

type RunView struct {
	ID           string      `json:"id"`
	AccountID    string      `json:"account_id"`
	Email        string      `json:"email"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
	Success      bool        `json:"success"`
	NewListings  int         `json:"new_offers"`
	Contacted    int         `json:"contacted"`
	SessionState string      `json:"session_state,omitempty"`
	Error        string      `json:"error,omitempty"`
	Issues       []IssueView `json:"issues,omitempty"`
}

type IssueView struct {
	Step      string `json:"step"`
	ListingID string `json:"listing_id,omitempty"`
	Error     string `json:"error"`
}

type ConfigView struct {
	PollIntervalMinutes       float64 `json:"queue_check_interval_minutes"`
	FreshnessThresholdMinutes float64 `json:"scraper_interval_minutes"`
	MaxConcurrent             int     `json:"max_concurrent_scrapers"`
}

type AccountsResponse struct {
	Success  bool          `json:"success"`
	Count    int           `json:"count"`
	Accounts []AccountView `json:"accounts"`
}

// AccountView never carries passwords or session tokens.
type AccountView struct {
	ID            string             `json:"id"`
	Email         string             `json:"email"`
	Website       string             `json:"website"`
	LastUpdatedAt *time.Time         `json:"last_updated_at"`
	Ready         bool               `json:"ready"`
	SessionState  string             `json:"session_state"`
	Configuration *ConfigurationView `json:"configuration,omitempty"`
}

type ConfigurationView struct {
	CityID        string `json:"city_id"`
	Categories    []int  `json:"categories,omitempty"`
	RentTypes     []int  `json:"rent_types,omitempty"`
	MaxRent       int    `json:"max_rent,omitempty"`
	MinSize       int    `json:"min_size,omitempty"`
	ProxyPort     string `json:"proxy_port,omitempty"`
	ScrapeEnabled bool   `json:"scrape_enabled"`
	ContactedAds  int    `json:"contacted_ads"`
}

type TriggerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	application.TriggerResult
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewStatsResponse(snapshot application.StatsSnapshot, cfg ConfigView) StatsResponse {
	view := StatsView{
		TotalRuns:        snapshot.TotalRuns,
		SuccessfulRuns:   snapshot.SuccessfulRuns,
		FailedRuns:       snapshot.FailedRuns,
		TotalNewListings: snapshot.TotalNewListings,
		TotalContacted:   snapshot.TotalContacted,
		CurrentlyRunning: snapshot.CurrentlyRunning,
		History:          make([]RunView, 0, len(snapshot.History)),
	}
	if !snapshot.LastDiscovery.IsZero() {
		last := snapshot.LastDiscovery
		view.LastDiscovery = &last
	}

	for _, record := range snapshot.History {
		run := RunView{
			ID:           record.ID,
			AccountID:    string(record.AccountID),
			Email:        record.Email,
			StartedAt:    record.StartedAt,
			FinishedAt:   record.FinishedAt,
			Success:      record.Success,
			NewListings:  record.NewListings,
			Contacted:    record.Contacted,
			SessionState: string(record.SessionState),
		}
		if record.Err != nil {
			run.Error = record.Err.Error()
		}
		for _, issue := range record.Issues {
			item := IssueView{Step: string(issue.Step), ListingID: issue.ListingID}
			if issue.Err != nil {
				item.Error = issue.Err.Error()
			}
			run.Issues = append(run.Issues, item)
		}
		view.History = append(view.History, run)
	}

	return StatsResponse{Stats: view, Config: cfg}
}

// Snapshot converts a decoded response back into the aggregator's shape so
// remote and in-process stats render the same way.
func (r StatsResponse) Snapshot() application.StatsSnapshot {
	snapshot := application.StatsSnapshot{
		TotalRuns:        r.Stats.TotalRuns,
		SuccessfulRuns:   r.Stats.SuccessfulRuns,
		FailedRuns:       r.Stats.FailedRuns,
		TotalNewListings: r.Stats.TotalNewListings,
		TotalContacted:   r.Stats.TotalContacted,
		CurrentlyRunning: r.Stats.CurrentlyRunning,
		History:          make([]domain.RunRecord, 0, len(r.Stats.History)),
	}
	if r.Stats.LastDiscovery != nil {
		snapshot.LastDiscovery = *r.Stats.LastDiscovery
	}

	for _, run := range r.Stats.History {
		record := domain.RunRecord{
			ID:           run.ID,
			AccountID:    domain.AccountID(run.AccountID),
			Email:        run.Email,
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
			Success:      run.Success,
			NewListings:  run.NewListings,
			Contacted:    run.Contacted,
			SessionState: domain.SessionState(run.SessionState),
		}
		if run.Error != "" {
			record.Err = errors.New(run.Error)
		}
		for _, issue := range run.Issues {
			record.AddIssue(domain.RunStep(issue.Step), issue.ListingID, errors.New(issue.Error))
		}
		snapshot.History = append(snapshot.History, record)
	}

	return snapshot
}

func NewAccountView(status application.AccountStatus, withConfig bool) AccountView {
	account := status.Account
	view := AccountView{
		ID:            string(account.ID),
		Email:         account.Credentials.Email,
		Website:       string(account.Website),
		LastUpdatedAt: account.LastUpdatedAt,
		Ready:         status.Ready,
		SessionState:  string(status.SessionState),
	}
	if withConfig {
		view.Configuration = &ConfigurationView{
			CityID:        account.Search.CityID,
			Categories:    account.Search.Categories,
			RentTypes:     account.Search.RentTypes,
			MaxRent:       account.Search.MaxRent,
			MinSize:       account.Search.MinSize,
			ProxyPort:     account.Search.ProxyPort,
			ScrapeEnabled: !account.Search.Disabled,
			ContactedAds:  account.Search.ContactedAds,
		}
	}

	return view
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"success":false,"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{Success: false, Error: err.Error()})
}
