// Package httpapi serves the read-only monitoring API and the manual trigger.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bnema/wg-scraper/internal/application"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const serviceName = "wg-scraper"

type AccountQueries interface {
	ListAccounts(ctx context.Context) ([]application.AccountStatus, error)
	ListReady(ctx context.Context) ([]application.AccountStatus, error)
}

type Trigger interface {
	Trigger(ctx context.Context) (application.TriggerResult, error)
}

type StatsSource interface {
	Snapshot() application.StatsSnapshot
}

type Handler struct {
	accounts AccountQueries
	trigger  Trigger
	stats    StatsSource
	config   ConfigView
	version  string
}

func NewHandler(accounts AccountQueries, trigger Trigger, stats StatsSource, config ConfigView, version string) *Handler {
	return &Handler{
		accounts: accounts,
		trigger:  trigger,
		stats:    stats,
		config:   config,
		version:  version,
	}
}

// NewRouter mounts the monitoring routes behind request-id, real-ip,
// logging and panic recovery middleware.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/", h.health)
	r.Get("/stats", h.getStats)
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Get("/ready", h.listReady)
	})
	r.Post("/scrape/trigger", h.triggerScrape)

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{Status: "running", Service: serviceName, Version: h.version})
}

func (h *Handler) getStats(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, NewStatsResponse(h.stats.Snapshot(), h.config))
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, err)
		return
	}

	h.writeAccounts(w, statuses, true)
}

func (h *Handler) listReady(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.accounts.ListReady(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, err)
		return
	}

	h.writeAccounts(w, statuses, false)
}

func (h *Handler) writeAccounts(w http.ResponseWriter, statuses []application.AccountStatus, withConfig bool) {
	views := make([]AccountView, 0, len(statuses))
	for _, status := range statuses {
		views = append(views, NewAccountView(status, withConfig))
	}

	JSON(w, http.StatusOK, AccountsResponse{Success: true, Count: len(views), Accounts: views})
}

func (h *Handler) triggerScrape(w http.ResponseWriter, r *http.Request) {
	result, err := h.trigger.Trigger(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, err)
		return
	}

	message := "No accounts ready to scrape"
	if result.Ready > 0 {
		message = fmt.Sprintf("Triggered scraping for %d accounts", result.Submitted)
	}

	JSON(w, http.StatusOK, TriggerResponse{
		Success:       true,
		Message:       message,
		Count:         result.Submitted,
		TriggerResult: result,
	})
}
