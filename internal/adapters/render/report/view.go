package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/wg-scraper/internal/application"
	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type Options struct {
	Now           time.Time
	PollInterval  time.Duration
	Freshness     time.Duration
	MaxConcurrent int
	// HistoryLimit caps the number of runs shown, newest first. Zero shows all.
	HistoryLimit int
}

// RenderStats formats a stats snapshot for the terminal.
func RenderStats(snapshot application.StatsSnapshot, opts Options) (string, error) {
	return run(func(s styles) string { return statsView(snapshot, opts, s) })
}

// RenderAccounts formats account statuses for the terminal.
func RenderAccounts(statuses []application.AccountStatus, opts Options) (string, error) {
	return run(func(s styles) string { return accountsView(statuses, opts, s) })
}

func statsView(snapshot application.StatsSnapshot, opts Options, s styles) string {
	lines := []string{
		s.title.Render("Scraper Stats"),
		metricLine(s,
			"runs", snapshot.TotalRuns,
			"ok", snapshot.SuccessfulRuns,
			"failed", snapshot.FailedRuns,
			"running", snapshot.CurrentlyRunning,
		),
		metricLine(s,
			"new listings", snapshot.TotalNewListings,
			"contacted", snapshot.TotalContacted,
		),
		s.label.Render("last check: ") + s.value.Render(formatAgo(snapshot.LastDiscovery, opts.Now)),
	}

	if opts.PollInterval > 0 || opts.MaxConcurrent > 0 {
		lines = append(lines, s.header.Render(fmt.Sprintf(
			"poll every %s, stale after %s, max %d concurrent",
			opts.PollInterval, opts.Freshness, opts.MaxConcurrent,
		)))
	}

	history := recentRuns(snapshot.History, opts.HistoryLimit)
	if len(history) == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No runs recorded yet.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	runs := []string{s.title.Render(fmt.Sprintf("Recent runs (%d)", len(history)))}
	for _, record := range history {
		runs = append(runs, runLines(record, opts, s)...)
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, runs...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func accountsView(statuses []application.AccountStatus, opts Options, s styles) string {
	ready := 0
	for _, status := range statuses {
		if status.Ready {
			ready++
		}
	}

	lines := []string{
		s.title.Render("Accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d, ready: %d", len(statuses), ready)),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(accountBlock(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func accountBlock(status application.AccountStatus, opts Options, s styles) string {
	account := status.Account

	title := s.account.Render(fmt.Sprintf("%s (%s)", account.Credentials.Email, account.ID))
	switch {
	case account.Search.Disabled:
		title += " " + s.failed.Render("[disabled]")
	case status.Ready:
		title += " " + s.ok.Render("[ready]")
	}

	search := fmt.Sprintf("city %s", orDash(account.Search.CityID))
	if account.Search.MaxRent > 0 {
		search += fmt.Sprintf(", max %d EUR", account.Search.MaxRent)
	}
	if account.Search.MinSize > 0 {
		search += fmt.Sprintf(", min %d m2", account.Search.MinSize)
	}
	if account.Search.ProxyPort != "" {
		search += ", proxy :" + account.Search.ProxyPort
	}

	session := string(status.SessionState)
	if status.SessionState != domain.SessionNone {
		session += fmt.Sprintf(" (%s old)", status.SessionAge.Round(time.Minute))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		detail(s, "search", search),
		detail(s, "session", session),
		detail(s, "last scrape", formatAgoPtr(account.LastUpdatedAt, opts.Now)),
		detail(s, "newest listing", formatAgoPtr(account.LastLatest, opts.Now)),
		detail(s, "contacted", fmt.Sprintf("%d", account.Search.ContactedAds)),
	)
}

func runLines(record domain.RunRecord, opts Options, s styles) []string {
	marker := s.ok.Render("ok  ")
	if !record.Success {
		marker = s.failed.Render("fail")
	}

	who := string(record.AccountID)
	if record.Email != "" {
		who = fmt.Sprintf("%s (%s)", record.Email, record.AccountID)
	}

	summary := fmt.Sprintf("%d new, %d contacted, %s", record.NewListings, record.Contacted, record.Duration().Round(time.Millisecond))
	if record.Err != nil {
		summary = record.Err.Error()
	}

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top,
		marker, " ",
		s.faint.Render(formatClock(record.StartedAt, opts.Now)), " ",
		s.account.Render(who), " ",
		s.label.Render(summary),
	)}

	for _, issue := range record.Issues {
		text := string(issue.Step)
		if issue.ListingID != "" {
			text += " " + issue.ListingID
		}
		if issue.Err != nil {
			text += ": " + issue.Err.Error()
		}
		lines = append(lines, "     "+s.issue.Render("! "+text))
	}

	return lines
}

func metricLine(s styles, pairs ...any) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.label.Render(fmt.Sprintf("%s: ", pairs[i]))+s.value.Render(fmt.Sprintf("%v", pairs[i+1])))
	}

	return strings.Join(parts, "  ")
}

func detail(s styles, key, value string) string {
	return s.label.Render(key+": ") + s.faint.Render(value)
}

func recentRuns(history []domain.RunRecord, limit int) []domain.RunRecord {
	out := make([]domain.RunRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, history[i])
	}

	return out
}

func formatAgoPtr(at *time.Time, now time.Time) string {
	if at == nil {
		return "never"
	}

	return formatAgo(*at, now)
}

func formatAgo(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d min ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(elapsed.Hours()/24))
	}
}

func formatClock(at, now time.Time) string {
	if at.IsZero() {
		return "--:--"
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if now.IsZero() || yearA != yearB || monthA != monthB || dayA != dayB {
		return at.Format("15:04 on 02 Jan")
	}

	return at.Format("15:04:05")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}

	return value
}
