package domain

import "time"

type RunStep string

const (
	StepFetch     RunStep = "fetch"
	StepPersist   RunStep = "persist"
	StepWatermark RunStep = "watermark"
	StepSession   RunStep = "session"
	StepContact   RunStep = "contact"
	StepFinalize  RunStep = "finalize"
)

// StepIssue is a non-fatal failure recorded during a pipeline run.
type StepIssue struct {
	Step      RunStep
	ListingID string
	Err       error
}

type RunRecord struct {
	ID           string
	AccountID    AccountID
	Email        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Success      bool
	NewListings  int
	Contacted    int
	SessionState SessionState
	Err          error
	Issues       []StepIssue
}

func (r RunRecord) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *RunRecord) AddIssue(step RunStep, listingID string, err error) {
	r.Issues = append(r.Issues, StepIssue{Step: step, ListingID: listingID, Err: err})
}
