package application

import (
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
)

// AccountStatus is a read-only view of an account for monitoring surfaces.
type AccountStatus struct {
	Account      domain.Account
	Ready        bool
	SessionState domain.SessionState
	SessionAge   time.Duration
}
