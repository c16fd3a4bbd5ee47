package domain

import "time"

const (
	SessionRefreshAfter = 40 * time.Minute
	SessionLifetime     = 60 * time.Minute
)

type SessionBundle struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	DevRefNo     string
	CreatedAt    time.Time
}

// CanRefresh reports whether the bundle carries everything a token refresh needs.
func (b SessionBundle) CanRefresh() bool {
	return b.UserID != "" && b.RefreshToken != "" && b.DevRefNo != ""
}

func (b SessionBundle) Age(now time.Time) time.Duration {
	return now.Sub(b.CreatedAt)
}

type SessionState string

const (
	SessionNone       SessionState = "no_session"
	SessionValid      SessionState = "valid"
	SessionNearExpiry SessionState = "near_expiry"
	SessionExpired    SessionState = "expired"
)

func (s SessionState) NeedsRefresh() bool {
	return s == SessionNearExpiry || s == SessionExpired
}

// NextSessionState classifies a session by the age of its bundle. A missing
// session stays missing; an unknown creation time counts as expired.
func NextSessionState(current SessionState, createdAt, now time.Time) SessionState {
	if current == SessionNone {
		return SessionNone
	}
	if createdAt.IsZero() {
		return SessionExpired
	}

	age := now.Sub(createdAt)
	switch {
	case age >= SessionLifetime:
		return SessionExpired
	case age >= SessionRefreshAfter:
		return SessionNearExpiry
	default:
		return SessionValid
	}
}

func SessionStateAt(bundle *SessionBundle, now time.Time) SessionState {
	if bundle == nil || bundle.AccessToken == "" {
		return SessionNone
	}

	return NextSessionState(SessionValid, bundle.CreatedAt, now)
}
