package domain

import "time"

// Session is a successful token exchange. Sessions live in memory for the
// process lifetime; the bearer token and granted scopes are additionally
// mirrored to disk under a session directory.
type Session struct {
	ID          string
	OPBase      string
	Issuer      string
	AccessToken string
	Scope       string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Live reports whether the session's token is still usable with some slack
// left. Tokens within the slack window are treated as expired so a caller
// never receives a token about to die mid-request.
func (s Session) Live(now time.Time, slack time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return s.ExpiresAt.After(now.Add(slack))
}
