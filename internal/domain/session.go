package domain

import "time"

// Session represents an OAuth session created when the install flow starts.
// The state value doubles as the CSRF token and the lookup key; sessions are
// single-use and expire shortly after creation.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Shop      string    `json:"shop" bson:"shop"`
	State     string    `json:"state" bson:"state"`
	Scopes    []string  `json:"scopes" bson:"scopes"`
	ReturnURL string    `json:"return_url" bson:"return_url"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
