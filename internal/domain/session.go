package domain

import "time"

// Session is a server-side login record keyed by an opaque random token.
// It is removed on logout and otherwise ages out at its expiry.
type Session struct {
	SessionToken string    `json:"session_token" dynamodbav:"session_token"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt < now.Unix()
}
