package models

// Session is an ephemeral authentication token. ExpiresAt is nil for
// sessions that never expire on their own.
type Session struct {
	Token     string
	Identity  string
	Admin     bool
	ExpiresAt *string // RFC3339
	CreatedAt string
}
