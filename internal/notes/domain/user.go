package domain

import "time"

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity attached to a request after the
// session middleware has verified the access token. It deliberately carries
// no credential material.
type Principal struct {
	UserID      string
	Email       string
	DisplayName string
	TokenID     string
	ExpiresAt   time.Time
}
