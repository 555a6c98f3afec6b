// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a GitHub identity that signed in. The GitHub access token is kept
// sealed; only the server secret can open it.
type User struct {
	ID          string
	GitHubID    int64
	Login       string
	AvatarURL   string
	SealedToken []byte
	Nonce       []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
