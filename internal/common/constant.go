// Package common contains shared constants and sentinel errors used across
// repoboard components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultGuestbookCommentLimit is the number of comments a single user may
// leave on one guestbook widget.
const DefaultGuestbookCommentLimit = 5
