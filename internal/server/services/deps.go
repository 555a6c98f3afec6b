// Package services contains server-side business logic: sign-in, boards,
// widgets and the per-widget feature data (votes, comments, pins, images).
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/github"
)

// GitHub is the subset of the GitHub collaborator the services use.
type GitHub interface {
	Authenticate(ctx context.Context, token string) (*github.Identity, error)
	Repository(ctx context.Context, fullName string) (*github.Repo, error)
	StarCount(ctx context.Context, fullName string) (int, error)
	CanWrite(ctx context.Context, cacheKey, token, fullName string) (bool, error)
	ListRepos(ctx context.Context, token string) ([]*github.Repo, error)
}

// ObjectStorage hands out presigned URLs for image bytes.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Publisher receives board change notifications.
type Publisher interface {
	Publish(e events.Event)
}

// TokenSealer keeps GitHub tokens encrypted at rest.
type TokenSealer interface {
	Seal(plaintext string) (ciphertext, nonce []byte, err error)
	Open(ciphertext, nonce []byte) (string, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}
