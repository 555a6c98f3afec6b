// Package users stores GitHub identities that signed in to the server.
package users

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	// Upsert inserts the user or refreshes login, avatar and sealed token of
	// the existing row with the same GitHub ID. ID and CreatedAt are filled in.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
