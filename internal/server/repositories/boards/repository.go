// Package boards stores repository boards.
package boards

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	// Create inserts b. A second board for the same repository yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, b *models.Board) error
	GetByID(ctx context.Context, id string) (*models.Board, error)
	// GetByRepo matches the repository full name case-insensitively.
	GetByRepo(ctx context.Context, repoFullName string) (*models.Board, error)
	List(ctx context.Context, limit, offset int) ([]*models.Board, error)
	Update(ctx context.Context, id, name, description string) (*models.Board, error)
}
