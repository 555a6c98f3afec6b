// Package widgets stores the widgets placed on boards.
package widgets

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, w *models.Widget) error
	GetByID(ctx context.Context, id string) (*models.Widget, error)
	// GetForUpdate reads and row-locks the widget; use inside a transaction.
	GetForUpdate(ctx context.Context, id string) (*models.Widget, error)
	ListByBoard(ctx context.Context, boardID string) ([]*models.Widget, error)
	// Update writes every mutable column of w and bumps its version. Version
	// and UpdatedAt are filled in from the database.
	Update(ctx context.Context, w *models.Widget) error
	Delete(ctx context.Context, id string) error
}
