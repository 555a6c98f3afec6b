// Package comments stores guestbook comments.
package comments

import (
	"context"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.GuestbookComment) error
	GetByID(ctx context.Context, id string) (*models.GuestbookComment, error)
	// List returns comments newest first. A non-zero before restricts the
	// page to comments created strictly earlier.
	List(ctx context.Context, widgetID string, before time.Time, limit int) ([]*models.GuestbookComment, error)
	CountByAuthor(ctx context.Context, widgetID, userID string) (int, error)
	// LockAuthor serialises writers for one (widget, user) pair until the
	// surrounding transaction ends.
	LockAuthor(ctx context.Context, widgetID, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteByWidget(ctx context.Context, widgetID string) (int64, error)
}
