// Package pins stores map widget pins, one per user per widget.
package pins

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	// Upsert replaces the caller's pin on the widget.
	Upsert(ctx context.Context, p *models.MapPin) error
	List(ctx context.Context, widgetID string) ([]*models.MapPin, error)
	Delete(ctx context.Context, widgetID, userID string) error
	DeleteByWidget(ctx context.Context, widgetID string) (int64, error)
}
