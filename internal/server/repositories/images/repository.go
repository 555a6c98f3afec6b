// Package images stores metadata of pictures shown by image widgets.
package images

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	// Upsert records a pending upload, replacing any previous asset of the widget.
	Upsert(ctx context.Context, a *models.ImageAsset) error
	Get(ctx context.Context, widgetID string) (*models.ImageAsset, error)
	MarkUploaded(ctx context.Context, widgetID, storageKey string) error
	Delete(ctx context.Context, widgetID string) error
}
