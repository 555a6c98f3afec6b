// Package votes stores poll votes, one per user per poll widget.
package votes

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type Repository interface {
	// Create records a vote. A second vote by the same user on the same
	// widget yields common.ErrorAlreadyExists.
	Create(ctx context.Context, v *models.PollVote) error
	Find(ctx context.Context, widgetID, userID string) (*models.PollVote, error)
	Counts(ctx context.Context, widgetID string) (map[string]int64, error)
	DeleteByWidget(ctx context.Context, widgetID string) (int64, error)
}
