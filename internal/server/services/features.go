package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
)

// widgetOfType loads widget id and checks that it is of type typ.
func widgetOfType(ctx context.Context, rm repomanager.RepositoryManager, db dbx.DBTX, id, typ string) (*models.Widget, error) {
	w, err := rm.Widgets(db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Type != typ {
		return nil, common.NewValidationError("widget", fmt.Sprintf("is not a %s widget", typ))
	}
	return w, nil
}

// authorName returns the login shown next to user content.
func authorName(ctx context.Context, rm repomanager.RepositoryManager, db dbx.DBTX, userID string) (string, error) {
	if userID == "" {
		return "", common.ErrorUnauthorized
	}
	u, err := rm.Users(db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Login, nil
}
