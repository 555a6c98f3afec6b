package images

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, a *models.ImageAsset) error {
	query := `
		INSERT INTO image_assets (widget_id, storage_key, content_type, size, status, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (widget_id)
		DO UPDATE SET
			storage_key = EXCLUDED.storage_key,
			content_type = EXCLUDED.content_type,
			size = EXCLUDED.size,
			status = EXCLUDED.status,
			uploaded_by = EXCLUDED.uploaded_by,
			created_at = now()
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.WidgetID, a.StorageKey, a.ContentType, a.Size, a.Status, a.UploadedBy).Scan(&a.CreatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Get(ctx context.Context, widgetID string) (*models.ImageAsset, error) {
	query := `
		SELECT widget_id, storage_key, content_type, size, status, uploaded_by, created_at
		FROM image_assets WHERE widget_id = $1
	`
	a := &models.ImageAsset{}
	err := r.db.QueryRowContext(ctx, query, widgetID).
		Scan(&a.WidgetID, &a.StorageKey, &a.ContentType, &a.Size, &a.Status, &a.UploadedBy, &a.CreatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return a, nil
}

// MarkUploaded flips the asset to uploaded. The key guards against
// confirming an upload that a newer request already replaced.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, widgetID, storageKey string) error {
	query := `UPDATE image_assets SET status = 'uploaded' WHERE widget_id = $1 AND storage_key = $2`
	res, err := r.db.ExecContext(ctx, query, widgetID, storageKey)
	if err != nil {
		return dbx.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, widgetID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM image_assets WHERE widget_id = $1`, widgetID); err != nil {
		return dbx.MapError(err)
	}
	return nil
}
