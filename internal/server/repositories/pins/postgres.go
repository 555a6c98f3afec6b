package pins

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

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.MapPin) error {
	query :=
		`INSERT INTO map_pins (widget_id, user_id, author, lat, lng, label)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (widget_id, user_id) DO UPDATE
		 SET author = EXCLUDED.author, lat = EXCLUDED.lat, lng = EXCLUDED.lng,
		     label = EXCLUDED.label, updated_at = now()
		 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, p.WidgetID, p.UserID, p.Author, p.Lat, p.Lng, p.Label).Scan(&p.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) List(ctx context.Context, widgetID string) ([]*models.MapPin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT widget_id, user_id, author, lat, lng, label, updated_at FROM map_pins
		 WHERE widget_id = $1 ORDER BY updated_at`, widgetID)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	defer rows.Close()

	var result []*models.MapPin
	for rows.Next() {
		p := &models.MapPin{}
		if err := rows.Scan(&p.WidgetID, &p.UserID, &p.Author, &p.Lat, &p.Lng, &p.Label, &p.UpdatedAt); err != nil {
			return nil, dbx.MapError(err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.MapError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, widgetID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM map_pins WHERE widget_id = $1 AND user_id = $2`, widgetID, userID)
	if err != nil {
		return dbx.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByWidget(ctx context.Context, widgetID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM map_pins WHERE widget_id = $1`, widgetID)
	if err != nil {
		return 0, dbx.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
