package widgets

import (
	"context"
	"encoding/json"
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

const widgetColumns = `id, board_id, type, config, pos_x, pos_y, width, height, title, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanWidget(s scanner) (*models.Widget, error) {
	w := &models.Widget{}
	var cfg []byte
	err := s.Scan(&w.ID, &w.BoardID, &w.Type, &cfg,
		&w.Position.X, &w.Position.Y, &w.Size.Width, &w.Size.Height,
		&w.Title, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfg, &w.Config); err != nil {
		return nil, fmt.Errorf("widget %s config: %w", w.ID, err)
	}
	if w.Config == nil {
		w.Config = map[string]any{}
	}
	return w, nil
}

func encodeConfig(cfg map[string]any) ([]byte, error) {
	if cfg == nil {
		cfg = map[string]any{}
	}
	return json.Marshal(cfg)
}

func (r *PostgresRepository) Create(ctx context.Context, w *models.Widget) error {
	cfg, err := encodeConfig(w.Config)
	if err != nil {
		return err
	}
	query :=
		`INSERT INTO widgets (id, board_id, type, config, pos_x, pos_y, width, height, title)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING version, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query, w.ID, w.BoardID, w.Type, cfg,
		w.Position.X, w.Position.Y, w.Size.Width, w.Size.Height, w.Title).
		Scan(&w.Version, &w.CreatedAt, &w.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Widget, error) {
	w, err := scanWidget(r.db.QueryRowContext(ctx, `SELECT `+widgetColumns+` FROM widgets WHERE id = $1`, id))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return w, nil
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Widget, error) {
	w, err := scanWidget(r.db.QueryRowContext(ctx, `SELECT `+widgetColumns+` FROM widgets WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return w, nil
}

func (r *PostgresRepository) ListByBoard(ctx context.Context, boardID string) ([]*models.Widget, error) {
	query := `SELECT ` + widgetColumns + ` FROM widgets WHERE board_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	defer rows.Close()

	var result []*models.Widget
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, dbx.MapError(err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.MapError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, w *models.Widget) error {
	cfg, err := encodeConfig(w.Config)
	if err != nil {
		return err
	}
	query :=
		`UPDATE widgets
		 SET config = $2, pos_x = $3, pos_y = $4, width = $5, height = $6, title = $7,
		     version = version + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING version, updated_at`

	err = r.db.QueryRowContext(ctx, query, w.ID, cfg,
		w.Position.X, w.Position.Y, w.Size.Width, w.Size.Height, w.Title).
		Scan(&w.Version, &w.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM widgets WHERE id = $1`, id)
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
