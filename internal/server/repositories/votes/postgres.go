package votes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.PollVote) error {
	query :=
		`INSERT INTO poll_votes (id, widget_id, user_id, option)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, v.ID, v.WidgetID, v.UserID, v.Option).Scan(&v.CreatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Find(ctx context.Context, widgetID, userID string) (*models.PollVote, error) {
	query :=
		`SELECT id, widget_id, user_id, option, created_at FROM poll_votes
		 WHERE widget_id = $1 AND user_id = $2`
	v := &models.PollVote{}
	err := r.db.QueryRowContext(ctx, query, widgetID, userID).
		Scan(&v.ID, &v.WidgetID, &v.UserID, &v.Option, &v.CreatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return v, nil
}

func (r *PostgresRepository) Counts(ctx context.Context, widgetID string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT option, count(*) FROM poll_votes WHERE widget_id = $1 GROUP BY option`, widgetID)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			option string
			n      int64
		)
		if err := rows.Scan(&option, &n); err != nil {
			return nil, dbx.MapError(err)
		}
		counts[option] = n
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.MapError(err)
	}
	return counts, nil
}

func (r *PostgresRepository) DeleteByWidget(ctx context.Context, widgetID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM poll_votes WHERE widget_id = $1`, widgetID)
	if err != nil {
		return 0, dbx.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
