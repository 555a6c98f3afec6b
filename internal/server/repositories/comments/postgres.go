package comments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

const commentColumns = `id, widget_id, user_id, author, body, created_at`

func (r *PostgresRepository) Create(ctx context.Context, c *models.GuestbookComment) error {
	query :=
		`INSERT INTO guestbook_comments (id, widget_id, user_id, author, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.WidgetID, c.UserID, c.Author, c.Body).Scan(&c.CreatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.GuestbookComment, error) {
	c := &models.GuestbookComment{}
	err := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM guestbook_comments WHERE id = $1`, id).
		Scan(&c.ID, &c.WidgetID, &c.UserID, &c.Author, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, widgetID string, before time.Time, limit int) ([]*models.GuestbookComment, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if before.IsZero() {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+commentColumns+` FROM guestbook_comments
			 WHERE widget_id = $1
			 ORDER BY created_at DESC, id DESC LIMIT $2`, widgetID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+commentColumns+` FROM guestbook_comments
			 WHERE widget_id = $1 AND created_at < $2
			 ORDER BY created_at DESC, id DESC LIMIT $3`, widgetID, before, limit)
	}
	if err != nil {
		return nil, dbx.MapError(err)
	}
	defer rows.Close()

	var result []*models.GuestbookComment
	for rows.Next() {
		c := &models.GuestbookComment{}
		if err := rows.Scan(&c.ID, &c.WidgetID, &c.UserID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, dbx.MapError(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.MapError(err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByAuthor(ctx context.Context, widgetID, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM guestbook_comments WHERE widget_id = $1 AND user_id = $2`, widgetID, userID).Scan(&n)
	if err != nil {
		return 0, dbx.MapError(err)
	}
	return n, nil
}

func (r *PostgresRepository) LockAuthor(ctx context.Context, widgetID, userID string) error {
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, widgetID, userID)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guestbook_comments WHERE id = $1`, id)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM guestbook_comments WHERE widget_id = $1`, widgetID)
	if err != nil {
		return 0, dbx.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
