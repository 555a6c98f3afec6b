package boards

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const boardColumns = `id, name, repo_full_name, description, created_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(s scanner) (*models.Board, error) {
	b := &models.Board{}
	if err := s.Scan(&b.ID, &b.Name, &b.RepoFullName, &b.Description, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.Board) error {
	query :=
		`INSERT INTO boards (id, name, repo_full_name, description, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, b.ID, b.Name, b.RepoFullName, b.Description, b.CreatedBy).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`
	b, err := scanBoard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return b, nil
}

func (r *PostgresRepository) GetByRepo(ctx context.Context, repoFullName string) (*models.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE lower(repo_full_name) = lower($1)`
	b, err := scanBoard(r.db.QueryRowContext(ctx, query, repoFullName))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return b, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	defer rows.Close()

	var result []*models.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, dbx.MapError(err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.MapError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, name, description string) (*models.Board, error) {
	query :=
		`UPDATE boards SET name = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + boardColumns
	b, err := scanBoard(r.db.QueryRowContext(ctx, query, id, name, description))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return b, nil
}
