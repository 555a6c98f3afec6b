package users

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

func (r *PostgresRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (github_id, login, avatar_url, sealed_token, nonce)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (github_id) DO UPDATE
		 SET login = EXCLUDED.login, avatar_url = EXCLUDED.avatar_url,
		     sealed_token = EXCLUDED.sealed_token, nonce = EXCLUDED.nonce, updated_at = now()
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.GitHubID, user.Login, user.AvatarURL, user.SealedToken, user.Nonce).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, github_id, login, avatar_url, sealed_token, nonce, created_at, updated_at
		 FROM users WHERE id = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.GitHubID, &u.Login, &u.AvatarURL, &u.SealedToken, &u.Nonce, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return u, nil
}
