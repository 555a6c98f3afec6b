package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/github"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
)

// AccessService answers whether a user may change a board. Write access to
// a board is write access to its repository on GitHub.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	github      GitHub
	sealer      TokenSealer
	logger      logging.Logger
}

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, gh GitHub, sealer TokenSealer, logger logging.Logger) *AccessService {
	return &AccessService{db: db, repomanager: m, github: gh, sealer: sealer, logger: logger.With("module", "access")}
}

// GitHubToken opens the GitHub token stored for userID.
func (s *AccessService) GitHubToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", common.ErrorUnauthorized
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	token, err := s.sealer.Open(user.SealedToken, user.Nonce)
	if err != nil {
		s.logger.Error(ctx, "cannot open github token", "user_id", userID, "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}

// CanWrite reports whether userID holds admin, maintain or write permission
// on repo. Anonymous callers never can.
func (s *AccessService) CanWrite(ctx context.Context, userID, repo string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	token, err := s.GitHubToken(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return s.github.CanWrite(ctx, userID, token, repo)
}

// RequireWrite fails with ErrorUnauthorized for anonymous callers and
// ErrorForbidden for users without write access.
func (s *AccessService) RequireWrite(ctx context.Context, userID, repo string) error {
	if userID == "" {
		return common.ErrorUnauthorized
	}
	ok, err := s.CanWrite(ctx, userID, repo)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorForbidden
	}
	return nil
}

// RequireBoardWrite loads the board and checks write access on its repository.
func (s *AccessService) RequireBoardWrite(ctx context.Context, userID, boardID string) (*models.Board, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	board, err := s.repomanager.Boards(s.db).GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireWrite(ctx, userID, board.RepoFullName); err != nil {
		return nil, err
	}
	return board, nil
}

// ListRepos lists the repositories userID can see on GitHub.
func (s *AccessService) ListRepos(ctx context.Context, userID string) ([]*github.Repo, error) {
	token, err := s.GitHubToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.github.ListRepos(ctx, token)
}
