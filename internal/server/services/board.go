package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/github"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	maxBoardNameLength        = 100
	maxBoardDescriptionLength = 1000
)

type BoardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *AccessService
	publisher   Publisher
	logger      logging.Logger
}

func NewBoardService(db *sql.DB, m repomanager.RepositoryManager, access *AccessService, pub Publisher, logger logging.Logger) *BoardService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &BoardService{db: db, repomanager: m, access: access, publisher: pub, logger: logger.With("module", "boards")}
}

// CreateBoard creates the board of repo. Only users who can push to the
// repository may create it, and each repository has at most one board.
func (s *BoardService) CreateBoard(ctx context.Context, userID, repo, name, description string) (*models.Board, error) {
	repo = strings.TrimSpace(repo)
	_, repoName, err := github.SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = repoName
	}
	if err := validateBoardText(name, description); err != nil {
		return nil, err
	}

	if err := s.access.RequireWrite(ctx, userID, repo); err != nil {
		return nil, err
	}

	b := &models.Board{
		ID:           uuid.NewString(),
		Name:         name,
		RepoFullName: repo,
		Description:  description,
		CreatedBy:    userID,
	}
	if err := s.repomanager.Boards(s.db).Create(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "board created", "board_id", b.ID, "repo", repo, "user_id", userID)
	return b, nil
}

func (s *BoardService) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	return s.repomanager.Boards(s.db).GetByID(ctx, id)
}

// GetBoardByRepo returns the board of repo or common.ErrorNotFound.
func (s *BoardService) GetBoardByRepo(ctx context.Context, repo string) (*models.Board, error) {
	if _, _, err := github.SplitRepo(repo); err != nil {
		return nil, err
	}
	return s.repomanager.Boards(s.db).GetByRepo(ctx, repo)
}

func (s *BoardService) ListBoards(ctx context.Context, limit, offset int) ([]*models.Board, error) {
	return s.repomanager.Boards(s.db).List(ctx, pageSize(limit), max(offset, 0))
}

func (s *BoardService) UpdateBoard(ctx context.Context, userID, id, name, description string) (*models.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if err := validateBoardText(name, description); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireBoardWrite(ctx, userID, id); err != nil {
		return nil, err
	}

	b, err := s.repomanager.Boards(s.db).Update(ctx, id, name, description)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.Event{BoardID: b.ID, Kind: events.BoardUpdated})
	return b, nil
}

func validateBoardText(name, description string) error {
	verr := &common.ValidationError{}
	if len(name) > maxBoardNameLength {
		verr.Add("name", "is too long")
	}
	if len(description) > maxBoardDescriptionLength {
		verr.Add("description", "is too long")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
