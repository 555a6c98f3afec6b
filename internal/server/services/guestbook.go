package services

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/google/uuid"
)

const maxCommentLength = 500

// Page sizes of ListComments.
const (
	DefaultCommentsPage = 20
	MaxCommentsPage     = 100
)

type GuestbookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limit       int
	publisher   Publisher
	logger      logging.Logger
}

func NewGuestbookService(db *sql.DB, m repomanager.RepositoryManager, limit int, pub Publisher, logger logging.Logger) *GuestbookService {
	if limit <= 0 {
		limit = common.DefaultGuestbookCommentLimit
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	return &GuestbookService{db: db, repomanager: m, limit: limit, publisher: pub, logger: logger.With("module", "guestbook")}
}

// AddComment stores a comment by userID. A user may leave at most limit
// comments per guestbook; the next one yields common.ErrorLimitExceeded.
func (s *GuestbookService) AddComment(ctx context.Context, userID, widgetID, body string) (*models.GuestbookComment, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.NewValidationError("body", "is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, common.NewValidationError("body", "is too long")
	}

	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeGuestbook)
	if err != nil {
		return nil, err
	}
	author, err := authorName(ctx, s.repomanager, s.db, userID)
	if err != nil {
		return nil, err
	}

	c := &models.GuestbookComment{ID: uuid.NewString(), WidgetID: widgetID, UserID: userID, Author: author, Body: body}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Comments(tx)
		if err := repo.LockAuthor(ctx, widgetID, userID); err != nil {
			return err
		}
		n, err := repo.CountByAuthor(ctx, widgetID, userID)
		if err != nil {
			return err
		}
		if n >= s.limit {
			return common.ErrorLimitExceeded
		}
		return repo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: widgetID, Kind: events.FeatureChanged})
	return c, nil
}

// ListComments returns a page of comments, newest first. Pass the CreatedAt
// of the last comment seen as before to get the next page.
func (s *GuestbookService) ListComments(ctx context.Context, widgetID string, before time.Time, limit int) ([]*models.GuestbookComment, error) {
	if _, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeGuestbook); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultCommentsPage
	case limit > MaxCommentsPage:
		limit = MaxCommentsPage
	}
	return s.repomanager.Comments(s.db).List(ctx, widgetID, before, limit)
}

// DeleteComment removes a comment. Only its author may do so.
func (s *GuestbookService) DeleteComment(ctx context.Context, userID, commentID string) error {
	if userID == "" {
		return common.ErrorUnauthorized
	}
	repo := s.repomanager.Comments(s.db)
	c, err := repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return common.ErrorForbidden
	}
	if err := repo.Delete(ctx, commentID); err != nil {
		return err
	}

	if w, err := s.repomanager.Widgets(s.db).GetByID(ctx, c.WidgetID); err == nil {
		s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: w.ID, Kind: events.FeatureChanged})
	}
	return nil
}

// DeleteCommentsHook removes comments of a deleted guestbook.
func (s *GuestbookService) DeleteCommentsHook(ctx context.Context, w *models.Widget) error {
	_, err := s.repomanager.Comments(s.db).DeleteByWidget(ctx, w.ID)
	return err
}
