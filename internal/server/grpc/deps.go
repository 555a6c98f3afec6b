package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/github"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/services"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

type UserService interface {
	Login(ctx context.Context, githubToken string) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type AccessService interface {
	CanWrite(ctx context.Context, userID, repo string) (bool, error)
	ListRepos(ctx context.Context, userID string) ([]*github.Repo, error)
}

type BoardService interface {
	CreateBoard(ctx context.Context, userID, repo, name, description string) (*models.Board, error)
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	GetBoardByRepo(ctx context.Context, repo string) (*models.Board, error)
	ListBoards(ctx context.Context, limit, offset int) ([]*models.Board, error)
	UpdateBoard(ctx context.Context, userID, id, name, description string) (*models.Board, error)
}

type WidgetService interface {
	Registry() *widgets.Registry
	CreateWidget(ctx context.Context, userID, boardID, typ string, pos geom.Point, title string) (*models.Widget, error)
	ListWidgets(ctx context.Context, boardID string) ([]*models.Widget, error)
	PatchWidget(ctx context.Context, userID, id string, patch models.WidgetPatch) (*models.Widget, error)
	DeleteWidget(ctx context.Context, userID, id string) error
}

type PollService interface {
	Vote(ctx context.Context, userID, widgetID, option string) (*models.PollResults, error)
	Results(ctx context.Context, userID, widgetID string) (*models.PollResults, error)
}

type GuestbookService interface {
	AddComment(ctx context.Context, userID, widgetID, body string) (*models.GuestbookComment, error)
	ListComments(ctx context.Context, widgetID string, before time.Time, limit int) ([]*models.GuestbookComment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

type MapService interface {
	SetPin(ctx context.Context, userID, widgetID string, lat, lng float64, label string) (*models.MapPin, error)
	ListPins(ctx context.Context, widgetID string) ([]*models.MapPin, error)
	RemovePin(ctx context.Context, userID, widgetID string) error
}

type ImageService interface {
	RequestUpload(ctx context.Context, userID, widgetID, contentType string, size int64) (*services.UploadTicket, error)
	ConfirmUpload(ctx context.Context, userID, widgetID, storageKey string) (*models.ImageAsset, error)
	URL(ctx context.Context, widgetID string) (string, time.Time, error)
}

type StarsService interface {
	Count(ctx context.Context, repo string) (int, error)
}

// Watcher delivers board change events to WatchBoard streams.
type Watcher interface {
	Subscribe(boardID string) (<-chan events.Event, func())
}

// Services bundles the business logic the gRPC handlers delegate to.
type Services struct {
	Users     UserService
	Access    AccessService
	Boards    BoardService
	Widgets   WidgetService
	Polls     PollService
	Guestbook GuestbookService
	Maps      MapService
	Images    ImageService
	Stars     StarsService
}
