package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/auth"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/services"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "secret"

type fakeUsers struct {
	UserService
	tokens *services.TokenPair
	user   *models.User
	err    error
}

func (f *fakeUsers) Login(ctx context.Context, githubToken string) (*services.TokenPair, *models.User, error) {
	return f.tokens, f.user, f.err
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.tokens, f.err
}

func (f *fakeUsers) Me(ctx context.Context, userID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	u.ID = userID
	return &u, nil
}

type fakeBoards struct {
	BoardService
	mu     sync.Mutex
	boards map[string]*models.Board
	lastBy string
}

func (f *fakeBoards) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (f *fakeBoards) CreateBoard(ctx context.Context, userID, repo, name, description string) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	f.lastBy = userID
	b := &models.Board{ID: "b-" + repo, Name: name, RepoFullName: repo, CreatedBy: userID}
	f.boards[b.ID] = b
	return b, nil
}

type fakeWidgets struct {
	WidgetService
	mu        sync.Mutex
	registry  *widgets.Registry
	items     map[string][]*models.Widget
	lastPatch models.WidgetPatch
	err       error
}

func (f *fakeWidgets) Registry() *widgets.Registry { return f.registry }

func (f *fakeWidgets) ListWidgets(ctx context.Context, boardID string) ([]*models.Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Widget(nil), f.items[boardID]...), nil
}

func (f *fakeWidgets) add(w *models.Widget) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[w.BoardID] = append(f.items[w.BoardID], w)
}

func (f *fakeWidgets) PatchWidget(ctx context.Context, userID, id string, patch models.WidgetPatch) (*models.Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastPatch = patch
	w := &models.Widget{ID: id, BoardID: "b1", Type: widgets.TypeText, Version: 2}
	if patch.Position != nil {
		w.Position = *patch.Position
	}
	return w, nil
}

type fakeGuestbook struct {
	GuestbookService
	comments []*models.GuestbookComment
	limit    int
}

func (f *fakeGuestbook) ListComments(ctx context.Context, widgetID string, before time.Time, limit int) ([]*models.GuestbookComment, error) {
	f.limit = limit
	return f.comments, nil
}

type fakeAccess struct {
	AccessService
	writers map[string]bool
}

func (f *fakeAccess) CanWrite(ctx context.Context, userID, repo string) (bool, error) {
	return f.writers[userID], nil
}

func newFakes() (Services, *fakeBoards, *fakeWidgets) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	boards := &fakeBoards{boards: map[string]*models.Board{
		"b1": {ID: "b1", Name: "app", RepoFullName: "acme/app", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now},
	}}
	ws := &fakeWidgets{registry: widgets.Builtin(), items: map[string][]*models.Widget{}}
	ws.add(&models.Widget{ID: "w1", BoardID: "b1", Type: widgets.TypeText, Position: geom.Point{X: 10, Y: 20},
		Size: geom.Size{Width: 200, Height: 100}, Config: map[string]any{"text": "hi"}, Version: 1})

	svc := Services{
		Users: &fakeUsers{
			tokens: &services.TokenPair{AccessToken: "a", RefreshToken: "r"},
			user:   &models.User{ID: "u1", Login: "wendy"},
		},
		Access:    &fakeAccess{writers: map[string]bool{"u1": true}},
		Boards:    boards,
		Widgets:   ws,
		Guestbook: &fakeGuestbook{},
	}
	return svc, boards, ws
}

// startServer serves s over an in-memory listener and returns a client
// connection speaking the JSON codec.
func startServer(t *testing.T, s *GRPCServer) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv, _ := s.newServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func withToken(t *testing.T, ctx context.Context, userID string, validity time.Duration) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(userID, "login-"+userID, []byte(testSecret), validity)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, tok)
}

func newTestServer(svc Services, w Watcher) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), svc, w, nil, testSecret)
}
