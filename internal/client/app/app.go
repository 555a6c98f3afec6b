// Package app wires the client core into a headless board watcher: it keeps
// the session tokens in the local store, opens one board and logs every
// change the server pushes.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/repoboard/internal/client/canvas"
	"github.com/dmitrijs2005/repoboard/internal/client/client"
	"github.com/dmitrijs2005/repoboard/internal/client/config"
	"github.com/dmitrijs2005/repoboard/internal/client/localstore"
	"github.com/dmitrijs2005/repoboard/internal/client/session"
	"github.com/dmitrijs2005/repoboard/internal/client/widgetstate"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dustin/go-humanize"
)

// Default view size used for screen placement when no window exists.
const (
	viewWidth  = 1280
	viewHeight = 800
)

type App struct {
	cfg    *config.Config
	logger logging.Logger
	store  *localstore.Store
	client *client.GRPCClient
	out    io.Writer
}

// NewApp opens the local store and prepares the server client, resuming a
// previous session when tokens were saved.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, out io.Writer) (*App, error) {
	store, err := localstore.Open(ctx, cfg.LocalStorePath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr, client.Options{Store: store, Logger: logger})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if _, err := c.Resume(ctx); err != nil {
		logger.Warn(ctx, "cannot resume session", "error", err)
	}

	return &App{cfg: cfg, logger: logger, store: store, client: c, out: out}, nil
}

func (a *App) Close() error {
	cerr := a.client.Close()
	if err := a.store.Close(); err != nil {
		return err
	}
	return cerr
}

// SignIn logs in with githubToken unless a saved session exists.
func (a *App) SignIn(ctx context.Context, githubToken string) error {
	if a.client.SignedIn() {
		return nil
	}
	if githubToken == "" {
		return fmt.Errorf("%w: no saved session and no GitHub token", client.ErrUnauthorized)
	}
	u, err := a.client.Login(ctx, githubToken)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "signed in", "login", u.Login)
	return nil
}

// Watch opens the board of repo and prints it after every change until ctx
// is done.
func (a *App) Watch(ctx context.Context, repo string) error {
	board, err := a.client.GetBoardByRepo(ctx, repo)
	if err != nil {
		return fmt.Errorf("board for %s: %w", repo, err)
	}

	var s *session.BoardSession
	s = session.New(a.client, board.ID, viewWidth, viewHeight, session.Options{
		Logger:   a.logger,
		Debounce: a.cfg.DebounceWindow,
		Canvas: canvas.Options{
			PanSpeed: a.cfg.PanSpeed,
			KeyStep:  a.cfg.KeyPanStep,
			ZoomStep: a.cfg.ZoomStep,
		},
		Notifier: widgetstate.NotifierFunc(func(n widgetstate.Notice) {
			a.logger.Warn(ctx, "change not saved", "widget_id", n.WidgetID, "op", n.Op, "error", n.Err)
		}),
		OnChange: func() { printBoard(a.out, s) },
	})
	defer s.Close()

	if err := s.Load(ctx); err != nil {
		return err
	}
	printBoard(a.out, s)
	return s.Run(ctx)
}

func printBoard(w io.Writer, s *session.BoardSession) {
	b := s.Board()
	views := s.Render()

	var sb strings.Builder
	mode := "read-only"
	if s.CanWrite() {
		mode = "editable"
	}
	fmt.Fprintf(&sb, "%s (%s), %s, %s\n", b.Name, b.RepoFullName, mode, widgetCount(len(views)))
	for _, v := range views {
		name := v.Resolution.Definition.Name
		if v.Record.Title != "" {
			name = v.Record.Title
		}
		fmt.Fprintf(&sb, "  %-10s %-24s at (%.0f, %.0f) %.0fx%.0f v%d %s, updated %s\n",
			v.Record.Type, name,
			v.Record.Position.X, v.Record.Position.Y,
			v.Record.Size.Width, v.Record.Size.Height,
			v.Record.Version, v.State,
			humanize.Time(v.Record.UpdatedAt))
	}
	_, _ = io.WriteString(w, sb.String())
}

func widgetCount(n int) string {
	if n == 1 {
		return "1 widget"
	}
	return humanize.Comma(int64(n)) + " widgets"
}
