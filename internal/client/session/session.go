package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/client/canvas"
	"github.com/dmitrijs2005/repoboard/internal/client/client"
	"github.com/dmitrijs2005/repoboard/internal/client/widgetstate"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/viewport"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

// DefaultReconnectDelay is the pause before reopening a dropped watch.
const DefaultReconnectDelay = 2 * time.Second

// Stream yields board snapshots until it fails or ends with io.EOF.
type Stream interface {
	Recv() (*client.Snapshot, error)
}

// Backend is the server as seen by a session.
type Backend interface {
	widgetstate.Persister
	GetBoard(ctx context.Context, id string) (*api.Board, error)
	ListWidgets(ctx context.Context, boardID string) ([]widgetstate.Record, error)
	CanWrite(ctx context.Context, boardID string) (bool, error)
	CreateWidget(ctx context.Context, boardID, typ string, pos geom.Point, title string) (widgetstate.Record, error)
	Watch(ctx context.Context, boardID string) (Stream, error)
	Refresh(ctx context.Context) error
}

type grpcBackend struct {
	*client.GRPCClient
}

func (b grpcBackend) Watch(ctx context.Context, boardID string) (Stream, error) {
	return b.WatchBoard(ctx, boardID)
}

// Options configures a session. Zero values take the defaults.
type Options struct {
	Registry       *widgets.Registry
	Logger         logging.Logger
	Notifier       widgetstate.Notifier
	Clock          widgetstate.Clock
	Debounce       time.Duration
	Canvas         canvas.Options
	ReconnectDelay time.Duration
	// OnChange is called from the watch goroutine after a snapshot was applied.
	OnChange func()
	// OnOpenConfig is handed to every provider.
	OnOpenConfig func(widgetstate.Record)
}

// WidgetView is one widget as the UI should draw it.
type WidgetView struct {
	Record     widgetstate.Record
	Resolution widgets.Resolution
	State      widgetstate.State
	Screen     geom.Rect
	Selected   bool
}

// BoardSession is the client state of one open board. The canvas and
// viewport belong to the UI goroutine; widget bookkeeping is shared with the
// watch goroutine started by Run.
type BoardSession struct {
	backend Backend
	boardID string
	opts    Options
	logger  logging.Logger

	vp   *viewport.Viewport
	ctrl *canvas.Controller

	mu        sync.Mutex
	board     api.Board
	canWrite  bool
	providers map[string]*widgetstate.Provider
	order     []string
	closed    bool
}

// New prepares a session for boardID over c. Call Load before use.
func New(c *client.GRPCClient, boardID string, width, height float64, opts Options) *BoardSession {
	return newSession(grpcBackend{c}, boardID, width, height, opts)
}

func newSession(b Backend, boardID string, width, height float64, opts Options) *BoardSession {
	if opts.Registry == nil {
		opts.Registry = widgets.Builtin()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}

	s := &BoardSession{
		backend:   b,
		boardID:   boardID,
		opts:      opts,
		logger:    opts.Logger.With("module", "session", "board_id", boardID),
		vp:        viewport.New(width, height),
		providers: make(map[string]*widgetstate.Provider),
	}
	s.ctrl = canvas.NewController(s.vp, canvas.WidgetsFunc(s.widget), opts.Canvas)
	return s
}

// Load fetches the board, its widgets and the caller's write access, then
// frames the content once.
func (s *BoardSession) Load(ctx context.Context) error {
	board, err := s.backend.GetBoard(ctx, s.boardID)
	if err != nil {
		return err
	}
	recs, err := s.backend.ListWidgets(ctx, s.boardID)
	if err != nil {
		return err
	}
	canWrite, err := s.backend.CanWrite(ctx, s.boardID)
	if err != nil {
		s.logger.Warn(ctx, "cannot check write access", "error", err)
		canWrite = false
	}

	s.mu.Lock()
	s.board = *board
	s.canWrite = canWrite
	s.syncLocked(recs)
	rects := s.rectsLocked()
	s.mu.Unlock()

	s.ctrl.SetCanWrite(canWrite)
	s.vp.AutoFit(rects)
	return nil
}

// Run follows the board's snapshot stream until ctx is done. An expired
// access token is refreshed and the stream reopened; a lost connection is
// retried after ReconnectDelay.
func (s *BoardSession) Run(ctx context.Context) error {
	for {
		err := s.watch(ctx)
		if ctx.Err() != nil {
			return nil
		}

		switch {
		case errors.Is(err, common.ErrTokenExpired):
			if rerr := s.backend.Refresh(ctx); rerr != nil {
				return rerr
			}
			continue
		case err == nil, errors.Is(err, io.EOF), errors.Is(err, client.ErrUnavailable):
			s.logger.Info(ctx, "watch closed, reconnecting", "error", err)
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.opts.ReconnectDelay):
		}
	}
}

func (s *BoardSession) watch(ctx context.Context) error {
	stream, err := s.backend.Watch(ctx, s.boardID)
	if err != nil {
		return err
	}
	for {
		snap, err := stream.Recv()
		if err != nil {
			return err
		}
		s.Apply(snap)
	}
}

// Apply brings the session in line with snap: known widgets reconcile,
// new ones get a provider and missing ones are closed.
func (s *BoardSession) Apply(snap *client.Snapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.board = snap.Board
	s.syncLocked(snap.Widgets)
	s.mu.Unlock()

	if s.opts.OnChange != nil {
		s.opts.OnChange()
	}
}

func (s *BoardSession) syncLocked(recs []widgetstate.Record) {
	seen := make(map[string]bool, len(recs))
	order := make([]string, 0, len(recs))
	for _, rec := range recs {
		seen[rec.ID] = true
		order = append(order, rec.ID)
		if p, ok := s.providers[rec.ID]; ok {
			p.Apply(rec)
			continue
		}
		s.providers[rec.ID] = s.newProvider(rec)
	}
	for id, p := range s.providers {
		if !seen[id] {
			p.Close()
			delete(s.providers, id)
		}
	}
	s.order = order
}

func (s *BoardSession) newProvider(rec widgetstate.Record) *widgetstate.Provider {
	return widgetstate.NewProvider(rec, widgetstate.Options{
		Persister:    s.backend,
		Registry:     s.opts.Registry,
		Notifier:     s.opts.Notifier,
		Logger:       s.opts.Logger,
		Clock:        s.opts.Clock,
		Debounce:     s.opts.Debounce,
		OnOpenConfig: s.opts.OnOpenConfig,
	})
}

func (s *BoardSession) rectsLocked() []geom.Rect {
	rects := make([]geom.Rect, 0, len(s.order))
	for _, id := range s.order {
		rects = append(rects, s.providers[id].View().Rect())
	}
	return rects
}

func (s *BoardSession) widget(id string) (canvas.Widget, bool) {
	p, ok := s.Provider(id)
	if !ok {
		return nil, false
	}
	return p, true
}

// Provider returns the provider of widget id.
func (s *BoardSession) Provider(id string) (*widgetstate.Provider, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	return p, ok
}

func (s *BoardSession) Board() api.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

func (s *BoardSession) CanWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canWrite
}

func (s *BoardSession) Viewport() *viewport.Viewport { return s.vp }

func (s *BoardSession) Controller() *canvas.Controller { return s.ctrl }

// Render returns the widgets in board order with their screen placement.
// A selection that points at a vanished widget is dropped.
func (s *BoardSession) Render() []WidgetView {
	s.mu.Lock()
	providers := make([]*widgetstate.Provider, 0, len(s.order))
	for _, id := range s.order {
		providers = append(providers, s.providers[id])
	}
	s.mu.Unlock()

	selected := s.ctrl.Selected()
	found := false
	out := make([]WidgetView, 0, len(providers))
	for _, p := range providers {
		rec := p.View()
		rect := rec.Rect()
		if preview, ok := s.ctrl.Preview(rec.ID); ok {
			rect = preview
		}
		sel := rec.ID == selected
		found = found || sel
		out = append(out, WidgetView{
			Record:     rec,
			Resolution: p.Resolution(),
			State:      p.State(),
			Screen:     s.vp.WorldRectToScreen(rect),
			Selected:   sel,
		})
	}
	if selected != "" && !found {
		s.ctrl.Deselect()
	}
	return out
}

// AddWidget creates a widget of typ centred under the middle of the view.
func (s *BoardSession) AddWidget(ctx context.Context, typ, title string) (*widgetstate.Provider, error) {
	if !s.CanWrite() {
		return nil, common.ErrorForbidden
	}
	res := s.opts.Registry.Resolve(typ)
	if !res.Known {
		return nil, common.ErrorUnknownWidgetType
	}

	center := s.vp.ScreenToWorld(s.vp.Center())
	size := res.Definition.Size.DefaultSize()
	pos := geom.Point{X: center.X - size.Width/2, Y: center.Y - size.Height/2}

	rec, err := s.backend.CreateWidget(ctx, s.boardID, typ, pos, title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.providers[rec.ID]; ok {
		// the watch stream got there first
		p.Apply(rec)
		return p, nil
	}
	p := s.newProvider(rec)
	s.providers[rec.ID] = p
	s.order = append(s.order, rec.ID)
	return p, nil
}

// DeleteWidget deletes widget id once confirm agrees and forgets it.
func (s *BoardSession) DeleteWidget(ctx context.Context, id string, confirm func() bool) error {
	p, ok := s.Provider(id)
	if !ok {
		return common.ErrorNotFound
	}
	if err := p.Delete(ctx, confirm); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeLocked(id)
	s.mu.Unlock()
	if s.ctrl.Selected() == id {
		s.ctrl.Deselect()
	}
	return nil
}

func (s *BoardSession) removeLocked(id string) {
	delete(s.providers, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Close stops tracking every widget. Pending debounced writes are dropped.
func (s *BoardSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, p := range s.providers {
		p.Close()
	}
	s.providers = map[string]*widgetstate.Provider{}
	s.order = nil
}
