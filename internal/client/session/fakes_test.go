package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/client/client"
	"github.com/dmitrijs2005/repoboard/internal/client/widgetstate"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

type fakeStream struct {
	ctx   context.Context
	snaps chan *client.Snapshot
	err   error
}

func (f *fakeStream) Recv() (*client.Snapshot, error) {
	select {
	case s, ok := <-f.snaps:
		if !ok {
			return nil, f.err
		}
		return s, nil
	case <-f.ctx.Done():
		return nil, f.ctx.Err()
	}
}

// fakeBackend keeps widgets in memory. Each Watch call takes the next
// scripted stream; once the script is used up streams block until cancel.
type fakeBackend struct {
	mu        sync.Mutex
	board     api.Board
	widgets   map[string]widgetstate.Record
	canWrite  bool
	canErr    error
	boardErr  error
	patches   []widgetstate.Patch
	deleted   []string
	created   []geom.Point
	refreshes int

	streams []func(ctx context.Context) *fakeStream
	watches int
}

func newFakeBackend(recs ...widgetstate.Record) *fakeBackend {
	b := &fakeBackend{
		board:    api.Board{ID: "b1", RepoFullName: "acme/app", Name: "App"},
		widgets:  map[string]widgetstate.Record{},
		canWrite: true,
	}
	for _, r := range recs {
		b.widgets[r.ID] = r
	}
	return b
}

func (b *fakeBackend) GetBoard(_ context.Context, id string) (*api.Board, error) {
	if b.boardErr != nil {
		return nil, b.boardErr
	}
	board := b.board
	return &board, nil
}

func (b *fakeBackend) ListWidgets(_ context.Context, boardID string) ([]widgetstate.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]widgetstate.Record, 0, len(b.widgets))
	for _, id := range sortedIDs(b.widgets) {
		out = append(out, b.widgets[id])
	}
	return out, nil
}

func (b *fakeBackend) CanWrite(context.Context, string) (bool, error) {
	return b.canWrite, b.canErr
}

func (b *fakeBackend) CreateWidget(_ context.Context, boardID, typ string, pos geom.Point, title string) (widgetstate.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, pos)
	def, _ := widgets.Builtin().Lookup(typ)
	rec := widgetstate.Record{
		ID:       "new",
		BoardID:  boardID,
		Type:     typ,
		Config:   def.Defaults,
		Position: pos,
		Size:     def.Size.DefaultSize(),
		Title:    title,
		Version:  1,
	}
	b.widgets[rec.ID] = rec
	return rec, nil
}

func (b *fakeBackend) PatchWidget(_ context.Context, id string, p widgetstate.Patch) (widgetstate.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.widgets[id]
	if !ok {
		return widgetstate.Record{}, common.ErrorNotFound
	}
	b.patches = append(b.patches, p)
	rec = p.ApplyTo(rec)
	rec.Version++
	b.widgets[id] = rec
	return rec, nil
}

func (b *fakeBackend) DeleteWidget(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	delete(b.widgets, id)
	return nil
}

func (b *fakeBackend) Watch(ctx context.Context, boardID string) (Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.watches
	b.watches++
	if i < len(b.streams) {
		return b.streams[i](ctx), nil
	}
	return &fakeStream{ctx: ctx, snaps: make(chan *client.Snapshot)}, nil
}

func (b *fakeBackend) Refresh(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshes++
	return nil
}

func (b *fakeBackend) Patches() []widgetstate.Patch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]widgetstate.Patch(nil), b.patches...)
}

func sortedIDs(m map[string]widgetstate.Record) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// manualClock fires timers only on Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at   time.Duration
	f    func()
	done bool
}

func (t *manualTimer) Stop() bool {
	active := !t.done
	t.done = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) widgetstate.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.done && t.at <= c.now {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func textRec(id string, x, y float64) widgetstate.Record {
	return widgetstate.Record{
		ID:       id,
		BoardID:  "b1",
		Type:     widgets.TypeText,
		Config:   map[string]any{"text": "hi", "fontScale": 1.0, "align": "left"},
		Position: geom.Point{X: x, Y: y},
		Size:     geom.Size{Width: 200, Height: 100},
		Version:  1,
	}
}

func taskRec(id string) widgetstate.Record {
	return widgetstate.Record{
		ID:      id,
		BoardID: "b1",
		Type:    widgets.TypeTask,
		Config: map[string]any{
			"title":    "Tasks",
			"hideDone": false,
			"items": []any{
				map[string]any{"id": "t1", "text": "ship", "done": false},
			},
		},
		Size:    geom.Size{Width: 280, Height: 320},
		Version: 1,
	}
}
