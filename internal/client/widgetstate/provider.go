package widgetstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

// DefaultDebounce is the persistence delay for continuous edits.
const DefaultDebounce = 400 * time.Millisecond

var (
	// ErrNotConfirmed is returned by Delete when the user declined.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrClosed is returned for mutations on a closed or deleted provider.
	ErrClosed = errors.New("widget provider closed")
)

// State is the synchronisation state of a widget.
type State int

const (
	// Synced means the view equals the last confirmed server value.
	Synced State = iota
	// OptimisticPending means local changes wait for or are in flight to the server.
	OptimisticPending
	// Reverted means the last write failed and local changes were dropped.
	Reverted
)

func (s State) String() string {
	switch s {
	case Synced:
		return "synced"
	case OptimisticPending:
		return "optimistic-pending"
	case Reverted:
		return "reverted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Persister writes widget changes to the server.
type Persister interface {
	PatchWidget(ctx context.Context, id string, p Patch) (Record, error)
	DeleteWidget(ctx context.Context, id string) error
}

// Notice describes a failed write for the user.
type Notice struct {
	WidgetID string
	Op       string
	Err      error
}

// Notifier surfaces notices without blocking the caller.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Options configures a Provider. Persister and Registry are required.
type Options struct {
	Persister    Persister
	Registry     *widgets.Registry
	Notifier     Notifier
	Logger       logging.Logger
	Clock        Clock
	Debounce     time.Duration
	OnOpenConfig func(Record)
}

// Provider owns the state of one widget instance for as long as it is shown.
// Methods are safe to call from the UI goroutine while debounced writes fire
// on timer goroutines.
type Provider struct {
	id   string
	opts Options
	log  logging.Logger
	res  widgets.Resolution

	mu        sync.Mutex
	confirmed Record
	pending   *Patch
	state     State
	inflight  int
	closed    bool
	deleting  bool

	// io serialises calls to the persister so a delete never overtakes a
	// write that is already in flight.
	io sync.Mutex

	geometry *Debouncer[Patch]
	config   *Debouncer[map[string]any]
}

// NewProvider starts tracking rec.
func NewProvider(rec Record, opts Options) *Provider {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Notice) {})
	}

	p := &Provider{
		id:        rec.ID,
		opts:      opts,
		log:       opts.Logger.With("module", "widgetstate", "widget_id", rec.ID),
		res:       opts.Registry.Resolve(rec.Type),
		confirmed: rec,
		state:     Synced,
	}
	p.geometry = NewDebouncer(opts.Clock, opts.Debounce, func(patch Patch) {
		_ = p.persist(context.Background(), "move", patch)
	})
	p.config = NewDebouncer(opts.Clock, opts.Debounce, func(cfg map[string]any) {
		_ = p.persist(context.Background(), "configure", Patch{Config: cfg})
	})
	return p
}

func (p *Provider) ID() string { return p.id }

// Resolution returns the widget definition, or the unknown fallback.
func (p *Provider) Resolution() widgets.Resolution { return p.res }

// View returns the record as the user should see it.
func (p *Provider) View() Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// Confirmed returns the last server-confirmed record.
func (p *Provider) Confirmed() Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.confirmed
}

func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// UpdatePosition moves the widget now and persists after the debounce window.
func (p *Provider) UpdatePosition(pos geom.Point) {
	p.scheduleGeometry(Patch{Position: &pos})
}

// UpdateSize resizes the widget, clamped to its bounds, and persists after
// the debounce window.
func (p *Provider) UpdateSize(s geom.Size) {
	s = p.res.Definition.Size.Clamp(s)
	p.scheduleGeometry(Patch{Size: &s})
}

// UpdateTitle renames the widget and persists immediately. The title is
// trimmed the same way the server stores it.
func (p *Provider) UpdateTitle(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	patch := Patch{Title: &title}
	if err := p.overlay(patch); err != nil {
		return err
	}
	return p.persist(ctx, "rename", patch)
}

// UpdateConfig validates cfg and persists it without delay. A debounced
// configuration change still waiting is superseded.
func (p *Provider) UpdateConfig(ctx context.Context, cfg map[string]any) error {
	if err := p.validate(cfg); err != nil {
		return err
	}
	p.config.Cancel()
	patch := Patch{Config: cfg}
	if err := p.overlay(patch); err != nil {
		return err
	}
	return p.persist(ctx, "configure", patch)
}

// UpdateConfigDebounced validates cfg, shows it now and persists it after the
// debounce window.
func (p *Provider) UpdateConfigDebounced(cfg map[string]any) error {
	if err := p.validate(cfg); err != nil {
		return err
	}
	if err := p.overlay(Patch{Config: cfg}); err != nil {
		return err
	}
	p.config.Schedule(cfg)
	return nil
}

// OpenConfig asks the surrounding UI to show the configuration surface.
func (p *Provider) OpenConfig() {
	if p.opts.OnOpenConfig != nil {
		p.opts.OnOpenConfig(p.View())
	}
}

// Delete asks confirm and, when accepted, flushes pending writes and then
// deletes the widget.
func (p *Provider) Delete(ctx context.Context, confirm func() bool) error {
	if p.isClosed() {
		return ErrClosed
	}
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	// a failed flush still lets the delete go ahead
	p.geometry.Flush()
	p.config.Flush()

	p.mu.Lock()
	p.deleting = true
	p.mu.Unlock()

	p.io.Lock()
	err := p.opts.Persister.DeleteWidget(ctx, p.id)
	p.io.Unlock()

	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		p.mu.Lock()
		p.deleting = false
		p.mu.Unlock()
		p.fail("delete", err)
		return err
	}

	p.mu.Lock()
	p.closed = true
	p.pending = nil
	p.state = Synced
	p.mu.Unlock()
	return nil
}

// Apply reconciles a fresh server snapshot. Snapshots older than the
// confirmed version are ignored.
func (p *Provider) Apply(fresh Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(fresh)
}

// Close discards pending debounced writes. Requests already in flight are
// left to finish.
func (p *Provider) Close() {
	p.geometry.Cancel()
	p.config.Cancel()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *Provider) scheduleGeometry(patch Patch) {
	if err := p.overlay(patch); err != nil {
		return
	}
	cur, _ := p.geometry.Pending()
	p.geometry.Schedule(cur.Merge(patch))
}

func (p *Provider) validate(cfg map[string]any) error {
	if !p.res.Known {
		return fmt.Errorf("%w: %s", common.ErrorUnknownWidgetType, p.res.Type)
	}
	return p.opts.Registry.ValidateConfig(p.res.Type, cfg)
}

func (p *Provider) overlay(patch Patch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.pending == nil {
		p.pending = &Patch{}
	}
	merged := p.pending.Merge(patch)
	p.pending = &merged
	p.state = OptimisticPending
	return nil
}

func (p *Provider) persist(ctx context.Context, op string, patch Patch) error {
	p.mu.Lock()
	p.inflight++
	p.mu.Unlock()

	p.io.Lock()
	rec, err := p.opts.Persister.PatchWidget(ctx, p.id, patch)
	p.io.Unlock()

	p.mu.Lock()
	p.inflight--
	if err == nil {
		p.applyLocked(rec)
		p.mu.Unlock()
		return nil
	}
	// a write that lost the race with our own delete has nothing to revert
	gone := (p.closed || p.deleting) && errors.Is(err, common.ErrorNotFound)
	p.mu.Unlock()

	if gone {
		p.log.Debug(ctx, "widget write after delete dropped", "op", op)
		return err
	}
	p.fail(op, err)
	return err
}

// fail drops every local change, including debounced writes not yet sent,
// and tells the user.
func (p *Provider) fail(op string, err error) {
	p.geometry.Cancel()
	p.config.Cancel()

	p.mu.Lock()
	p.pending = nil
	p.state = Reverted
	p.mu.Unlock()

	p.log.Warn(context.Background(), "widget write failed", "op", op, "error", err)
	p.opts.Notifier.Notify(Notice{WidgetID: p.id, Op: op, Err: err})
}

func (p *Provider) applyLocked(fresh Record) {
	if fresh.Version < p.confirmed.Version {
		return
	}
	p.confirmed, p.pending = Reconcile(p.confirmed, p.pending, fresh)

	_, geomPending := p.geometry.Pending()
	_, cfgPending := p.config.Pending()
	switch {
	case p.pending != nil || geomPending || cfgPending || p.inflight > 0:
		p.state = OptimisticPending
	case p.state == Reverted:
		// stays visible until the user interacts again
	default:
		p.state = Synced
	}
}

func (p *Provider) viewLocked() Record {
	if p.pending == nil {
		return p.confirmed
	}
	return p.pending.ApplyTo(p.confirmed)
}

func (p *Provider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
