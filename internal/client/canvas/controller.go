// Package canvas turns raw wheel, pointer, keyboard and touch input into
// pan, zoom, selection, drag and resize actions on one board view.
//
// The controller is single-threaded: call it from the UI event loop only.
package canvas

import (
	"github.com/dmitrijs2005/repoboard/internal/client/widgetstate"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/viewport"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

// Widget is the part of a widget provider the controller drives.
type Widget interface {
	View() widgetstate.Record
	Resolution() widgets.Resolution
	UpdatePosition(geom.Point)
	UpdateSize(geom.Size)
}

// Widgets looks up the widget providers of the board.
type Widgets interface {
	Widget(id string) (Widget, bool)
}

// WidgetsFunc adapts a function to Widgets.
type WidgetsFunc func(id string) (Widget, bool)

func (f WidgetsFunc) Widget(id string) (Widget, bool) { return f(id) }

// Options tunes input handling. Zero values take the defaults.
type Options struct {
	PanSpeed  float64
	KeyStep   float64
	ZoomStep  float64
	WheelZoom float64
}

const (
	DefaultPanSpeed  = 1.0
	DefaultKeyStep   = 50.0
	DefaultZoomStep  = 0.1
	DefaultWheelZoom = 0.002
)

type mode int

const (
	modeIdle mode = iota
	modePanning
	modeDragging
	modeResizing
	modeTouchPan
	modePinch
)

type gesture struct {
	widgetID  string
	handle    Handle
	start     geom.Point
	last      geom.Point
	startPos  geom.Point
	startSize geom.Size
	pos       geom.Point
	size      geom.Size
	spacePan  bool

	pinchDist float64
	pinchZoom float64
}

// Controller holds interaction state for one board view.
type Controller struct {
	vp       *viewport.Viewport
	widgets  Widgets
	opts     Options
	canWrite bool

	disabled  bool
	spaceHeld bool
	selected  string

	mode mode
	g    gesture
}

func NewController(vp *viewport.Viewport, ws Widgets, opts Options) *Controller {
	if opts.PanSpeed <= 0 {
		opts.PanSpeed = DefaultPanSpeed
	}
	if opts.KeyStep <= 0 {
		opts.KeyStep = DefaultKeyStep
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = DefaultZoomStep
	}
	if opts.WheelZoom <= 0 {
		opts.WheelZoom = DefaultWheelZoom
	}
	return &Controller{vp: vp, widgets: ws, opts: opts}
}

func (c *Controller) Viewport() *viewport.Viewport { return c.vp }

// SetDisabled turns every handler into a no-op, for example while a dialog
// is open. Disabling abandons any gesture in progress without committing it.
func (c *Controller) SetDisabled(v bool) {
	c.disabled = v
	if v {
		c.abandon()
		c.spaceHeld = false
	}
}

func (c *Controller) Disabled() bool { return c.disabled }

// SetCanWrite enables drag and resize for users with write access.
func (c *Controller) SetCanWrite(v bool) {
	c.canWrite = v
	if !v && (c.mode == modeDragging || c.mode == modeResizing) {
		c.abandon()
	}
}

func (c *Controller) Selected() string { return c.selected }

func (c *Controller) Select(id string) { c.selected = id }

func (c *Controller) Deselect() { c.selected = "" }

// Handles returns the resize grips to draw for widget id.
func (c *Controller) Handles(id string) []Handle {
	if !c.canWrite || id == "" || id != c.selected {
		return nil
	}
	return Handles()
}

// Resizing reports whether a resize gesture is active.
func (c *Controller) Resizing() bool { return c.mode == modeResizing }

// Dragging reports whether a widget drag is active.
func (c *Controller) Dragging() bool { return c.mode == modeDragging }

// Preview returns the uncommitted world rectangle of a widget being dragged
// or resized.
func (c *Controller) Preview(id string) (geom.Rect, bool) {
	if (c.mode != modeDragging && c.mode != modeResizing) || c.g.widgetID != id {
		return geom.Rect{}, false
	}
	return geom.RectOf(c.g.pos, c.g.size), true
}

// Cursor reports the pointer cursor for the current state.
func (c *Controller) Cursor() string {
	switch {
	case c.mode == modeResizing:
		return c.g.handle.Cursor()
	case c.mode == modePanning && c.g.spacePan:
		return "grabbing"
	case c.spaceHeld:
		return "grab"
	case c.mode == modeDragging:
		return "move"
	}
	return "default"
}

// HandleWheel pans, or zooms around the pointer when the primary modifier
// is held.
func (c *Controller) HandleWheel(e WheelEvent) bool {
	if c.disabled {
		return false
	}
	if e.Mods.Primary() {
		c.vp.ZoomBy(-e.DY*c.opts.WheelZoom, e.X, e.Y)
		return true
	}
	z := c.vp.Zoom()
	c.vp.PanBy(-e.DX*c.opts.PanSpeed/z, -e.DY*c.opts.PanSpeed/z)
	return true
}

// HandleKey processes a key press or release. It reports whether the event
// was consumed.
func (c *Controller) HandleKey(e KeyEvent) bool {
	if c.disabled {
		return false
	}
	if e.Key == " " {
		c.spaceHeld = e.Down
		return true
	}
	if !e.Down {
		return false
	}

	center := c.vp.Center()
	if e.Mods.Primary() {
		switch e.Key {
		case "+", "=":
			c.vp.ZoomBy(c.opts.ZoomStep, center.X, center.Y)
		case "-", "_":
			c.vp.ZoomBy(-c.opts.ZoomStep, center.X, center.Y)
		case "0":
			c.vp.ZoomTo(viewport.DefaultZoom, center.X, center.Y)
		default:
			return false
		}
		return true
	}

	step := c.opts.KeyStep / c.vp.Zoom()
	switch e.Key {
	case "ArrowLeft", "h":
		c.vp.PanBy(step, 0)
	case "ArrowRight", "l":
		c.vp.PanBy(-step, 0)
	case "ArrowUp", "k":
		c.vp.PanBy(0, step)
	case "ArrowDown", "j":
		c.vp.PanBy(0, -step)
	case "Escape":
		c.abandon()
		c.Deselect()
	default:
		return false
	}
	return true
}

// HandlePointer runs the select, pan, drag and resize state machine.
func (c *Controller) HandlePointer(e PointerEvent) bool {
	if c.disabled {
		return false
	}
	switch e.Kind {
	case PointerDown:
		return c.pointerDown(e)
	case PointerMove:
		return c.pointerMove(e)
	case PointerUp:
		return c.pointerUp()
	case PointerCancel:
		active := c.mode != modeIdle
		c.abandon()
		return active
	}
	return false
}

func (c *Controller) pointerDown(e PointerEvent) bool {
	if c.mode != modeIdle {
		return false
	}
	p := e.Point()

	if c.spaceHeld {
		c.begin(modePanning, gesture{start: p, last: p, spacePan: true})
		return true
	}

	switch e.Target.Kind {
	case TargetHandle:
		if !c.canWrite || e.Target.WidgetID != c.selected {
			return false
		}
		w, ok := c.widgets.Widget(e.Target.WidgetID)
		if !ok {
			return false
		}
		rec := w.View()
		c.begin(modeResizing, gesture{
			widgetID:  e.Target.WidgetID,
			handle:    e.Target.Handle,
			start:     p,
			last:      p,
			startPos:  rec.Position,
			startSize: rec.Size,
			pos:       rec.Position,
			size:      rec.Size,
		})
		return true

	case TargetWidget:
		w, ok := c.widgets.Widget(e.Target.WidgetID)
		if !ok {
			return false
		}
		c.Select(e.Target.WidgetID)
		if !c.canWrite {
			return true
		}
		rec := w.View()
		c.begin(modeDragging, gesture{
			widgetID:  e.Target.WidgetID,
			start:     p,
			last:      p,
			startPos:  rec.Position,
			startSize: rec.Size,
			pos:       rec.Position,
			size:      rec.Size,
		})
		return true

	default:
		c.Deselect()
		c.begin(modePanning, gesture{start: p, last: p})
		return true
	}
}

func (c *Controller) pointerMove(e PointerEvent) bool {
	p := e.Point()
	z := c.vp.Zoom()

	switch c.mode {
	case modePanning:
		d := p.Sub(c.g.last)
		c.vp.PanBy(d.X/z, d.Y/z)
		c.g.last = p
		return true

	case modeDragging:
		d := p.Sub(c.g.start)
		c.g.pos = geom.Point{X: c.g.startPos.X + d.X/z, Y: c.g.startPos.Y + d.Y/z}
		c.g.last = p
		return true

	case modeResizing:
		w, ok := c.widgets.Widget(c.g.widgetID)
		if !ok {
			c.abandon()
			return false
		}
		d := p.Sub(c.g.start)
		bounds := w.Resolution().Definition.Size
		c.g.pos, c.g.size = ResizeRect(c.g.handle, c.g.startPos, c.g.startSize, d.X/z, d.Y/z, bounds)
		c.g.last = p
		return true
	}
	return false
}

func (c *Controller) pointerUp() bool {
	g, m := c.g, c.mode
	c.mode, c.g = modeIdle, gesture{}

	switch m {
	case modeDragging:
		if g.pos != g.startPos {
			if w, ok := c.widgets.Widget(g.widgetID); ok {
				w.UpdatePosition(g.pos)
			}
		}
		return true

	case modeResizing:
		w, ok := c.widgets.Widget(g.widgetID)
		if !ok {
			return true
		}
		if g.size != g.startSize {
			w.UpdateSize(g.size)
		}
		if g.pos != g.startPos {
			w.UpdatePosition(g.pos)
		}
		return true

	case modePanning:
		return true
	}
	return false
}

// HandleTouch pans with one finger and pinch-zooms with two.
func (c *Controller) HandleTouch(e TouchEvent) bool {
	if c.disabled {
		return false
	}
	if c.mode == modeDragging || c.mode == modeResizing || c.mode == modePanning {
		return false
	}

	switch len(e.Points) {
	case 0:
		c.abandon()
		return e.Kind == TouchEnd
	case 1:
		p := e.Points[0]
		if c.mode != modeTouchPan || e.Kind == TouchStart {
			c.begin(modeTouchPan, gesture{start: p, last: p})
			return true
		}
		d := p.Sub(c.g.last)
		z := c.vp.Zoom()
		c.vp.PanBy(d.X/z, d.Y/z)
		c.g.last = p
		return true
	default:
		a, b := e.Points[0], e.Points[1]
		dist := a.Dist(b)
		if c.mode != modePinch || e.Kind == TouchStart {
			c.begin(modePinch, gesture{pinchDist: dist, pinchZoom: c.vp.Zoom()})
			return true
		}
		if c.g.pinchDist <= 0 {
			return true
		}
		mid := a.Mid(b)
		c.vp.ZoomTo(c.g.pinchZoom*dist/c.g.pinchDist, mid.X, mid.Y)
		return true
	}
}

func (c *Controller) begin(m mode, g gesture) {
	c.mode = m
	c.g = g
}

func (c *Controller) abandon() {
	c.mode = modeIdle
	c.g = gesture{}
}
