package canvas

import "github.com/dmitrijs2005/repoboard/internal/geom"

// Mods is a bit set of held modifier keys.
type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Primary reports whether the platform zoom modifier (Ctrl or Cmd) is held.
func (m Mods) Primary() bool { return m&(ModCtrl|ModMeta) != 0 }

// WheelEvent is a scroll at screen position (X, Y).
type WheelEvent struct {
	DX, DY float64
	X, Y   float64
	Mods   Mods
}

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

type TargetKind int

const (
	TargetCanvas TargetKind = iota
	TargetWidget
	TargetHandle
)

// Target is what the pointer went down on.
type Target struct {
	Kind     TargetKind
	WidgetID string
	Handle   Handle
}

// PointerEvent is a mouse or pen event at screen position (X, Y).
type PointerEvent struct {
	Kind   PointerKind
	X, Y   float64
	Target Target
}

func (e PointerEvent) Point() geom.Point { return geom.Point{X: e.X, Y: e.Y} }

// KeyEvent uses DOM-style key names: "ArrowLeft", " ", "Escape", "h", "+".
type KeyEvent struct {
	Key  string
	Mods Mods
	Down bool
}

type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
)

// TouchEvent carries every finger currently on the surface, in screen space.
type TouchEvent struct {
	Kind   TouchKind
	Points []geom.Point
}
