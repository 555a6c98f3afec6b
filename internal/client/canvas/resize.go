package canvas

import (
	"math"

	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

// Handle is one of the eight resize grips of a selected widget.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
)

// Handles lists all grips clockwise from the top-left corner.
func Handles() []Handle {
	return []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}
}

func (h Handle) west() bool  { return h == HandleNW || h == HandleW || h == HandleSW }
func (h Handle) east() bool  { return h == HandleNE || h == HandleE || h == HandleSE }
func (h Handle) north() bool { return h == HandleNW || h == HandleN || h == HandleNE }
func (h Handle) south() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// Cursor is the CSS cursor shown while hovering or dragging the grip.
func (h Handle) Cursor() string {
	switch h {
	case HandleNW, HandleSE:
		return "nwse-resize"
	case HandleNE, HandleSW:
		return "nesw-resize"
	case HandleN, HandleS:
		return "ns-resize"
	case HandleE, HandleW:
		return "ew-resize"
	}
	return "default"
}

// ResizeRect applies a world-space drag of (dx, dy) on handle h to a widget
// at pos with size s. Dimensions touched by the handle are clamped to
// bounds; the edge opposite the grip stays where it was.
func ResizeRect(h Handle, pos geom.Point, s geom.Size, dx, dy float64, bounds widgets.SizeBounds) (geom.Point, geom.Size) {
	max := bounds.MaxOrInf()
	clamp := func(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }

	np, ns := pos, s
	switch {
	case h.west():
		ns.Width = clamp(s.Width-dx, bounds.Min.Width, max.Width)
		np.X = pos.X + s.Width - ns.Width
	case h.east():
		ns.Width = clamp(s.Width+dx, bounds.Min.Width, max.Width)
	}
	switch {
	case h.north():
		ns.Height = clamp(s.Height-dy, bounds.Min.Height, max.Height)
		np.Y = pos.Y + s.Height - ns.Height
	case h.south():
		ns.Height = clamp(s.Height+dy, bounds.Min.Height, max.Height)
	}
	return np, ns
}
