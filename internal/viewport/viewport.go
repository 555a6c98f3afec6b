// Package viewport converts between screen space and board world space for
// one canvas view and computes fit-to-content framing.
//
// world = screen/zoom - pan; screen = (world + pan) * zoom.
package viewport

import (
	"math"

	"github.com/dmitrijs2005/repoboard/internal/geom"
)

const (
	MinZoom     = 0.1
	MaxZoom     = 3.0
	DefaultZoom = 1.0

	// FitMargin is the world-space padding added around content by FitToContent.
	FitMargin = 50.0
)

// Viewport is ephemeral per-view state. It is not safe for concurrent use.
type Viewport struct {
	pan     geom.Point
	zoom    float64
	width   float64
	height  float64
	touched bool
	fitted  bool
}

// New returns a viewport of the given pixel size at the default position.
func New(width, height float64) *Viewport {
	return &Viewport{zoom: DefaultZoom, width: width, height: height}
}

// Pan returns the current offset in world units.
func (v *Viewport) Pan() geom.Point { return v.pan }

// Zoom returns the current scale factor, always within [MinZoom, MaxZoom].
func (v *Viewport) Zoom() float64 { return v.zoom }

// Size returns the viewport dimensions in pixels.
func (v *Viewport) Size() geom.Size { return geom.Size{Width: v.width, Height: v.height} }

// Touched reports whether pan or zoom has been changed since creation.
func (v *Viewport) Touched() bool { return v.touched }

// Resize updates the pixel dimensions. It does not count as a user change.
func (v *Viewport) Resize(width, height float64) {
	v.width = width
	v.height = height
}

// Center returns the viewport centre in screen space.
func (v *Viewport) Center() geom.Point {
	return geom.Point{X: v.width / 2, Y: v.height / 2}
}

// ScreenToWorld maps a point in screen pixels to world coordinates:
// world = screen/zoom - pan.
func (v *Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: p.X/v.zoom - v.pan.X, Y: p.Y/v.zoom - v.pan.Y}
}

// WorldToScreen is the inverse of ScreenToWorld: screen = (world + pan) * zoom.
func (v *Viewport) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: (p.X + v.pan.X) * v.zoom, Y: (p.Y + v.pan.Y) * v.zoom}
}

// WorldRectToScreen maps a world rectangle to screen space.
func (v *Viewport) WorldRectToScreen(r geom.Rect) geom.Rect {
	tl := v.WorldToScreen(geom.Point{X: r.X, Y: r.Y})
	return geom.Rect{X: tl.X, Y: tl.Y, Width: r.Width * v.zoom, Height: r.Height * v.zoom}
}

// VisibleWorldRect returns the part of the world currently on screen.
func (v *Viewport) VisibleWorldRect() geom.Rect {
	tl := v.ScreenToWorld(geom.Point{})
	return geom.Rect{X: tl.X, Y: tl.Y, Width: v.width / v.zoom, Height: v.height / v.zoom}
}

// PanBy translates the pan offset by (dx, dy) world units. No clamping.
func (v *Viewport) PanBy(dx, dy float64) {
	v.pan.X += dx
	v.pan.Y += dy
	v.touched = true
}

// ZoomBy changes the zoom by delta while keeping the world point under the
// screen anchor (ax, ay) fixed.
func (v *Viewport) ZoomBy(delta, ax, ay float64) {
	v.ZoomTo(v.zoom+delta, ax, ay)
}

// ZoomTo sets the zoom to value while keeping the world point under the
// screen anchor (ax, ay) fixed. Every zoom path goes through here.
func (v *Viewport) ZoomTo(value, ax, ay float64) {
	next := Clamp(value)
	anchor := v.ScreenToWorld(geom.Point{X: ax, Y: ay})
	v.zoom = next
	v.pan = geom.Point{X: ax/next - anchor.X, Y: ay/next - anchor.Y}
	v.touched = true
}

// Reset returns to zoom 1 and zero pan.
func (v *Viewport) Reset() {
	v.zoom = DefaultZoom
	v.pan = geom.Point{}
	v.touched = true
}

// FitToContent frames all rects with FitMargin so they are fully visible and
// centred. The zoom never exceeds 1 so small content is not blown up.
// It is a no-op for an empty slice or a zero-sized viewport.
func (v *Viewport) FitToContent(rects []geom.Rect) {
	box, ok := geom.Bounds(rects)
	if !ok || v.width <= 0 || v.height <= 0 {
		return
	}
	box = box.Inset(FitMargin)

	zoom := math.Min(v.width/box.Width, v.height/box.Height)
	zoom = Clamp(math.Min(zoom, DefaultZoom))

	c := box.Center()
	v.zoom = zoom
	v.pan = geom.Point{X: v.width/(2*zoom) - c.X, Y: v.height/(2*zoom) - c.Y}
}

// AutoFit runs FitToContent the first time it is called, and only when the
// user has not moved the viewport yet. Later calls do nothing so data
// refreshes never override manual pan or zoom.
func (v *Viewport) AutoFit(rects []geom.Rect) bool {
	if v.fitted {
		return false
	}
	v.fitted = true
	if v.touched || len(rects) == 0 {
		return false
	}
	v.FitToContent(rects)
	return true
}

// Clamp limits z to [MinZoom, MaxZoom].
func Clamp(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
