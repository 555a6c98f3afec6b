// Package widgetstate holds the per-widget client state: the last confirmed
// server record, an optimistic overlay of pending fields, and the debounced
// persistence that moves the overlay to the server.
package widgetstate

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/geom"
)

// Record is a widget as last seen from the server.
type Record struct {
	ID        string         `json:"id"`
	BoardID   string         `json:"boardId"`
	Type      string         `json:"type"`
	Config    map[string]any `json:"config"`
	Position  geom.Point     `json:"position"`
	Size      geom.Size      `json:"size"`
	Title     string         `json:"title,omitempty"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Rect returns the widget's world rectangle.
func (r Record) Rect() geom.Rect { return geom.RectOf(r.Position, r.Size) }

// Patch is a partial widget update. Nil fields are untouched. Config, when
// set, replaces the whole configuration.
type Patch struct {
	Position *geom.Point    `json:"position,omitempty"`
	Size     *geom.Size     `json:"size,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	Title    *string        `json:"title,omitempty"`
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Position == nil && p.Size == nil && p.Config == nil && p.Title == nil
}

// Merge returns p with the fields set in q taking precedence.
func (p Patch) Merge(q Patch) Patch {
	if q.Position != nil {
		p.Position = q.Position
	}
	if q.Size != nil {
		p.Size = q.Size
	}
	if q.Config != nil {
		p.Config = q.Config
	}
	if q.Title != nil {
		p.Title = q.Title
	}
	return p
}

// ApplyTo returns r with the fields of p written over it.
func (p Patch) ApplyTo(r Record) Record {
	if p.Position != nil {
		r.Position = *p.Position
	}
	if p.Size != nil {
		r.Size = *p.Size
	}
	if p.Config != nil {
		r.Config = p.Config
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	return r
}

// Reconcile merges a fresh server record into a widget that may have a
// pending overlay.
//
// The fresh record always becomes the confirmed value. Each pending field
// that equals its fresh counterpart is considered confirmed and dropped; a
// pending field that differs is kept so a value the user is still editing
// is not overwritten. The returned overlay is nil when nothing is left.
func Reconcile(confirmed Record, pending *Patch, fresh Record) (Record, *Patch) {
	if pending == nil {
		return fresh, nil
	}
	left := *pending
	if left.Position != nil && *left.Position == fresh.Position {
		left.Position = nil
	}
	if left.Size != nil && *left.Size == fresh.Size {
		left.Size = nil
	}
	if left.Config != nil && ConfigEqual(left.Config, fresh.Config) {
		left.Config = nil
	}
	if left.Title != nil && *left.Title == fresh.Title {
		left.Title = nil
	}
	if left.Empty() {
		return fresh, nil
	}
	return fresh, &left
}

// ConfigEqual compares two configurations by their JSON encoding, so that
// 1 and 1.0 are equal whichever side decoded them.
func ConfigEqual(a, b map[string]any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
