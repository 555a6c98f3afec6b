package models

import (
	"time"

	"github.com/dmitrijs2005/repoboard/internal/geom"
)

// Widget is one placed widget. Config is opaque to the store and validated
// against the widget registry by the service layer.
type Widget struct {
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

// WidgetPatch lists the fields to change; nil means unchanged.
type WidgetPatch struct {
	Position *geom.Point    `json:"position,omitempty"`
	Size     *geom.Size     `json:"size,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	Title    *string        `json:"title,omitempty"`
}

// Empty reports whether p changes nothing.
func (p WidgetPatch) Empty() bool {
	return p.Position == nil && p.Size == nil && p.Config == nil && p.Title == nil
}
