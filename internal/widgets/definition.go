// Package widgets is the registry of widget types that can be placed on a
// board. A Registry is an immutable table built once at startup and passed to
// whoever needs it; there is no package-level global.
package widgets

import (
	"math"

	"github.com/dmitrijs2005/repoboard/internal/geom"
)

// Render controls how the client frames a widget body.
type Render string

const (
	// RenderCard wraps the body in the standard frame with title bar.
	RenderCard Render = "card"
	// RenderRaw draws the body unstyled.
	RenderRaw Render = "raw"
)

// Kind tags a configuration field. The set is closed; every switch over Kind
// must handle all of them.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBoolean    Kind = "boolean"
	KindSelect     Kind = "select"
	KindRepository Kind = "repository"
	KindList       Kind = "list"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one user-editable configuration value.
//
// Min and Max bound numbers, string length or list length depending on Kind.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Options  []Option `json:"options,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// Control names the form control used to edit the field.
func (f Field) Control() string {
	switch f.Kind {
	case KindString:
		return "text-input"
	case KindNumber:
		return "number-input"
	case KindBoolean:
		return "checkbox"
	case KindSelect:
		return "select"
	case KindRepository:
		return "repository-picker"
	case KindList:
		return "list-editor"
	}
	return "unsupported"
}

// SizeBounds limits widget dimensions. Min is mandatory; Max and Default are
// optional and fall back to unbounded and Min respectively.
type SizeBounds struct {
	Min     geom.Size  `json:"min"`
	Max     *geom.Size `json:"max,omitempty"`
	Default *geom.Size `json:"default,omitempty"`
}

// DefaultSize returns the initial size for new widgets.
func (b SizeBounds) DefaultSize() geom.Size {
	if b.Default != nil {
		return *b.Default
	}
	return b.Min
}

// MaxOrInf returns Max, or +Inf in both dimensions when unset.
func (b SizeBounds) MaxOrInf() geom.Size {
	if b.Max != nil {
		return *b.Max
	}
	return geom.Size{Width: math.Inf(1), Height: math.Inf(1)}
}

// Clamp limits s to the bounds.
func (b SizeBounds) Clamp(s geom.Size) geom.Size {
	max := b.MaxOrInf()
	return geom.Size{
		Width:  math.Min(math.Max(s.Width, b.Min.Width), max.Width),
		Height: math.Min(math.Max(s.Height, b.Min.Height), max.Height),
	}
}

// Definition is the static descriptor of a widget type.
//
// Schema lists the fields edited through the configuration form. State holds
// raw JSON Schema fragments for config keys the widget manages itself (for
// example the task list) and that never appear in the form.
type Definition struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Description      string                    `json:"description"`
	Category         string                    `json:"category"`
	Icon             string                    `json:"icon"`
	Component        string                    `json:"component"`
	PreviewComponent string                    `json:"previewComponent,omitempty"`
	OverlayComponent string                    `json:"overlayComponent,omitempty"`
	Schema           []Field                   `json:"schema"`
	State            map[string]map[string]any `json:"state,omitempty"`
	Defaults         map[string]any            `json:"defaults"`
	Size             SizeBounds                `json:"size"`
	Render           Render                    `json:"render"`
}

// Preview returns the component used in the widget picker.
func (d Definition) Preview() string {
	if d.PreviewComponent != "" {
		return d.PreviewComponent
	}
	return d.Component
}

// Field returns the schema field with the given name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Schema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UnknownType is the ID of the fallback definition.
const UnknownType = "unknown"

// Unknown is the definition used for persisted widgets whose type is no
// longer registered. It has no schema and is always deletable.
func Unknown() Definition {
	return Definition{
		ID:          UnknownType,
		Name:        "Unknown widget",
		Description: "This widget type is no longer available. It is safe to delete.",
		Category:    "system",
		Icon:        "question",
		Component:   "UnknownWidget",
		Defaults:    map[string]any{},
		Size:        SizeBounds{Min: geom.Size{Width: 120, Height: 80}},
		Render:      RenderCard,
	}
}

// Resolution is the result of resolving a persisted widget type. Known is
// false when the type is not registered; Definition is then Unknown().
type Resolution struct {
	Type       string
	Definition Definition
	Known      bool
	Deletable  bool
}
