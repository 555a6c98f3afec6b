package widgets

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/xeipuuv/gojsonschema"
)

// Registry maps widget type IDs to definitions. It is safe for concurrent
// reads and never changes after construction.
type Registry struct {
	defs       map[string]Definition
	order      []string
	categories []string
	schemas    map[string]*gojsonschema.Schema
}

// NewRegistry builds a registry from defs. Registration order is preserved
// by the List* methods.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:    make(map[string]Definition, len(defs)),
		schemas: make(map[string]*gojsonschema.Schema, len(defs)),
	}
	seenCat := map[string]bool{}

	for _, d := range defs {
		if d.ID == "" {
			return nil, errors.New("widget definition without id")
		}
		if d.ID == UnknownType {
			return nil, fmt.Errorf("widget id %q is reserved", d.ID)
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate widget id %q", d.ID)
		}
		if d.Size.Min.Width <= 0 || d.Size.Min.Height <= 0 {
			return nil, fmt.Errorf("widget %q: min size is required", d.ID)
		}
		if d.Render == "" {
			d.Render = RenderCard
		}
		if d.Defaults == nil {
			d.Defaults = map[string]any{}
		}

		schema, err := compile(d)
		if err != nil {
			return nil, fmt.Errorf("widget %q: %w", d.ID, err)
		}
		if err := validate(schema, d, d.Defaults); err != nil {
			return nil, fmt.Errorf("widget %q defaults: %w", d.ID, err)
		}

		r.defs[d.ID] = d
		r.schemas[d.ID] = schema
		r.order = append(r.order, d.ID)
		if !seenCat[d.Category] {
			seenCat[d.Category] = true
			r.categories = append(r.categories, d.Category)
		}
	}
	return r, nil
}

// Lookup returns the definition for typ.
func (r *Registry) Lookup(typ string) (Definition, bool) {
	d, ok := r.defs[typ]
	return d, ok
}

// Resolve never fails: unregistered types resolve to Unknown().
func (r *Registry) Resolve(typ string) Resolution {
	if d, ok := r.defs[typ]; ok {
		return Resolution{Type: typ, Definition: d, Known: true, Deletable: true}
	}
	return Resolution{Type: typ, Definition: Unknown(), Known: false, Deletable: true}
}

// ListAll returns every registered definition in registration order.
func (r *Registry) ListAll() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// ListByCategory returns the definitions of category in registration order,
// or nil when the category is unknown.
func (r *Registry) ListByCategory(category string) []Definition {
	var out []Definition
	for _, id := range r.order {
		if d := r.defs[id]; d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// ListCategories returns the distinct categories in the order they were first
// registered. The caller owns the returned slice.
func (r *Registry) ListCategories() []string {
	return append([]string(nil), r.categories...)
}

// ValidateConfig checks cfg against the schema of typ. Failures are returned
// as *common.ValidationError keyed by field name.
func (r *Registry) ValidateConfig(typ string, cfg map[string]any) error {
	d, ok := r.defs[typ]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrorUnknownWidgetType, typ)
	}
	return validate(r.schemas[typ], d, cfg)
}

// DefaultConfig returns a deep copy of the defaults of typ.
func (r *Registry) DefaultConfig(typ string) (map[string]any, error) {
	d, ok := r.defs[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrorUnknownWidgetType, typ)
	}
	return copyMap(d.Defaults), nil
}

// MergeDefaults returns the defaults of typ overlaid with the top-level keys
// of cfg. Neither input is modified.
func (r *Registry) MergeDefaults(typ string, cfg map[string]any) (map[string]any, error) {
	out, err := r.DefaultConfig(typ)
	if err != nil {
		return nil, err
	}
	for k, v := range cfg {
		out[k] = copyValue(v)
	}
	return out, nil
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
