package widgets

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/xeipuuv/gojsonschema"
)

// rootField is how gojsonschema names the document root.
const rootField = "(root)"

// RepositoryPattern matches a GitHub "owner/name" full name.
const RepositoryPattern = `^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})/[A-Za-z0-9._-]{1,100}$`

// JSONSchema renders the definition as a JSON Schema document.
func (d Definition) JSONSchema() (map[string]any, error) {
	props := map[string]any{}
	var required []any

	for _, f := range d.Schema {
		if f.Name == "" {
			return nil, fmt.Errorf("field without name")
		}
		if _, dup := props[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		s, err := fieldSchema(f)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		props[f.Name] = s
		if f.Required {
			required = append(required, f.Name)
		}
	}
	for name, s := range d.State {
		if _, dup := props[name]; dup {
			return nil, fmt.Errorf("state key %q shadows a field", name)
		}
		props[name] = s
	}

	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc, nil
}

func fieldSchema(f Field) (map[string]any, error) {
	switch f.Kind {
	case KindString:
		s := map[string]any{"type": "string"}
		if f.Required {
			s["minLength"] = 1
		}
		if f.Min != nil {
			s["minLength"] = int(*f.Min)
		}
		if f.Max != nil {
			s["maxLength"] = int(*f.Max)
		}
		if f.Pattern != "" {
			s["pattern"] = f.Pattern
		}
		return s, nil
	case KindNumber:
		s := map[string]any{"type": "number"}
		if f.Min != nil {
			s["minimum"] = *f.Min
		}
		if f.Max != nil {
			s["maximum"] = *f.Max
		}
		return s, nil
	case KindBoolean:
		return map[string]any{"type": "boolean"}, nil
	case KindSelect:
		if len(f.Options) == 0 {
			return nil, fmt.Errorf("select without options")
		}
		enum := make([]any, 0, len(f.Options))
		for _, o := range f.Options {
			enum = append(enum, o.Value)
		}
		return map[string]any{"type": "string", "enum": enum}, nil
	case KindRepository:
		if f.Required {
			return map[string]any{"type": "string", "pattern": RepositoryPattern}, nil
		}
		// empty means "the board's own repository"
		return map[string]any{"type": "string", "pattern": "^$|" + RepositoryPattern}, nil
	case KindList:
		s := map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		}
		if f.Min != nil {
			s["minItems"] = int(*f.Min)
		}
		if f.Max != nil {
			s["maxItems"] = int(*f.Max)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported kind %q", f.Kind)
}

func compile(d Definition) (*gojsonschema.Schema, error) {
	doc, err := d.JSONSchema()
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
}

func validate(schema *gojsonschema.Schema, d Definition, cfg map[string]any) error {
	if cfg == nil {
		cfg = map[string]any{}
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if res.Valid() {
		return nil
	}

	verr := &common.ValidationError{}
	for _, e := range res.Errors() {
		field := e.Field()
		if e.Type() == "required" && field == rootField {
			if p, ok := e.Details()["property"].(string); ok {
				field = p
			}
		}
		// report list items against the list itself
		if i := strings.IndexByte(field, '.'); i > 0 {
			field = field[:i]
		}
		verr.Add(field, message(d, field, e))
	}
	return verr
}

func message(d Definition, field string, e gojsonschema.ResultError) string {
	f, ok := d.Field(field)
	switch {
	case e.Type() == "required" && ok:
		return "is required"
	case ok && f.Kind == KindRepository && e.Type() == "pattern":
		return "must be a repository in owner/name form"
	case ok && f.Kind == KindString && f.Required && e.Type() == "string_gte" && f.Min == nil:
		return "is required"
	}
	return e.Description()
}
