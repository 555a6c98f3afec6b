package widgets

import "github.com/dmitrijs2005/repoboard/internal/geom"

// Built-in widget type IDs.
const (
	TypeStars     = "stars"
	TypePoll      = "poll"
	TypeGuestbook = "guestbook"
	TypeImage     = "image"
	TypeText      = "text"
	TypeMap       = "map"
	TypeTask      = "task"
)

const (
	CategoryRepository  = "repository"
	CategoryInteractive = "interactive"
	CategoryContent     = "content"
)

func num(v float64) *float64 { return &v }

func size(w, h float64) *geom.Size { return &geom.Size{Width: w, Height: h} }

// BuiltinDefinitions returns fresh copies of the built-in definitions.
func BuiltinDefinitions() []Definition {
	return []Definition{
		{
			ID:          TypeStars,
			Name:        "Stars",
			Description: "Live stargazer count of a repository.",
			Category:    CategoryRepository,
			Icon:        "star",
			Component:   "StarsWidget",
			Schema: []Field{
				{Name: "repo", Label: "Repository", Kind: KindRepository, Help: "Leave empty for this board's repository"},
				{Name: "label", Label: "Label", Kind: KindString, Max: num(40)},
			},
			Defaults: map[string]any{"repo": "", "label": "Stars"},
			Size:     SizeBounds{Min: geom.Size{Width: 160, Height: 100}, Max: size(480, 300), Default: size(200, 120)},
			Render:   RenderCard,
		},
		{
			ID:          TypePoll,
			Name:        "Poll",
			Description: "Ask a question; each signed-in user votes once.",
			Category:    CategoryInteractive,
			Icon:        "bar-chart",
			Component:   "PollWidget",
			Schema: []Field{
				{Name: "question", Label: "Question", Kind: KindString, Required: true, Max: num(200)},
				{Name: "options", Label: "Options", Kind: KindList, Required: true, Min: num(2), Max: num(10)},
				{Name: "showResults", Label: "Show results before voting", Kind: KindBoolean},
			},
			Defaults: map[string]any{
				"question":    "What should we build next?",
				"options":     []any{"Option A", "Option B"},
				"showResults": false,
			},
			Size:   SizeBounds{Min: geom.Size{Width: 240, Height: 200}, Max: size(640, 640), Default: size(300, 260)},
			Render: RenderCard,
		},
		{
			ID:          TypeGuestbook,
			Name:        "Guestbook",
			Description: "Visitors leave short messages.",
			Category:    CategoryInteractive,
			Icon:        "message-square",
			Component:   "GuestbookWidget",
			Schema: []Field{
				{Name: "prompt", Label: "Prompt", Kind: KindString, Max: num(120)},
				{Name: "pageSize", Label: "Comments per page", Kind: KindNumber, Min: num(1), Max: num(50)},
			},
			Defaults: map[string]any{"prompt": "Sign the guestbook!", "pageSize": 10},
			Size:     SizeBounds{Min: geom.Size{Width: 260, Height: 240}, Default: size(320, 360)},
			Render:   RenderCard,
		},
		{
			ID:               TypeImage,
			Name:             "Image",
			Description:      "An uploaded picture.",
			Category:         CategoryContent,
			Icon:             "image",
			Component:        "ImageWidget",
			OverlayComponent: "ImageUploadOverlay",
			Schema: []Field{
				{Name: "fit", Label: "Fit", Kind: KindSelect, Required: true, Options: []Option{
					{Value: "cover", Label: "Cover"},
					{Value: "contain", Label: "Contain"},
					{Value: "fill", Label: "Stretch"},
				}},
				{Name: "alt", Label: "Alt text", Kind: KindString, Max: num(200)},
				{Name: "caption", Label: "Caption", Kind: KindString, Max: num(200)},
			},
			Defaults: map[string]any{"fit": "cover", "alt": "", "caption": ""},
			Size:     SizeBounds{Min: geom.Size{Width: 80, Height: 80}, Max: size(1600, 1600), Default: size(320, 240)},
			Render:   RenderRaw,
		},
		{
			ID:          TypeText,
			Name:        "Text",
			Description: "Free text note.",
			Category:    CategoryContent,
			Icon:        "type",
			Component:   "TextWidget",
			Schema: []Field{
				{Name: "text", Label: "Text", Kind: KindString, Max: num(5000)},
				{Name: "fontScale", Label: "Font scale", Kind: KindNumber, Required: true, Min: num(0.5), Max: num(4)},
				{Name: "align", Label: "Alignment", Kind: KindSelect, Options: []Option{
					{Value: "left", Label: "Left"},
					{Value: "center", Label: "Center"},
					{Value: "right", Label: "Right"},
				}},
			},
			Defaults: map[string]any{"text": "", "fontScale": 1, "align": "left"},
			Size:     SizeBounds{Min: geom.Size{Width: 80, Height: 40}, Default: size(240, 120)},
			Render:   RenderRaw,
		},
		{
			ID:               TypeMap,
			Name:             "Map",
			Description:      "World map where each visitor can drop one pin.",
			Category:         CategoryInteractive,
			Icon:             "map-pin",
			Component:        "MapWidget",
			PreviewComponent: "MapPreview",
			Schema: []Field{
				{Name: "lat", Label: "Center latitude", Kind: KindNumber, Required: true, Min: num(-90), Max: num(90)},
				{Name: "lng", Label: "Center longitude", Kind: KindNumber, Required: true, Min: num(-180), Max: num(180)},
				{Name: "zoom", Label: "Zoom", Kind: KindNumber, Required: true, Min: num(1), Max: num(18)},
			},
			Defaults: map[string]any{"lat": 20, "lng": 0, "zoom": 2},
			Size:     SizeBounds{Min: geom.Size{Width: 300, Height: 220}, Max: size(1200, 900), Default: size(400, 300)},
			Render:   RenderCard,
		},
		{
			ID:          TypeTask,
			Name:        "Tasks",
			Description: "A shared checklist.",
			Category:    CategoryContent,
			Icon:        "check-square",
			Component:   "TaskWidget",
			Schema: []Field{
				{Name: "title", Label: "Title", Kind: KindString, Max: num(80)},
				{Name: "hideDone", Label: "Hide completed", Kind: KindBoolean},
			},
			State: map[string]map[string]any{
				"items": {
					"type":     "array",
					"maxItems": 200,
					"items": map[string]any{
						"type":     "object",
						"required": []any{"id", "text", "done"},
						"properties": map[string]any{
							"id":   map[string]any{"type": "string", "minLength": 1},
							"text": map[string]any{"type": "string", "maxLength": 500},
							"done": map[string]any{"type": "boolean"},
						},
					},
				},
			},
			Defaults: map[string]any{"title": "Tasks", "hideDone": false, "items": []any{}},
			Size:     SizeBounds{Min: geom.Size{Width: 220, Height: 160}, Default: size(280, 320)},
			Render:   RenderCard,
		},
	}
}

// Builtin returns a registry of the built-in widget types.
func Builtin() *Registry {
	r, err := NewRegistry(BuiltinDefinitions()...)
	if err != nil {
		panic("widgets: invalid builtin definitions: " + err.Error())
	}
	return r
}
