package models

import "time"

// PollVote is one user's choice on a poll widget; unique per (widget, user).
type PollVote struct {
	ID        string    `json:"id"`
	WidgetID  string    `json:"widgetId"`
	UserID    string    `json:"userId"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"createdAt"`
}

// PollResults aggregates votes per option.
type PollResults struct {
	WidgetID string           `json:"widgetId"`
	Counts   map[string]int64 `json:"counts"`
	Total    int64            `json:"total"`
	MyVote   string           `json:"myVote,omitempty"`
}

type GuestbookComment struct {
	ID        string    `json:"id"`
	WidgetID  string    `json:"widgetId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapPin is keyed by (widget, user); a new pin replaces the old one.
type MapPin struct {
	WidgetID  string    `json:"widgetId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Label     string    `json:"label,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	ImageStatusPending  = "pending"
	ImageStatusUploaded = "uploaded"
)

// ImageAsset is the metadata of the picture shown by an image widget. The
// bytes live in object storage under StorageKey.
type ImageAsset struct {
	WidgetID    string    `json:"widgetId"`
	StorageKey  string    `json:"storageKey"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
