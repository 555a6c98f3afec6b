package api

import (
	"time"

	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type User struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type LoginRequest struct {
	GitHubToken string `json:"githubToken"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ListWidgetTypesRequest struct {
	Category string `json:"category,omitempty"`
}

type ListWidgetTypesResponse struct {
	Types      []widgets.Definition `json:"types"`
	Categories []string             `json:"categories"`
}

type Board struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RepoFullName string    `json:"repoFullName"`
	Description  string    `json:"description,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateBoardRequest struct {
	Repo        string `json:"repo"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type GetBoardRequest struct {
	ID string `json:"id"`
}

type GetBoardByRepoRequest struct {
	Repo string `json:"repo"`
}

type ListBoardsRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type ListBoardsResponse struct {
	Boards []Board `json:"boards"`
}

type UpdateBoardRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

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

// WidgetPatch lists the fields to change; null means unchanged. Config
// replaces the whole configuration.
type WidgetPatch struct {
	Position *geom.Point    `json:"position"`
	Size     *geom.Size     `json:"size"`
	Config   map[string]any `json:"config"`
	Title    *string        `json:"title"`
}

type CreateWidgetRequest struct {
	BoardID  string     `json:"boardId"`
	Type     string     `json:"type"`
	Position geom.Point `json:"position"`
	Title    string     `json:"title,omitempty"`
}

type GetWidgetRequest struct {
	ID string `json:"id"`
}

type ListWidgetsRequest struct {
	BoardID string `json:"boardId"`
}

type ListWidgetsResponse struct {
	Widgets []Widget `json:"widgets"`
}

type PatchWidgetRequest struct {
	ID    string      `json:"id"`
	Patch WidgetPatch `json:"patch"`
}

type DeleteWidgetRequest struct {
	ID string `json:"id"`
}

type VoteRequest struct {
	WidgetID string `json:"widgetId"`
	Option   string `json:"option"`
}

type WidgetRequest struct {
	WidgetID string `json:"widgetId"`
}

type PollResults struct {
	WidgetID string           `json:"widgetId"`
	Counts   map[string]int64 `json:"counts"`
	Total    int64            `json:"total"`
	MyVote   string           `json:"myVote,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	WidgetID  string    `json:"widgetId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type AddCommentRequest struct {
	WidgetID string `json:"widgetId"`
	Body     string `json:"body"`
}

type ListCommentsRequest struct {
	WidgetID string    `json:"widgetId"`
	Before   time.Time `json:"before,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

type ListCommentsResponse struct {
	Comments []Comment `json:"comments"`
	// NextBefore is the cursor of the following page; zero when this page
	// was not full.
	NextBefore time.Time `json:"nextBefore,omitempty"`
}

type DeleteCommentRequest struct {
	ID string `json:"id"`
}

type Pin struct {
	WidgetID  string    `json:"widgetId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Label     string    `json:"label,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SetPinRequest struct {
	WidgetID string  `json:"widgetId"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Label    string  `json:"label,omitempty"`
}

type ListPinsResponse struct {
	Pins []Pin `json:"pins"`
}

type RequestImageUploadRequest struct {
	WidgetID    string `json:"widgetId"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type ImageUploadTicket struct {
	StorageKey string    `json:"storageKey"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type ConfirmImageUploadRequest struct {
	WidgetID   string `json:"widgetId"`
	StorageKey string `json:"storageKey"`
}

type ImageAsset struct {
	WidgetID    string    `json:"widgetId"`
	StorageKey  string    `json:"storageKey"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ImageURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type StarCountRequest struct {
	Repo string `json:"repo"`
}

type StarCountResponse struct {
	Repo  string `json:"repo"`
	Stars int    `json:"stars"`
}

type Repo struct {
	FullName    string `json:"fullName"`
	Description string `json:"description,omitempty"`
	HTMLURL     string `json:"htmlUrl"`
	Stars       int    `json:"stars"`
	Private     bool   `json:"private"`
	CanWrite    bool   `json:"canWrite"`
}

type ListReposResponse struct {
	Repos []Repo `json:"repos"`
}

type CanWriteRequest struct {
	BoardID string `json:"boardId"`
}

type CanWriteResponse struct {
	CanWrite bool `json:"canWrite"`
}

type WatchBoardRequest struct {
	BoardID string `json:"boardId"`
}

// BoardSnapshot is the full state of a board, sent when a watch starts and
// again after every change. Event and WidgetID name the change that caused
// it; both are empty on the first snapshot.
type BoardSnapshot struct {
	Board    Board    `json:"board"`
	Widgets  []Widget `json:"widgets"`
	Event    string   `json:"event,omitempty"`
	WidgetID string   `json:"widgetId,omitempty"`
}
