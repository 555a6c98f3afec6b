package client

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/client/widgetstate"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/netx"
)

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if err := s.invoke(ctx, api.MethodPing, &api.Empty{}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Login exchanges a GitHub token for a repoboard session.
func (s *GRPCClient) Login(ctx context.Context, githubToken string) (*api.User, error) {
	var resp api.LoginResponse
	if err := s.invoke(ctx, api.MethodLogin, &api.LoginRequest{GitHubToken: githubToken}, &resp); err != nil {
		return nil, err
	}
	s.setTokens(ctx, resp.AccessToken, resp.RefreshToken)
	return &resp.User, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	var resp api.User
	if err := s.invoke(ctx, api.MethodMe, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListWidgetTypes(ctx context.Context, category string) (*api.ListWidgetTypesResponse, error) {
	var resp api.ListWidgetTypesResponse
	if err := s.invoke(ctx, api.MethodListWidgetTypes, &api.ListWidgetTypesRequest{Category: category}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) CreateBoard(ctx context.Context, repo, name, description string) (*api.Board, error) {
	var resp api.Board
	req := &api.CreateBoardRequest{Repo: repo, Name: name, Description: description}
	if err := s.invoke(ctx, api.MethodCreateBoard, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) GetBoard(ctx context.Context, id string) (*api.Board, error) {
	var resp api.Board
	if err := s.invoke(ctx, api.MethodGetBoard, &api.GetBoardRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) GetBoardByRepo(ctx context.Context, repo string) (*api.Board, error) {
	var resp api.Board
	if err := s.invoke(ctx, api.MethodGetBoardByRepo, &api.GetBoardByRepoRequest{Repo: repo}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListBoards(ctx context.Context, limit, offset int) ([]api.Board, error) {
	var resp api.ListBoardsResponse
	if err := s.invoke(ctx, api.MethodListBoards, &api.ListBoardsRequest{Limit: limit, Offset: offset}, &resp); err != nil {
		return nil, err
	}
	return resp.Boards, nil
}

func (s *GRPCClient) UpdateBoard(ctx context.Context, id, name, description string) (*api.Board, error) {
	var resp api.Board
	req := &api.UpdateBoardRequest{ID: id, Name: name, Description: description}
	if err := s.invoke(ctx, api.MethodUpdateBoard, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) CreateWidget(ctx context.Context, boardID, typ string, pos geom.Point, title string) (widgetstate.Record, error) {
	var resp api.Widget
	req := &api.CreateWidgetRequest{BoardID: boardID, Type: typ, Position: pos, Title: title}
	if err := s.invoke(ctx, api.MethodCreateWidget, req, &resp); err != nil {
		return widgetstate.Record{}, err
	}
	return widgetstate.Record(resp), nil
}

func (s *GRPCClient) ListWidgets(ctx context.Context, boardID string) ([]widgetstate.Record, error) {
	var resp api.ListWidgetsResponse
	if err := s.invoke(ctx, api.MethodListWidgets, &api.ListWidgetsRequest{BoardID: boardID}, &resp); err != nil {
		return nil, err
	}
	return toRecords(resp.Widgets), nil
}

// PatchWidget implements widgetstate.Persister.
func (s *GRPCClient) PatchWidget(ctx context.Context, id string, p widgetstate.Patch) (widgetstate.Record, error) {
	var resp api.Widget
	req := &api.PatchWidgetRequest{ID: id, Patch: api.WidgetPatch(p)}
	if err := s.invoke(ctx, api.MethodPatchWidget, req, &resp); err != nil {
		return widgetstate.Record{}, err
	}
	return widgetstate.Record(resp), nil
}

// DeleteWidget implements widgetstate.Persister.
func (s *GRPCClient) DeleteWidget(ctx context.Context, id string) error {
	return s.invoke(ctx, api.MethodDeleteWidget, &api.DeleteWidgetRequest{ID: id}, &api.Empty{})
}

func (s *GRPCClient) Vote(ctx context.Context, widgetID, option string) (*api.PollResults, error) {
	var resp api.PollResults
	if err := s.invoke(ctx, api.MethodVote, &api.VoteRequest{WidgetID: widgetID, Option: option}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) PollResults(ctx context.Context, widgetID string) (*api.PollResults, error) {
	var resp api.PollResults
	if err := s.invoke(ctx, api.MethodPollResults, &api.WidgetRequest{WidgetID: widgetID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) AddComment(ctx context.Context, widgetID, body string) (*api.Comment, error) {
	var resp api.Comment
	if err := s.invoke(ctx, api.MethodAddComment, &api.AddCommentRequest{WidgetID: widgetID, Body: body}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListComments returns one page, newest first. Pass the returned cursor as
// before to get the next page; a zero cursor means there is none.
func (s *GRPCClient) ListComments(ctx context.Context, widgetID string, before time.Time, limit int) ([]api.Comment, time.Time, error) {
	var resp api.ListCommentsResponse
	req := &api.ListCommentsRequest{WidgetID: widgetID, Before: before, Limit: limit}
	if err := s.invoke(ctx, api.MethodListComments, req, &resp); err != nil {
		return nil, time.Time{}, err
	}
	return resp.Comments, resp.NextBefore, nil
}

func (s *GRPCClient) DeleteComment(ctx context.Context, id string) error {
	return s.invoke(ctx, api.MethodDeleteComment, &api.DeleteCommentRequest{ID: id}, &api.Empty{})
}

func (s *GRPCClient) SetPin(ctx context.Context, widgetID string, lat, lng float64, label string) (*api.Pin, error) {
	var resp api.Pin
	req := &api.SetPinRequest{WidgetID: widgetID, Lat: lat, Lng: lng, Label: label}
	if err := s.invoke(ctx, api.MethodSetPin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListPins(ctx context.Context, widgetID string) ([]api.Pin, error) {
	var resp api.ListPinsResponse
	if err := s.invoke(ctx, api.MethodListPins, &api.WidgetRequest{WidgetID: widgetID}, &resp); err != nil {
		return nil, err
	}
	return resp.Pins, nil
}

func (s *GRPCClient) RemovePin(ctx context.Context, widgetID string) error {
	return s.invoke(ctx, api.MethodRemovePin, &api.WidgetRequest{WidgetID: widgetID}, &api.Empty{})
}

// UploadImage announces the image, PUTs the bytes to the presigned URL and
// confirms the upload.
func (s *GRPCClient) UploadImage(ctx context.Context, widgetID, contentType string, r io.Reader) (*api.ImageAsset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var ticket api.ImageUploadTicket
	req := &api.RequestImageUploadRequest{WidgetID: widgetID, ContentType: contentType, Size: int64(len(data))}
	if err := s.invoke(ctx, api.MethodRequestImageUpload, req, &ticket); err != nil {
		return nil, err
	}

	if err := netx.UploadToPresignedURL(ctx, s.httpClient, ticket.URL, contentType, data); err != nil {
		return nil, err
	}

	var asset api.ImageAsset
	confirm := &api.ConfirmImageUploadRequest{WidgetID: widgetID, StorageKey: ticket.StorageKey}
	if err := s.invoke(ctx, api.MethodConfirmImageUpload, confirm, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *GRPCClient) ImageURL(ctx context.Context, widgetID string) (string, time.Time, error) {
	var resp api.ImageURLResponse
	if err := s.invoke(ctx, api.MethodImageURL, &api.WidgetRequest{WidgetID: widgetID}, &resp); err != nil {
		return "", time.Time{}, err
	}
	return resp.URL, resp.ExpiresAt, nil
}

func (s *GRPCClient) StarCount(ctx context.Context, repo string) (int, error) {
	var resp api.StarCountResponse
	if err := s.invoke(ctx, api.MethodStarCount, &api.StarCountRequest{Repo: repo}, &resp); err != nil {
		return 0, err
	}
	return resp.Stars, nil
}

func (s *GRPCClient) ListRepos(ctx context.Context) ([]api.Repo, error) {
	var resp api.ListReposResponse
	if err := s.invoke(ctx, api.MethodListRepos, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Repos, nil
}

func (s *GRPCClient) CanWrite(ctx context.Context, boardID string) (bool, error) {
	var resp api.CanWriteResponse
	if err := s.invoke(ctx, api.MethodCanWrite, &api.CanWriteRequest{BoardID: boardID}, &resp); err != nil {
		return false, err
	}
	return resp.CanWrite, nil
}

func toRecords(ws []api.Widget) []widgetstate.Record {
	out := make([]widgetstate.Record, 0, len(ws))
	for _, w := range ws {
		out = append(out, widgetstate.Record(w))
	}
	return out
}
