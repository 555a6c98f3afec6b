package grpc

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/services"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	tokens, user, err := s.users.Login(ctx, req.GitHubToken)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Signed in", "login", user.Login)
	return &api.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: toUser(user)}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &api.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Me(ctx context.Context, req *api.Empty) (*api.User, error) {
	user, err := s.users.Me(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	out := toUser(user)
	return &out, nil
}

func (s *GRPCServer) ListWidgetTypes(ctx context.Context, req *api.ListWidgetTypesRequest) (*api.ListWidgetTypesResponse, error) {
	reg := s.widgets.Registry()
	resp := &api.ListWidgetTypesResponse{Categories: reg.ListCategories()}
	if req.Category != "" {
		resp.Types = reg.ListByCategory(req.Category)
	} else {
		resp.Types = reg.ListAll()
	}
	return resp, nil
}

func (s *GRPCServer) CreateBoard(ctx context.Context, req *api.CreateBoardRequest) (*api.Board, error) {
	b, err := s.boards.CreateBoard(ctx, userIDFromContext(ctx), req.Repo, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return toBoard(b), nil
}

func (s *GRPCServer) GetBoard(ctx context.Context, req *api.GetBoardRequest) (*api.Board, error) {
	b, err := s.boards.GetBoard(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toBoard(b), nil
}

func (s *GRPCServer) GetBoardByRepo(ctx context.Context, req *api.GetBoardByRepoRequest) (*api.Board, error) {
	b, err := s.boards.GetBoardByRepo(ctx, req.Repo)
	if err != nil {
		return nil, err
	}
	return toBoard(b), nil
}

func (s *GRPCServer) ListBoards(ctx context.Context, req *api.ListBoardsRequest) (*api.ListBoardsResponse, error) {
	list, err := s.boards.ListBoards(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	resp := &api.ListBoardsResponse{Boards: make([]api.Board, 0, len(list))}
	for _, b := range list {
		resp.Boards = append(resp.Boards, api.Board(*b))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateBoard(ctx context.Context, req *api.UpdateBoardRequest) (*api.Board, error) {
	b, err := s.boards.UpdateBoard(ctx, userIDFromContext(ctx), req.ID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return toBoard(b), nil
}

func (s *GRPCServer) CreateWidget(ctx context.Context, req *api.CreateWidgetRequest) (*api.Widget, error) {
	w, err := s.widgets.CreateWidget(ctx, userIDFromContext(ctx), req.BoardID, req.Type, req.Position, req.Title)
	if err != nil {
		return nil, err
	}
	return toWidget(w), nil
}

func (s *GRPCServer) ListWidgets(ctx context.Context, req *api.ListWidgetsRequest) (*api.ListWidgetsResponse, error) {
	list, err := s.widgets.ListWidgets(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	return &api.ListWidgetsResponse{Widgets: toWidgets(list)}, nil
}

func (s *GRPCServer) PatchWidget(ctx context.Context, req *api.PatchWidgetRequest) (*api.Widget, error) {
	w, err := s.widgets.PatchWidget(ctx, userIDFromContext(ctx), req.ID, models.WidgetPatch(req.Patch))
	if err != nil {
		return nil, err
	}
	return toWidget(w), nil
}

func (s *GRPCServer) DeleteWidget(ctx context.Context, req *api.DeleteWidgetRequest) (*api.Empty, error) {
	if err := s.widgets.DeleteWidget(ctx, userIDFromContext(ctx), req.ID); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Vote(ctx context.Context, req *api.VoteRequest) (*api.PollResults, error) {
	r, err := s.polls.Vote(ctx, userIDFromContext(ctx), req.WidgetID, req.Option)
	if err != nil {
		return nil, err
	}
	return toPollResults(r), nil
}

func (s *GRPCServer) PollResults(ctx context.Context, req *api.WidgetRequest) (*api.PollResults, error) {
	r, err := s.polls.Results(ctx, userIDFromContext(ctx), req.WidgetID)
	if err != nil {
		return nil, err
	}
	return toPollResults(r), nil
}

func (s *GRPCServer) AddComment(ctx context.Context, req *api.AddCommentRequest) (*api.Comment, error) {
	c, err := s.guestbook.AddComment(ctx, userIDFromContext(ctx), req.WidgetID, req.Body)
	if err != nil {
		return nil, err
	}
	out := api.Comment(*c)
	return &out, nil
}

func (s *GRPCServer) ListComments(ctx context.Context, req *api.ListCommentsRequest) (*api.ListCommentsResponse, error) {
	list, err := s.guestbook.ListComments(ctx, req.WidgetID, req.Before, req.Limit)
	if err != nil {
		return nil, err
	}

	resp := &api.ListCommentsResponse{Comments: make([]api.Comment, 0, len(list))}
	for _, c := range list {
		resp.Comments = append(resp.Comments, api.Comment(*c))
	}
	if n := len(list); n > 0 && n >= commentsPage(req.Limit) {
		resp.NextBefore = list[n-1].CreatedAt
	}
	return resp, nil
}

func commentsPage(limit int) int {
	switch {
	case limit <= 0:
		return services.DefaultCommentsPage
	case limit > services.MaxCommentsPage:
		return services.MaxCommentsPage
	}
	return limit
}

func (s *GRPCServer) DeleteComment(ctx context.Context, req *api.DeleteCommentRequest) (*api.Empty, error) {
	if err := s.guestbook.DeleteComment(ctx, userIDFromContext(ctx), req.ID); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) SetPin(ctx context.Context, req *api.SetPinRequest) (*api.Pin, error) {
	p, err := s.maps.SetPin(ctx, userIDFromContext(ctx), req.WidgetID, req.Lat, req.Lng, req.Label)
	if err != nil {
		return nil, err
	}
	out := toPin(p)
	return &out, nil
}

func (s *GRPCServer) ListPins(ctx context.Context, req *api.WidgetRequest) (*api.ListPinsResponse, error) {
	list, err := s.maps.ListPins(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}
	resp := &api.ListPinsResponse{Pins: make([]api.Pin, 0, len(list))}
	for _, p := range list {
		resp.Pins = append(resp.Pins, toPin(p))
	}
	return resp, nil
}

func (s *GRPCServer) RemovePin(ctx context.Context, req *api.WidgetRequest) (*api.Empty, error) {
	if err := s.maps.RemovePin(ctx, userIDFromContext(ctx), req.WidgetID); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) RequestImageUpload(ctx context.Context, req *api.RequestImageUploadRequest) (*api.ImageUploadTicket, error) {
	t, err := s.images.RequestUpload(ctx, userIDFromContext(ctx), req.WidgetID, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}
	return &api.ImageUploadTicket{StorageKey: t.StorageKey, URL: t.URL, ExpiresAt: t.ExpiresAt}, nil
}

func (s *GRPCServer) ConfirmImageUpload(ctx context.Context, req *api.ConfirmImageUploadRequest) (*api.ImageAsset, error) {
	a, err := s.images.ConfirmUpload(ctx, userIDFromContext(ctx), req.WidgetID, req.StorageKey)
	if err != nil {
		return nil, err
	}
	out := api.ImageAsset(*a)
	return &out, nil
}

func (s *GRPCServer) ImageURL(ctx context.Context, req *api.WidgetRequest) (*api.ImageURLResponse, error) {
	url, expires, err := s.images.URL(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}
	return &api.ImageURLResponse{URL: url, ExpiresAt: expires}, nil
}

func (s *GRPCServer) StarCount(ctx context.Context, req *api.StarCountRequest) (*api.StarCountResponse, error) {
	n, err := s.stars.Count(ctx, req.Repo)
	if err != nil {
		return nil, err
	}
	return &api.StarCountResponse{Repo: req.Repo, Stars: n}, nil
}

func (s *GRPCServer) ListRepos(ctx context.Context, req *api.Empty) (*api.ListReposResponse, error) {
	list, err := s.access.ListRepos(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	resp := &api.ListReposResponse{Repos: make([]api.Repo, 0, len(list))}
	for _, r := range list {
		resp.Repos = append(resp.Repos, api.Repo(*r))
	}
	return resp, nil
}

// CanWrite lets the client decide whether to offer editing on a board.
func (s *GRPCServer) CanWrite(ctx context.Context, req *api.CanWriteRequest) (*api.CanWriteResponse, error) {
	b, err := s.boards.GetBoard(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanWrite(ctx, userIDFromContext(ctx), b.RepoFullName)
	if err != nil {
		return nil, err
	}
	return &api.CanWriteResponse{CanWrite: ok}, nil
}
