package grpc

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"google.golang.org/grpc"
)

// BoardServiceServer is the server side of api.ServiceName.
type BoardServiceServer interface {
	Ping(context.Context, *api.Empty) (*api.PingResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.LoginResponse, error)
	RefreshToken(context.Context, *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error)
	Me(context.Context, *api.Empty) (*api.User, error)
	ListWidgetTypes(context.Context, *api.ListWidgetTypesRequest) (*api.ListWidgetTypesResponse, error)

	CreateBoard(context.Context, *api.CreateBoardRequest) (*api.Board, error)
	GetBoard(context.Context, *api.GetBoardRequest) (*api.Board, error)
	GetBoardByRepo(context.Context, *api.GetBoardByRepoRequest) (*api.Board, error)
	ListBoards(context.Context, *api.ListBoardsRequest) (*api.ListBoardsResponse, error)
	UpdateBoard(context.Context, *api.UpdateBoardRequest) (*api.Board, error)

	CreateWidget(context.Context, *api.CreateWidgetRequest) (*api.Widget, error)
	ListWidgets(context.Context, *api.ListWidgetsRequest) (*api.ListWidgetsResponse, error)
	PatchWidget(context.Context, *api.PatchWidgetRequest) (*api.Widget, error)
	DeleteWidget(context.Context, *api.DeleteWidgetRequest) (*api.Empty, error)

	Vote(context.Context, *api.VoteRequest) (*api.PollResults, error)
	PollResults(context.Context, *api.WidgetRequest) (*api.PollResults, error)
	AddComment(context.Context, *api.AddCommentRequest) (*api.Comment, error)
	ListComments(context.Context, *api.ListCommentsRequest) (*api.ListCommentsResponse, error)
	DeleteComment(context.Context, *api.DeleteCommentRequest) (*api.Empty, error)
	SetPin(context.Context, *api.SetPinRequest) (*api.Pin, error)
	ListPins(context.Context, *api.WidgetRequest) (*api.ListPinsResponse, error)
	RemovePin(context.Context, *api.WidgetRequest) (*api.Empty, error)
	RequestImageUpload(context.Context, *api.RequestImageUploadRequest) (*api.ImageUploadTicket, error)
	ConfirmImageUpload(context.Context, *api.ConfirmImageUploadRequest) (*api.ImageAsset, error)
	ImageURL(context.Context, *api.WidgetRequest) (*api.ImageURLResponse, error)

	StarCount(context.Context, *api.StarCountRequest) (*api.StarCountResponse, error)
	ListRepos(context.Context, *api.Empty) (*api.ListReposResponse, error)
	CanWrite(context.Context, *api.CanWriteRequest) (*api.CanWriteResponse, error)

	WatchBoard(*api.WatchBoardRequest, grpc.ServerStreamingServer[api.BoardSnapshot]) error
}

// unary builds the method descriptor of one request/response call.
func unary[Req, Resp any](name string, call func(BoardServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BoardServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchBoardHandler(srv any, stream grpc.ServerStream) error {
	in := new(api.WatchBoardRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BoardServiceServer).WatchBoard(in, &grpc.GenericServerStream[api.WatchBoardRequest, api.BoardSnapshot]{ServerStream: stream})
}

// ServiceDesc describes api.ServiceName for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*BoardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodPing, BoardServiceServer.Ping),
		unary(api.MethodLogin, BoardServiceServer.Login),
		unary(api.MethodRefreshToken, BoardServiceServer.RefreshToken),
		unary(api.MethodMe, BoardServiceServer.Me),
		unary(api.MethodListWidgetTypes, BoardServiceServer.ListWidgetTypes),
		unary(api.MethodCreateBoard, BoardServiceServer.CreateBoard),
		unary(api.MethodGetBoard, BoardServiceServer.GetBoard),
		unary(api.MethodGetBoardByRepo, BoardServiceServer.GetBoardByRepo),
		unary(api.MethodListBoards, BoardServiceServer.ListBoards),
		unary(api.MethodUpdateBoard, BoardServiceServer.UpdateBoard),
		unary(api.MethodCreateWidget, BoardServiceServer.CreateWidget),
		unary(api.MethodListWidgets, BoardServiceServer.ListWidgets),
		unary(api.MethodPatchWidget, BoardServiceServer.PatchWidget),
		unary(api.MethodDeleteWidget, BoardServiceServer.DeleteWidget),
		unary(api.MethodVote, BoardServiceServer.Vote),
		unary(api.MethodPollResults, BoardServiceServer.PollResults),
		unary(api.MethodAddComment, BoardServiceServer.AddComment),
		unary(api.MethodListComments, BoardServiceServer.ListComments),
		unary(api.MethodDeleteComment, BoardServiceServer.DeleteComment),
		unary(api.MethodSetPin, BoardServiceServer.SetPin),
		unary(api.MethodListPins, BoardServiceServer.ListPins),
		unary(api.MethodRemovePin, BoardServiceServer.RemovePin),
		unary(api.MethodRequestImageUpload, BoardServiceServer.RequestImageUpload),
		unary(api.MethodConfirmImageUpload, BoardServiceServer.ConfirmImageUpload),
		unary(api.MethodImageURL, BoardServiceServer.ImageURL),
		unary(api.MethodStarCount, BoardServiceServer.StarCount),
		unary(api.MethodListRepos, BoardServiceServer.ListRepos),
		unary(api.MethodCanWrite, BoardServiceServer.CanWrite),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    api.MethodWatchBoard,
			Handler:       watchBoardHandler,
			ServerStreams: true,
		},
	},
	Metadata: "repoboard/v1/board.json",
}
