package client

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/client/widgetstate"
	"google.golang.org/grpc"
)

var watchBoardDesc = grpc.StreamDesc{
	StreamName:    api.MethodWatchBoard,
	ServerStreams: true,
}

// Snapshot is one state of a watched board.
type Snapshot struct {
	Board    api.Board
	Widgets  []widgetstate.Record
	Event    string
	WidgetID string
}

// BoardWatch receives the snapshots of one board.
type BoardWatch struct {
	stream grpc.ServerStreamingClient[api.BoardSnapshot]
}

// WatchBoard opens a snapshot stream for boardID. Cancel ctx to stop it.
func (s *GRPCClient) WatchBoard(ctx context.Context, boardID string) (*BoardWatch, error) {
	access, _ := s.Tokens()
	cs, err := s.cc.NewStream(withAccessToken(ctx, access), &watchBoardDesc, api.FullMethod(api.MethodWatchBoard))
	if err != nil {
		return nil, mapError(err)
	}

	stream := &grpc.GenericClientStream[api.WatchBoardRequest, api.BoardSnapshot]{ClientStream: cs}
	if err := stream.SendMsg(&api.WatchBoardRequest{BoardID: boardID}); err != nil {
		return nil, mapError(err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, mapError(err)
	}
	return &BoardWatch{stream: stream}, nil
}

// Recv blocks for the next snapshot. It returns io.EOF when the server ends
// the stream; an expired access token matches common.ErrTokenExpired.
func (w *BoardWatch) Recv() (*Snapshot, error) {
	snap, err := w.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, mapError(err)
	}
	return &Snapshot{
		Board:    snap.Board,
		Widgets:  toRecords(snap.Widgets),
		Event:    snap.Event,
		WidgetID: snap.WidgetID,
	}, nil
}
