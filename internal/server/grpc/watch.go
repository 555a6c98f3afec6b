package grpc

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"google.golang.org/grpc"
)

// WatchBoard sends the board with all its widgets, then a fresh snapshot
// after each change. Events that queue up while a snapshot is built are
// folded into one snapshot marked Resync.
func (s *GRPCServer) WatchBoard(req *api.WatchBoardRequest, stream grpc.ServerStreamingServer[api.BoardSnapshot]) error {
	ctx := stream.Context()
	if req.BoardID == "" {
		return common.NewValidationError("boardId", "is required")
	}

	// subscribe before the first snapshot so no change falls in between
	ch, cancel := s.watcher.Subscribe(req.BoardID)
	defer cancel()

	snap, err := s.snapshot(ctx, req.BoardID)
	if err != nil {
		return err
	}
	if err := stream.Send(snap); err != nil {
		return err
	}

	s.logger.Debug(ctx, "Watching board", "board_id", req.BoardID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if drained(ch) > 0 {
				e = events.Event{BoardID: req.BoardID, Kind: events.Resync}
			}

			snap, err := s.snapshot(ctx, req.BoardID)
			if err != nil {
				return err
			}
			snap.Event = string(e.Kind)
			snap.WidgetID = e.WidgetID
			if err := stream.Send(snap); err != nil {
				return err
			}
		}
	}
}

// drained empties ch without blocking and returns how many events it held.
func drained(ch <-chan events.Event) int {
	n := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

func (s *GRPCServer) snapshot(ctx context.Context, boardID string) (*api.BoardSnapshot, error) {
	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	list, err := s.widgets.ListWidgets(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return &api.BoardSnapshot{Board: *toBoard(b), Widgets: toWidgets(list)}, nil
}
