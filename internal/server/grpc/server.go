// Package grpc exposes the repoboard services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address   string
	users     UserService
	access    AccessService
	boards    BoardService
	widgets   WidgetService
	polls     PollService
	guestbook GuestbookService
	maps      MapService
	images    ImageService
	stars     StarsService
	watcher   Watcher
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer wires the handlers. m may be nil to run without metrics.
func NewGRPCServer(a string, l logging.Logger, svc Services, w Watcher, m *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		users:     svc.Users,
		access:    svc.Access,
		boards:    svc.Boards,
		widgets:   svc.Widgets,
		polls:     svc.Polls,
		guestbook: svc.Guestbook,
		maps:      svc.Maps,
		images:    svc.Images,
		stars:     svc.Stars,
		watcher:   w,
		metrics:   m,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	var unary []grpc.UnaryServerInterceptor
	var stream []grpc.StreamServerInterceptor
	if s.metrics != nil {
		unary = append(unary, s.metrics.UnaryInterceptor())
		stream = append(stream, s.metrics.StreamInterceptor())
	}
	unary = append(unary, s.errorInterceptor, s.accessTokenInterceptor)
	stream = append(stream, s.streamErrorInterceptor, s.streamAccessTokenInterceptor)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unary...), grpc.ChainStreamInterceptor(stream...))
	srv.RegisterService(&ServiceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
