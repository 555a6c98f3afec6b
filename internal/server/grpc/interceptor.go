package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

type tokenPolicy int

const (
	// tokenRequired is the default for every method not listed in policies.
	tokenRequired tokenPolicy = iota
	// tokenOptional methods serve anonymous readers; a token, when sent, must be valid.
	tokenOptional
	tokenIgnored
)

var policies = map[string]tokenPolicy{
	api.FullMethod(api.MethodPing):            tokenIgnored,
	api.FullMethod(api.MethodLogin):           tokenIgnored,
	api.FullMethod(api.MethodRefreshToken):    tokenIgnored,
	api.FullMethod(api.MethodListWidgetTypes): tokenIgnored,

	api.FullMethod(api.MethodGetBoard):       tokenOptional,
	api.FullMethod(api.MethodGetBoardByRepo): tokenOptional,
	api.FullMethod(api.MethodListBoards):     tokenOptional,
	api.FullMethod(api.MethodListWidgets):    tokenOptional,
	api.FullMethod(api.MethodPollResults):    tokenOptional,
	api.FullMethod(api.MethodListComments):   tokenOptional,
	api.FullMethod(api.MethodListPins):       tokenOptional,
	api.FullMethod(api.MethodImageURL):       tokenOptional,
	api.FullMethod(api.MethodStarCount):      tokenOptional,
	api.FullMethod(api.MethodCanWrite):       tokenOptional,
	api.FullMethod(api.MethodWatchBoard):     tokenOptional,
}

// userIDFromContext returns the authenticated user, or "" for anonymous calls.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func (s *GRPCServer) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	policy := policies[fullMethod]
	if policy == tokenIgnored {
		return ctx, nil
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		if policy == tokenOptional {
			return ctx, nil
		}
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return context.WithValue(ctx, userIDKey, userID), nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authedStream) Context() context.Context {
	return a.ctx
}

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}

func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, info.FullMethod, err)
	}
	return resp, nil
}

func (s *GRPCServer) streamErrorInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := handler(srv, ss); err != nil {
		return s.toStatus(ss.Context(), info.FullMethod, err)
	}
	return nil
}
