package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Keys under which tokens are kept in a TokenStore.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// TokenStore persists the session tokens between runs.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Options configures NewGRPCClient. Zero values take the defaults.
type Options struct {
	Store      TokenStore
	HTTPClient *http.Client
	Logger     logging.Logger
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface
	store       TokenStore
	httpClient  *http.Client
	logger      logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	refreshes    singleflight.Group
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

// skipsToken lists the calls that authenticate by other means.
var skipsToken = map[string]bool{
	api.FullMethod(api.MethodLogin):        true,
	api.FullMethod(api.MethodRefreshToken): true,
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if skipsToken[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.Tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	if rerr := s.refresh(ctx, access); rerr != nil {
		return rerr
	}

	// tokens refreshed, retry once with the new access token
	access, _ = s.Tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := s.Tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

// NewGRPCClient prepares a client for endpointURL. The connection is
// established lazily on the first call.
func NewGRPCClient(endpointURL string, opts Options) (*GRPCClient, error) {
	c := newClient(endpointURL, opts)

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func newClient(endpointURL string, opts Options) *GRPCClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &GRPCClient{
		endpointURL: endpointURL,
		store:       opts.Store,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger.With("module", "grpc_client"),
	}
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Tokens returns the current access and refresh tokens.
func (s *GRPCClient) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// SignedIn reports whether the client holds a refresh token.
func (s *GRPCClient) SignedIn() bool {
	_, refresh := s.Tokens()
	return refresh != ""
}

func (s *GRPCClient) setTokens(ctx context.Context, access, refresh string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, keyAccessToken, access); err != nil {
		s.logger.Warn(ctx, "cannot store access token", "error", err)
	}
	if err := s.store.Set(ctx, keyRefreshToken, refresh); err != nil {
		s.logger.Warn(ctx, "cannot store refresh token", "error", err)
	}
}

// Resume loads tokens saved by an earlier session. It reports false when the
// store holds none.
func (s *GRPCClient) Resume(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	refresh, ok, err := s.store.Get(ctx, keyRefreshToken)
	if err != nil || !ok || refresh == "" {
		return false, err
	}
	access, _, err := s.store.Get(ctx, keyAccessToken)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()
	return true, nil
}

// Logout forgets the tokens, including stored ones.
func (s *GRPCClient) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, keyAccessToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, keyRefreshToken)
}

// Refresh rotates the token pair.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	access, _ := s.Tokens()
	return s.refresh(ctx, access)
}

// refresh rotates the tokens unless another call already replaced stale.
func (s *GRPCClient) refresh(ctx context.Context, stale string) error {
	_, err, _ := s.refreshes.Do("refresh", func() (any, error) {
		access, refresh := s.Tokens()
		if access != stale {
			return nil, nil
		}
		if refresh == "" {
			return nil, ErrUnauthorized
		}

		var resp api.RefreshTokenResponse
		if err := s.cc.Invoke(ctx, api.FullMethod(api.MethodRefreshToken), &api.RefreshTokenRequest{RefreshToken: refresh}, &resp); err != nil {
			return nil, mapError(err)
		}
		s.setTokens(ctx, resp.AccessToken, resp.RefreshToken)
		return nil, nil
	})
	return err
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	return mapError(s.cc.Invoke(ctx, api.FullMethod(method), req, resp))
}
