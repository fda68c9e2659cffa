package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/api/authpb"
	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
)

// GRPCClient talks to authkeeper.v1.AuthService.
type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      *authpb.AuthServiceClient
	token       TokenSource
	logger      logging.Logger
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if tok := s.token(); tok != "" {
		ctx = withAccessToken(ctx, tok)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL string, timeout time.Duration, token TokenSource, l logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	if token == nil {
		token = noToken
	}
	c := &GRPCClient{
		endpointURL: endpointURL,
		timeout:     timeout,
		token:       token,
		logger:      l.With("module", "grpc-client"),
	}

	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dial...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.client = authpb.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Register(ctx context.Context, username, password string) envelope.Result[api.AuthResponse] {
	req := api.RegisterRequest{Username: username, Password: password}
	return invoke[api.AuthResponse](ctx, s, "Register", req, s.client.Register)
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) envelope.Result[api.AuthResponse] {
	req := api.LoginRequest{Username: username, Password: password}
	return invoke[api.AuthResponse](ctx, s, "Login", req, s.client.Login)
}

func (s *GRPCClient) Me(ctx context.Context) envelope.Result[api.UserDetail] {
	return invoke[api.UserDetail](ctx, s, "Me", struct{}{}, s.client.Me)
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

type rpc func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func invoke[T any](ctx context.Context, s *GRPCClient, name string, req any, fn rpc) envelope.Result[T] {
	in, err := authpb.ToStruct(req)
	if err != nil {
		s.logger.Error(ctx, "encode request", "method", name, "error", err)
		return envelope.Fail[T](envelope.ServerError, "Failed to build request")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := fn(ctx, in)
	if err != nil {
		return rpcFailure[T](ctx, s.logger, name, err)
	}

	var data T
	if err := authpb.FromStruct(out, &data); err != nil {
		s.logger.Warn(ctx, "decode response", "method", name, "error", err)
		return envelope.Fail[T](envelope.ServerError, msgBadResponse)
	}
	return envelope.OK(data)
}

// rpcFailure decodes the status detail. Connectivity faults carry no
// detail and are reported as an unavailable server.
func rpcFailure[T any](ctx context.Context, l logging.Logger, name string, err error) envelope.Result[T] {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		l.Warn(ctx, "rpc failed", "method", name, "error", err)
		return envelope.Fail[T](envelope.ServerError, msgUnavailable)
	}

	resp, _ := authpb.ParseError(err)
	l.Warn(ctx, "rpc rejected", "method", name, "code", resp.Code.String())
	return failure[T](resp)
}
