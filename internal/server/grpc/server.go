// Package grpc serves authkeeper.v1.AuthService.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/authkeeper/authkeeper/internal/api/authpb"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/server/httpapi"
)

type GRPCServer struct {
	address string
	auth    httpapi.Authenticator
	tokens  httpapi.TokenParser
	logger  logging.Logger
}

func NewGRPCServer(addr string, a httpapi.Authenticator, tp httpapi.TokenParser, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address: addr,
		auth:    a,
		tokens:  tp,
		logger:  l.With("module", "grpc_server"),
	}
}

// NewServer builds a *grpc.Server with the service and its interceptors
// registered but not yet serving.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	authpb.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil {
		return err
	}

	return nil
}
