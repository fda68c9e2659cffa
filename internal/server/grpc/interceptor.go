package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/authkeeper/authkeeper/internal/api/authpb"
	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/server/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// protected lists the methods that require an access token.
var protected = map[string]bool{
	authpb.MethodMe: true,
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protected[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, authpb.Error(envelope.TokenMissing, "Authentication token was not issued.", nil)
	}

	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, authpb.Error(envelope.TokenExpired, "Authentication token expired. Please log in again.", nil)
		}
		return nil, authpb.Error(envelope.Unauthorized, "Invalid token", nil)
	}

	return handler(context.WithValue(ctx, claimsKey, claims), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
