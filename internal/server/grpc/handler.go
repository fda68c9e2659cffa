package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/api/authpb"
	"github.com/authkeeper/authkeeper/internal/envelope"
)

func reply[T any](r envelope.Result[T]) (*structpb.Struct, error) {
	if !r.Success {
		return nil, authpb.ResultError(r)
	}
	out, err := authpb.ToStruct(r.Data)
	if err != nil {
		return nil, authpb.Error(envelope.ServerError, "Failed to encode response", nil)
	}
	return out, nil
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.RegisterRequest
	if err := authpb.FromStruct(in, &req); err != nil {
		return nil, authpb.Error(envelope.Validation, "Malformed request body", nil)
	}
	return reply(s.auth.Register(ctx, req))
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.LoginRequest
	if err := authpb.FromStruct(in, &req); err != nil {
		return nil, authpb.Error(envelope.Validation, "Malformed request body", nil)
	}
	return reply(s.auth.Login(ctx, req))
}

// Me relies on accessTokenInterceptor having put the claims in ctx.
func (s *GRPCServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, authpb.Error(envelope.TokenMissing, "Authentication token was not issued.", nil)
	}

	r := s.auth.Lookup(ctx, claims.Name)
	if r.Success && r.Data.ID != claims.User().ID {
		return nil, authpb.Error(envelope.Unauthorized, "Invalid token", nil)
	}
	return reply(r)
}
