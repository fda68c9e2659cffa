package authpb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
)

// ToStruct converts a JSON-tagged DTO into a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal dto: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("dto to struct: %w", err)
	}
	return s, nil
}

// FromStruct decodes s into the DTO pointed to by dst.
func FromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return fmt.Errorf("empty message")
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("struct to json: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("unmarshal dto: %w", err)
	}
	return nil
}

// GRPCCode maps an application code onto the closest gRPC status code.
func GRPCCode(c envelope.Code) codes.Code {
	switch c {
	case envelope.None:
		return codes.OK
	case envelope.Validation:
		return codes.InvalidArgument
	case envelope.NotFound, envelope.UserNotFound:
		return codes.NotFound
	case envelope.Unauthorized, envelope.PasswordInvalid, envelope.TokenMissing,
		envelope.TokenExpired, envelope.LogicFailed, envelope.LoginFailed:
		return codes.Unauthenticated
	case envelope.Conflict, envelope.UserAlreadyExists:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

// CodeForGRPC is the fallback when a status carries no detail.
func CodeForGRPC(c codes.Code) envelope.Code {
	switch c {
	case codes.OK:
		return envelope.None
	case codes.InvalidArgument:
		return envelope.Validation
	case codes.NotFound:
		return envelope.NotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		return envelope.Unauthorized
	case codes.AlreadyExists:
		return envelope.Conflict
	default:
		return envelope.ServerError
	}
}

// Error builds a status error whose detail is the ErrorResponse document.
func Error(code envelope.Code, msg string, fields []envelope.FieldError) error {
	st := status.New(GRPCCode(code), msg)
	detail, err := ToStruct(api.ErrorResponse{Error: msg, Code: code, Fields: fields})
	if err != nil {
		return st.Err()
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		st = withDetail
	}
	return st.Err()
}

// ResultError converts a failed result into a status error.
func ResultError[T any](r envelope.Result[T]) error {
	return Error(r.Code, r.Message, r.Fields)
}

// ParseError extracts the ErrorResponse carried by err. The boolean is false
// when err is not a status error or has no usable detail; resp then holds
// the status-derived code and message.
func ParseError(err error) (api.ErrorResponse, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return api.ErrorResponse{Error: err.Error(), Code: envelope.ServerError}, false
	}

	for _, d := range st.Details() {
		s, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		var resp api.ErrorResponse
		if FromStruct(s, &resp) == nil && resp.Code.Known() && resp.Code != envelope.None {
			return resp, true
		}
	}

	return api.ErrorResponse{Error: st.Message(), Code: CodeForGRPC(st.Code())}, false
}
