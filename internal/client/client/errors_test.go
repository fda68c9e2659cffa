package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
)

func TestUnwrapLegacy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     envelope.Code
		msg      string
		wantCode envelope.Code
		wantMsg  string
	}{
		{"plain message untouched", envelope.Unauthorized, "nope", envelope.Unauthorized, "nope"},
		{"error and known code", envelope.Unauthorized, `{"error":"Invalid password","code":2001}`, envelope.PasswordInvalid, "Invalid password"},
		{"leading whitespace", envelope.Unauthorized, ` {"error":"x","code":2003}`, envelope.UserNotFound, "x"},
		{"unknown code keeps original", envelope.Conflict, `{"error":"x","code":12345}`, envelope.Conflict, "x"},
		{"none code ignored", envelope.NotFound, `{"error":"x","code":0}`, envelope.NotFound, "x"},
		{"string code ignored", envelope.NotFound, `{"error":"x","code":"2001"}`, envelope.NotFound, "x"},
		{"no error prop keeps message", envelope.ServerError, `{"code":1001}`, envelope.DatabaseError, `{"code":1001}`},
		{"invalid json untouched", envelope.ServerError, `{"error":`, envelope.ServerError, `{"error":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, msg := unwrapLegacy(tt.code, tt.msg)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestFailure_DropsFieldsOutsideValidation(t *testing.T) {
	t.Parallel()

	fields := []envelope.FieldError{{Field: "Username", Code: "Required", Message: "m"}}

	r := failure[api.UserDetail](api.ErrorResponse{Error: "x", Code: envelope.Conflict, Fields: fields})
	assert.Equal(t, envelope.Conflict, r.Code)
	assert.Empty(t, r.Fields)

	r = failure[api.UserDetail](api.ErrorResponse{Error: "x", Code: envelope.Validation, Fields: fields})
	assert.Equal(t, fields, r.Fields)
}
