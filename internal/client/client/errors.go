package client

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
)

const (
	msgUnavailable = "Server unavailable"
	msgBadResponse = "Failed to deserialise response."
)

// unwrapLegacy handles servers that put a whole error document into the
// message. The embedded code is taken only when it is a declared failure
// code; otherwise code and msg are returned untouched apart from the text.
func unwrapLegacy(code envelope.Code, msg string) (envelope.Code, string) {
	raw := strings.TrimSpace(msg)
	if !strings.HasPrefix(raw, "{") || !gjson.Valid(raw) {
		return code, msg
	}

	if e := gjson.Get(raw, "error"); e.Type == gjson.String && e.Str != "" {
		msg = e.Str
	}
	if c := gjson.Get(raw, "code"); c.Type == gjson.Number {
		if known, ok := envelope.FromInt(int(c.Int())); ok && known != envelope.None {
			code = known
		}
	}
	return code, msg
}

// failure turns a decoded error document into a typed failed Result.
func failure[T any](resp api.ErrorResponse) envelope.Result[T] {
	code, msg := unwrapLegacy(resp.Code, resp.Error)
	r := envelope.Fail[T](code, msg)
	if code == envelope.Validation {
		r.Fields = resp.Fields
	}
	return r
}
