// Package envelope defines the uniform result wrapper returned by every
// authentication layer together with the application error taxonomy and its
// mapping onto transport status codes.
package envelope

import "strconv"

// Code is an application error code. The numeric values are stable and
// travel on the wire in error payloads.
type Code int

const (
	None          Code = 0
	Validation    Code = 400
	Unauthorized  Code = 401
	NotFound      Code = 404
	Conflict      Code = 409
	ServerError   Code = 500
	DatabaseError Code = 1001

	PasswordInvalid   Code = 2001
	UserAlreadyExists Code = 2002
	UserNotFound      Code = 2003

	// Client-only codes. The server never emits them.
	TokenMissing Code = 3001
	TokenExpired Code = 3002
	LogicFailed  Code = 3003
	LoginFailed  Code = 3004
)

var codeNames = map[Code]string{
	None:              "None",
	Validation:        "Validation",
	Unauthorized:      "Unauthorized",
	NotFound:          "NotFound",
	Conflict:          "Conflict",
	ServerError:       "ServerError",
	DatabaseError:     "DatabaseError",
	PasswordInvalid:   "PasswordInvalid",
	UserAlreadyExists: "UserAlreadyExists",
	UserNotFound:      "UserNotFound",
	TokenMissing:      "TokenMissing",
	TokenExpired:      "TokenExpired",
	LogicFailed:       "LogicFailed",
	LoginFailed:       "LoginFailed",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Known reports whether c is one of the declared codes.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// FromInt converts a raw wire value into a Code. The boolean is false for
// values outside the taxonomy.
func FromInt(v int) (Code, bool) {
	c := Code(v)
	return c, c.Known()
}
