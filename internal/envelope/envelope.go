package envelope

import "strings"

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationMessage is the summary message attached to Validation failures.
const ValidationMessage = "One or more validation errors occurred"

// Result is the uniform success/data/error wrapper.
//
// Success is true exactly when Code is None and Message is empty. A failed
// Result never carries Data; Fields is only populated for Validation.
type Result[T any] struct {
	Success bool
	Data    T
	Code    Code
	Message string
	Fields  []FieldError
}

// OK wraps v in a successful Result.
func OK[T any](v T) Result[T] {
	return Result[T]{Success: true, Data: v, Code: None}
}

// Fail builds a failed Result. A None code is promoted to ServerError so the
// Success/Code invariant cannot be broken by callers.
func Fail[T any](code Code, msg string) Result[T] {
	if code == None {
		code = ServerError
	}
	if msg == "" {
		msg = "An error occurred"
	}
	return Result[T]{Code: code, Message: msg}
}

// Invalid builds a Validation failure carrying the individual field errors.
func Invalid[T any](fields []FieldError) Result[T] {
	r := Fail[T](Validation, ValidationMessage)
	r.Fields = fields
	return r
}

// Recast re-types a failed Result, preserving code, message and fields.
func Recast[T, U any](r Result[U]) Result[T] {
	if r.Success {
		return Fail[T](ServerError, "unexpected success")
	}
	return Result[T]{Code: r.Code, Message: r.Message, Fields: r.Fields}
}

// Messages flattens Message and the field messages, in that order.
func (r Result[T]) Messages() []string {
	if r.Success {
		return nil
	}
	if len(r.Fields) == 0 {
		return []string{r.Message}
	}
	out := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		out = append(out, f.Message)
	}
	return out
}

func (r Result[T]) String() string {
	if r.Success {
		return None.String()
	}
	if len(r.Fields) > 0 {
		return r.Code.String() + ": " + strings.Join(r.Messages(), "; ")
	}
	return r.Code.String() + ": " + r.Message
}
