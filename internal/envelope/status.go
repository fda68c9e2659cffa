package envelope

import "net/http"

// HTTPStatus maps a code onto its transport status. It never looks at the
// message; unknown codes map to 500.
func HTTPStatus(c Code) int {
	switch c {
	case None:
		return http.StatusOK
	case Validation:
		return http.StatusBadRequest
	case NotFound, UserNotFound:
		return http.StatusNotFound
	case Unauthorized, PasswordInvalid,
		TokenMissing, TokenExpired, LogicFailed, LoginFailed:
		return http.StatusUnauthorized
	case Conflict, UserAlreadyExists:
		return http.StatusConflict
	case ServerError, DatabaseError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// CodeForStatus is the inverse used by clients that only have a status line.
func CodeForStatus(status int) Code {
	switch status {
	case http.StatusOK:
		return None
	case http.StatusBadRequest:
		return Validation
	case http.StatusUnauthorized:
		return Unauthorized
	case http.StatusNotFound:
		return NotFound
	case http.StatusConflict:
		return Conflict
	default:
		return ServerError
	}
}
