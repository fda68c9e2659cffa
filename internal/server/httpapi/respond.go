package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, r *http.Request, l logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Error(r.Context(), "write response", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

// writeResult writes data on success, or the error body with the status
// derived from the failure code.
func writeResult[T any](w http.ResponseWriter, r *http.Request, l logging.Logger, res envelope.Result[T]) {
	if res.Success {
		writeJSON(w, r, l, http.StatusOK, res.Data)
		return
	}
	writeError(w, r, l, res.Code, res.Message, res.Fields)
}

func writeError(w http.ResponseWriter, r *http.Request, l logging.Logger, code envelope.Code, msg string, fields []envelope.FieldError) {
	status := envelope.HTTPStatus(code)
	w.Header().Set("X-Error-Code", strconv.Itoa(int(code)))
	writeJSON(w, r, l, status, api.ErrorResponse{Error: msg, Code: code, Fields: fields})
}

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// Unknown fields are ignored.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
