package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with full technical detail server-side and returned to
// clients as user-friendly JSON messages with stable codes, mapped via
// core.MapError.

import (
	"errors"
	"net/http"

	"github.com/hostfleet/csvimport/internal/core"
	"github.com/hostfleet/csvimport/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	writeJSON(w, status, ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps error types to HTTP status codes.
func statusFor(err error) int {
	var uploadErr *core.UploadError
	if errors.As(err, &uploadErr) {
		if uploadErr.Code == core.UploadErrTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	}

	var fileErr *core.FileError
	if errors.As(err, &fileErr) {
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrWrongStep):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
