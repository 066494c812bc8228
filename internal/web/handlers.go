package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hostfleet/csvimport/internal/core"
)

// handleUpload receives the CSV file (multipart field "file") and opens a
// new import session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+4096) // slack for multipart framing

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, uploadErrFor(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, &core.UploadError{Code: core.UploadErrNoFile, Detail: err.Error()})
		return
	}
	defer file.Close()

	sessionID, err := s.service.Upload(header.Filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": sessionID})
}

// uploadErrFor classifies a multipart parse failure.
func uploadErrFor(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return &core.UploadError{Code: core.UploadErrTooLarge, Detail: err.Error()}
	}
	return &core.UploadError{Code: core.UploadErrPartial, Detail: err.Error()}
}

// handleValidate runs the parse step and returns row count plus per-row
// diagnostics.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := s.service.Validate(sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rowCount":  len(result.Hosts),
		"rowErrors": result.RowErrors,
	})
}

// handleRun executes the import step and returns the per-row results.
// Context errors are not failures: the run stopped early and the partial
// results are still worth returning.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	results, err := s.service.Run(r.Context(), sessionID)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cancelled": err != nil,
		"results":   results,
	})
}

// handleStatus returns a snapshot of the session.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := s.service.Status(sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleCancel aborts the session and removes its uploaded file.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.service.Cancel(sessionID); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
