package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hostfleet/csvimport/internal/inventory"
	"github.com/hostfleet/csvimport/internal/schema"
)

// SessionMaxAge is how long finished or abandoned sessions are kept before
// the janitor removes them.
var SessionMaxAge = time.Hour

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ErrWrongStep is returned when a step is requested out of order.
var ErrWrongStep = errors.New("step not available in current session state")

// Step is the wizard stage a session is in.
type Step string

const (
	StepUploaded  Step = "uploaded"
	StepValidated Step = "validated"
	StepImported  Step = "imported"
	StepFailed    Step = "failed"
	StepCancelled Step = "cancelled"
)

// Options configures a Service.
type Options struct {
	TmpDir            string   // directory for uploaded files
	MaxFileSize       int64    // upload size cap in bytes
	AllowedExtensions []string // lower-case, with dot: ".csv"

	Separator  byte
	MaxLineLen int
	Registry   *schema.Registry
}

// Service drives the three-step import wizard: upload, validate, import.
// All state is per session; nothing is shared between imports except the
// inventory connection.
type Service struct {
	inv    inventory.Service
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	ID        string
	FileName  string
	Path      string
	Step      Step
	CreatedAt time.Time

	Hosts     []ValidatedHost
	RowErrors []RowError
	Results   []ImportResult
	FileErr   string

	cancel context.CancelFunc
}

// SessionStatus is a caller-facing snapshot of one session.
type SessionStatus struct {
	ID        string         `json:"id"`
	FileName  string         `json:"fileName"`
	Step      Step           `json:"step"`
	RowCount  int            `json:"rowCount"`
	RowErrors []RowError     `json:"rowErrors,omitempty"`
	Results   []ImportResult `json:"results,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// NewService creates the wizard service.
func NewService(inv inventory.Service, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = schema.Default()
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = []string{".csv", ".txt"}
	}
	return &Service{
		inv:      inv,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Upload receives the file contents, stores them in a temp file and opens a
// new session. Errors are *UploadError with a stable code.
func (s *Service) Upload(fileName string, r io.Reader) (string, error) {
	if fileName == "" {
		return "", &UploadError{Code: UploadErrNoSelection}
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, e := range s.opts.AllowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", &UploadError{Code: UploadErrBadExtension, Detail: ext}
	}

	if s.opts.TmpDir != "" {
		if err := os.MkdirAll(s.opts.TmpDir, 0o755); err != nil {
			return "", &UploadError{Code: UploadErrNoTmpDir, Detail: err.Error()}
		}
	}
	f, err := os.CreateTemp(s.opts.TmpDir, "hostimport-*.csv")
	if err != nil {
		return "", &UploadError{Code: UploadErrNoTmpDir, Detail: err.Error()}
	}

	limit := s.opts.MaxFileSize
	if limit <= 0 {
		limit = 100 << 20
	}
	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err != nil || closeErr != nil {
		os.Remove(f.Name())
		if err == nil {
			err = closeErr
		}
		return "", &UploadError{Code: UploadErrWriteFailed, Detail: err.Error()}
	}
	if written > limit {
		os.Remove(f.Name())
		return "", &UploadError{Code: UploadErrTooLarge, Detail: fmt.Sprintf("limit %d bytes", limit)}
	}

	sess := &session{
		ID:        uuid.New().String(),
		FileName:  fileName,
		Path:      f.Name(),
		Step:      StepUploaded,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("upload received",
		"session", sess.ID,
		"file", fileName,
		"bytes", written,
	)
	return sess.ID, nil
}

// Validate runs the parse step for a session. On a file-level failure the
// session is marked failed, the temp file is removed, and the *FileError is
// returned. Row-level diagnostics do not fail the step.
func (s *Service) Validate(id string) (*ParseResult, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if sess.Step != StepUploaded && sess.Step != StepValidated {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}
	path := sess.Path
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		s.failSession(sess, &FileError{Code: "FILE004", Message: "uploaded file is no longer readable"})
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	parser := NewParser(s.opts.Registry)
	if s.opts.Separator != 0 {
		parser.Separator = s.opts.Separator
	}
	if s.opts.MaxLineLen > 0 {
		parser.MaxLineLen = s.opts.MaxLineLen
	}

	result, err := parser.Parse(f)
	if err != nil {
		s.failSession(sess, err)
		return nil, err
	}

	s.mu.Lock()
	if sess.Step == StepCancelled {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}
	sess.Hosts = result.Hosts
	sess.RowErrors = result.RowErrors
	sess.Step = StepValidated
	s.mu.Unlock()

	s.logger.Info("file validated",
		"session", sess.ID,
		"rows", len(result.Hosts),
		"row_errors", len(result.RowErrors),
	)
	return result, nil
}

// Run executes the import step: transforms every validated row and submits
// it to the inventory service. Results are retained on the session and the
// temp file is removed whether or not individual rows failed.
func (s *Service) Run(ctx context.Context, id string) ([]ImportResult, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if sess.Step != StepValidated {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}
	runCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	hosts := sess.Hosts
	s.mu.Unlock()
	defer cancel()

	resultByLine := make(map[int]ImportResult, len(hosts))
	descriptors := make([]HostDescriptor, 0, len(hosts))
	for _, host := range hosts {
		d, err := Transform(host)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				resultByLine[host.Line] = ImportResult{Line: rowErr.Line, Message: rowErr.Message}
				continue
			}
			return nil, err
		}
		descriptors = append(descriptors, d)
	}

	imported, runErr := NewImporter(s.inv, s.logger).Run(runCtx, descriptors)
	for _, r := range imported {
		resultByLine[r.Line] = r
	}

	results := make([]ImportResult, 0, len(resultByLine))
	for _, host := range hosts {
		if r, ok := resultByLine[host.Line]; ok {
			results = append(results, r)
		}
	}

	s.mu.Lock()
	sess.Results = results
	sess.cancel = nil
	if runErr != nil {
		sess.Step = StepCancelled
	} else {
		sess.Step = StepImported
	}
	s.removeFileLocked(sess)
	s.mu.Unlock()

	s.logger.Info("import finished",
		"session", sess.ID,
		"results", len(results),
		"cancelled", runErr != nil,
	)
	return results, runErr
}

// Cancel aborts a session at any step. A running import stops scheduling
// further rows; already-created hosts are left intact. The temp file is
// always removed.
func (s *Service) Cancel(id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if sess.cancel != nil {
		sess.cancel()
		sess.cancel = nil
	}
	if sess.Step != StepImported {
		sess.Step = StepCancelled
	}
	s.removeFileLocked(sess)
	s.mu.Unlock()

	s.logger.Info("session cancelled", "session", id)
	return nil
}

// Status returns a snapshot of the session.
func (s *Service) Status(id string) (SessionStatus, error) {
	sess, err := s.get(id)
	if err != nil {
		return SessionStatus{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStatus{
		ID:        sess.ID,
		FileName:  sess.FileName,
		Step:      sess.Step,
		RowCount:  len(sess.Hosts),
		RowErrors: sess.RowErrors,
		Results:   sess.Results,
		Error:     sess.FileErr,
	}, nil
}

// StartJanitor removes expired sessions (and their temp files) until the
// context is cancelled.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now().Add(-SessionMaxAge))
		}
	}
}

func (s *Service) sweep(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.CreatedAt.Before(cutoff) && sess.cancel == nil {
			s.removeFileLocked(sess)
			delete(s.sessions, id)
			s.logger.Debug("session expired", "session", id)
		}
	}
}

func (s *Service) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// failSession marks the session failed and drops its file. A concurrent
// cancel stays authoritative over the failure.
func (s *Service) failSession(sess *session, err error) {
	s.mu.Lock()
	if sess.Step != StepCancelled {
		sess.Step = StepFailed
		sess.FileErr = err.Error()
	}
	s.removeFileLocked(sess)
	s.mu.Unlock()
}

// removeFileLocked deletes the session's temp file. Callers hold s.mu.
// Removal is idempotent so every terminal path can call it.
func (s *Service) removeFileLocked(sess *session) {
	if sess.Path == "" {
		return
	}
	if err := os.Remove(sess.Path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove temp file", "path", sess.Path, "error", err)
	}
	sess.Path = ""
}
