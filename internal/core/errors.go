package core

// errors.go defines the import error taxonomy:
//
//   - FileError: fatal for the whole import attempt, no rows processed
//     (empty file, missing required header column, overlong line).
//   - RowError: one row skipped or failed, import continues.
//   - UploadError: upload transport failures, mapped to stable codes.
//
// Reference warnings (proxy/template not found) and service rejections are
// not error types: they are accumulated on the row's ImportResult.

import "fmt"

// FileError invalidates the whole import attempt before any row is
// processed.
type FileError struct {
	Code    string // stable code, see error_messages.go
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

// ErrEmptyFile is returned when the stream yields no header line.
var ErrEmptyFile = &FileError{Code: "FILE001", Message: "empty file"}

// NewMissingColumnError reports a required column absent from the header.
func NewMissingColumnError(column string) *FileError {
	return &FileError{
		Code:    "FILE002",
		Message: fmt.Sprintf("missing required column %q in header", column),
	}
}

// NewLineTooLongError reports a physical line exceeding the configured cap.
func NewLineTooLongError(line, max int) *FileError {
	return &FileError{
		Code:    "FILE003",
		Message: fmt.Sprintf("line %d exceeds maximum length of %d bytes", line, max),
	}
}

// RowError is a row-scoped failure. The row is skipped and the import
// continues with the remaining lines.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// NewShortRowError reports a data line with fewer fields than the header.
func NewShortRowError(line int, column string) *RowError {
	return &RowError{Line: line, Message: fmt.Sprintf("missing column %q", column)}
}

// NewEmptyRequiredError reports a required column that is empty in one row.
func NewEmptyRequiredError(line int, column string) *RowError {
	return &RowError{Line: line, Message: fmt.Sprintf("empty required column %q", column)}
}

// UploadErrorCode identifies an upload transport failure.
type UploadErrorCode string

const (
	UploadErrNoFile       UploadErrorCode = "no-file-present"
	UploadErrTooLarge     UploadErrorCode = "size-exceeded"
	UploadErrPartial      UploadErrorCode = "partial-upload"
	UploadErrNoSelection  UploadErrorCode = "no-file-selected"
	UploadErrNoTmpDir     UploadErrorCode = "no-temp-directory"
	UploadErrWriteFailed  UploadErrorCode = "write-failure"
	UploadErrBadExtension UploadErrorCode = "extension-blocked"
)

// UploadError is a transport-level failure while receiving the file.
type UploadError struct {
	Code   UploadErrorCode
	Detail string
}

func (e *UploadError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upload failed (%s): %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("upload failed (%s)", e.Code)
}
