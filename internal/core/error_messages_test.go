package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"empty file", ErrEmptyFile, "FILE001"},
		{"missing header column", NewMissingColumnError("HOST_GROUPS"), "FILE002"},
		{"line too long", NewLineTooLongError(7, 1024), "FILE003"},
		{"short row", NewShortRowError(3, "AGENT_IP"), "VAL001"},
		{"empty required", NewEmptyRequiredError(4, "NAME"), "VAL002"},
		{"invalid port", &RowError{Line: 2, Message: `invalid port "abc" in column "AGENT_PORT"`}, "VAL003"},
		{"invalid snmp version", &RowError{Line: 2, Message: `invalid SNMP version "9"`}, "VAL004"},
		{"proxy missing", errors.New("proxy not found: dc1-proxy"), "REF001"},
		{"template missing", errors.New("template not found: Linux by agent"), "REF002"},
		{"duplicate host", errors.New(`host "web-01" already exists`), "SVC001"},
		{"unreachable", errors.New("dial tcp 10.0.0.9:80: connection refused"), "SVC002"},
		{"unreachable during proxy lookup", errors.New(`resolve proxy "dc1-proxy": dial tcp: connection refused`), "SVC002"},
		{"unreachable during template lookup", errors.New(`resolve template "Linux by agent": dial tcp: connection refused`), "SVC002"},
		{"upload too large", &UploadError{Code: UploadErrTooLarge}, "UPL002"},
		{"blocked extension", &UploadError{Code: UploadErrBadExtension}, "UPL003"},
		{"generic upload", &UploadError{Code: UploadErrPartial}, "UPL001"},
		{"expired session", fmt.Errorf("validate: %w", ErrSessionNotFound), "UPL004"},
		{"unknown", errors.New("something else broke"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if got.Message == "" {
				t.Error("MapError returned empty message")
			}
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	got := MapError(nil)
	if got.Code != "" || got.Message != "" {
		t.Errorf("MapError(nil) = %+v, want zero value", got)
	}
}

// Empty-required messages must stay row-scoped; the more specific pattern
// has to win over the header-level "missing column" one.
func TestMapErrorPatternPrecedence(t *testing.T) {
	got := MapError(NewEmptyRequiredError(2, "NAME"))
	if got.Code != "VAL002" {
		t.Errorf("Code = %q, want VAL002", got.Code)
	}
}
