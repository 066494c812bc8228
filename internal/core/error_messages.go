package core

// error_messages.go maps technical errors to user-friendly messages with
// stable codes operators can quote to support staff.
//
// Error codes are grouped by category:
//
//	FILE001 - Empty file            FILE002 - Missing required column
//	FILE003 - Line too long
//	VAL001  - Short row             VAL002  - Empty required field
//	VAL003  - Invalid port          VAL004  - Invalid SNMP version
//	REF001  - Proxy not found       REF002  - Template not found
//	SVC001  - Duplicate host        SVC002  - Service unreachable
//	UPL001  - No file               UPL002  - File too large
//	UPL003  - Blocked extension     UPL004  - Session not found
//	ERR000  - Fallback
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so more specific patterns come before general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable
// guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header line and data rows",
			Code:    "FILE001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the header",
			Action:  "Check that all required columns are present in your file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "exceeds maximum length",
		msg: UserMessage{
			Message: "A line in the file is too long",
			Action:  "Check the file for corrupt or unseparated lines",
			Code:    "FILE003",
		},
	},
	{
		pattern: "missing column",
		msg: UserMessage{
			Message: "A data row has fewer fields than the header",
			Action:  "Check the row for missing separators",
			Code:    "VAL001",
		},
	},
	{
		pattern: "empty required column",
		msg: UserMessage{
			Message: "A required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid port",
		msg: UserMessage{
			Message: "A port field is not a number between 1 and 65535",
			Action:  "Fix the port value or leave it blank for the default",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid snmp version",
		msg: UserMessage{
			Message: "The SNMP version is not supported",
			Action:  "Use version 1, 2 or 3, or leave it blank for version 1",
			Code:    "VAL004",
		},
	},
	{
		pattern: "proxy not found",
		msg: UserMessage{
			Message: "The referenced proxy does not exist",
			Action:  "The host was imported without a proxy reference",
			Code:    "REF001",
		},
	},
	{
		pattern: "template not found",
		msg: UserMessage{
			Message: "A referenced template does not exist",
			Action:  "The host was imported without that template",
			Code:    "REF002",
		},
	},
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "A host with this name already exists",
			Action:  "Rename the host in your CSV or remove the row",
			Code:    "SVC001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The inventory service is unreachable",
			Action:  "Please try again in a few moments",
			Code:    "SVC002",
		},
	},
	{
		pattern: "size-exceeded",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "UPL002",
		},
	},
	{
		pattern: "extension-blocked",
		msg: UserMessage{
			Message: "This file type is not allowed",
			Action:  "Upload a .csv or .txt file",
			Code:    "UPL003",
		},
	},
	{
		pattern: "upload failed",
		msg: UserMessage{
			Message: "The file could not be received",
			Action:  "Please try the upload again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "The import session has expired or does not exist",
			Action:  "Start a new import",
			Code:    "UPL004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}
