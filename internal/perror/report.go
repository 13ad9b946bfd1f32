package perror

import (
	"encoding/json"
	"errors"
)

// Schema identifies the report format version for downstream consumers.
const Schema = "sqlcore.error/v1"

// Report is the canonical structured error type for the SQL core.
// Error builders return *Report, which can be wrapped as ReportError so the
// structure survives errors.As() unwrapping.
type Report struct {
	Schema  string         `json:"schema"`          // Always "sqlcore.error/v1"
	Code    string         `json:"code"`            // Error code (LEX001, PAR001, ...)
	Phase   string         `json:"phase"`           // Phase: "lex" or "parse"
	Message string         `json:"message"`         // Human-readable message
	Line    int            `json:"line,omitempty"`  // 1-based source line (lex phase)
	Col     int            `json:"col,omitempty"`   // 1-based source column (lex phase)
	Token   int            `json:"token,omitempty"` // Token index (parse phase)
	Data    map[string]any `json:"data,omitempty"`  // Structured data
}

// ReportError wraps a Report as an error.
type ReportError struct {
	Rep *Report
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport attempts to extract a Report from an error chain.
// Returns the Report and true if found, nil and false otherwise.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as a ReportError.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to JSON (deterministic, sorted keys).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error

	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}

	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewLex creates a lex-phase report positioned by line/column.
func NewLex(code, message string, line, col int) *Report {
	return &Report{
		Schema:  Schema,
		Code:    code,
		Phase:   "lex",
		Message: message,
		Line:    line,
		Col:     col,
	}
}

// NewParse creates a parse-phase report positioned by token index.
func NewParse(code, message string, tokenIdx int) *Report {
	return &Report{
		Schema:  Schema,
		Code:    code,
		Phase:   "parse",
		Message: message,
		Token:   tokenIdx,
	}
}
