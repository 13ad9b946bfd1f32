// Package perror provides centralized error code definitions for the SQL
// core. All error codes follow a consistent taxonomy for machine-readable
// error reporting.
package perror

// Error code constants organized by phase.
// Each constant represents a specific error condition with structured reporting.
const (
	// ============================================================================
	// Lexer Errors (LEX###)
	// ============================================================================

	// LEX001 indicates a run of text no matcher (including the last resort's
	// subdivision rules) could recognise; it surfaces as one unlexable token.
	LEX001 = "LEX001"

	// ============================================================================
	// Parser Errors (PAR###)
	// ============================================================================

	// PAR001 indicates a rule reference that the dialect never registered.
	PAR001 = "PAR001"

	// PAR002 indicates the root grammar matched zero tokens over a non-empty
	// token stream.
	PAR002 = "PAR002"

	// PAR003 indicates a bracket token whose pre-computed matching index is
	// structurally invalid (points outside the token slice).
	PAR003 = "PAR003"
)
