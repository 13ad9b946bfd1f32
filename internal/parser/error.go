package parser

import (
	"fmt"

	"github.com/sunholo/sqlcore/internal/perror"
)

// ParseError is the structured failure a grammar match reports when it
// cannot produce a result at all (as opposed to GREEDY mode, which
// swallows a failed remainder into an Unparsable node instead of
// propagating an error). Most parse failures inside OneOf/AnyNumberOf are
// not reported as ParseError -- they're just "this alternative didn't
// match" -- this type exists for the handful of places that are genuinely
// exceptional: an unresolved Ref, or the root grammar failing outright.
type ParseError struct {
	Code     string
	Message  string
	TokenIdx int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (at token %d)", e.Code, e.Message, e.TokenIdx)
}

// ToReport converts the error to a structured perror report for
// machine-readable output.
func (e *ParseError) ToReport() *perror.Report {
	return perror.NewParse(e.Code, e.Message, e.TokenIdx)
}

func errUnresolvedRef(name string, idx int) *ParseError {
	return &ParseError{Code: perror.PAR001, Message: fmt.Sprintf("unresolved rule reference %q", name), TokenIdx: idx}
}

func errRootEmpty(idx int) *ParseError {
	return &ParseError{Code: perror.PAR002, Message: "root grammar matched zero tokens", TokenIdx: idx}
}

func errBadBracketPrecompute(idx int) *ParseError {
	return &ParseError{Code: perror.PAR003, Message: "bracket token's pre-computed matching index is out of range", TokenIdx: idx}
}
