package parser

import (
	"errors"
	"fmt"
)

// ParseErrorCode categorizes parse failures.
type ParseErrorCode string

const (
	// ErrCodeSyntax indicates structurally invalid input.
	ErrCodeSyntax ParseErrorCode = "SYNTAX"

	// ErrCodeUnsupported indicates valid input outside the supported
	// grammar subset (comprehensions, generator expressions, and the
	// reduction calls sum/prod/max/min/any/all).
	ErrCodeUnsupported ParseErrorCode = "UNSUPPORTED_CONSTRUCT"
)

// ParseError is returned for any input the parser rejects.
// Fatal to the request, never to the process: callers report it and move
// on. No partial IR accompanies a ParseError.
type ParseError struct {
	// Code identifies the error category.
	Code ParseErrorCode

	// Message is a human-readable description.
	Message string

	// Construct names the offending construct kind for
	// UNSUPPORTED_CONSTRUCT errors (e.g. "power operator", "lambda").
	Construct string

	// Pos is the byte offset into the source where the error was detected.
	Pos int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Construct != "" {
		return fmt.Sprintf("%s: %s (construct=%s, pos=%d)", e.Code, e.Message, e.Construct, e.Pos)
	}
	return fmt.Sprintf("%s: %s (pos=%d)", e.Code, e.Message, e.Pos)
}

// IsSyntaxError returns true if the error is a syntax error.
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeSyntax
	}
	return false
}

// IsUnsupportedError returns true if the error reports an unsupported
// construct. Uses errors.As to handle wrapped errors.
func IsUnsupportedError(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeUnsupported
	}
	return false
}

func syntaxErr(pos int, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    ErrCodeSyntax,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

func unsupportedErr(pos int, construct, format string, args ...any) *ParseError {
	return &ParseError{
		Code:      ErrCodeUnsupported,
		Message:   fmt.Sprintf(format, args...),
		Construct: construct,
		Pos:       pos,
	}
}
