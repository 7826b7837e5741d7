package shape

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqlshape/pkg/token"
)

var (
	// ErrMalformedInput is matched by every *ParseError.
	ErrMalformedInput = errors.New("malformed input")
	// ErrRecursionLimit is returned when nesting exceeds the configured bound.
	ErrRecursionLimit = errors.New("recursion limit exceeded")
)

// ParseError reports text that is not a recognizable SELECT statement.
type ParseError struct {
	Pos     token.Position
	Message string
}

func newParseError(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	if !e.Pos.IsValid() {
		return "parse error: " + e.Message
	}
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

// Unwrap lets errors.Is match ErrMalformedInput.
func (e *ParseError) Unwrap() error {
	return ErrMalformedInput
}
