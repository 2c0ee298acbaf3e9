package parser

import (
	"fmt"

	"github.com/leapstack-labs/snowduck/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken    = "unexpected token %s, expected %s"
	ErrUnterminatedString = "unterminated string literal"
	ErrExpectedIdent      = "expected identifier, got %s"
	ErrExpectedStatement  = "unexpected token %s at start of statement"
)
