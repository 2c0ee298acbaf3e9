// Package connector exposes the Snowflake-shaped Connection/Cursor contract
// over an embedded DuckDB engine.
package connector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marcboeker/go-duckdb"
)

// Snowflake error numbers and SQLSTATEs surfaced by the translator.
const (
	ErrSyntax           = 1003
	ErrObjectNotFound   = 2003
	ErrTypeMismatch     = 2043
	ErrExecution        = 100132
	ErrConnectionClosed = 250002

	SQLStateSyntax         = "42000"
	SQLStateMultiStatement = "42601"
	SQLStateNotFound       = "42S02"
	SQLStateBinder         = "02000"
	SQLStateConnection     = "08003"
	SQLStateExecution      = "P0000"
)

// SnowflakeError is the driver-visible error shape: a numeric error code,
// a 5-character SQLSTATE and the engine's diagnostic text.
type SnowflakeError struct {
	Number   int
	SQLState string
	Message  string
	QueryID  string
}

func (e *SnowflakeError) Error() string {
	return fmt.Sprintf("%06d (%s): %s", e.Number, e.SQLState, e.Message)
}

// newSyntaxError wraps a parser diagnostic.
func newSyntaxError(msg string) *SnowflakeError {
	return &SnowflakeError{
		Number:   ErrSyntax,
		SQLState: SQLStateSyntax,
		Message:  "SQL compilation error:\n" + msg,
	}
}

// errClosed reports use of a closed connection or cursor.
func errClosed(what string) *SnowflakeError {
	return &SnowflakeError{
		Number:   ErrConnectionClosed,
		SQLState: SQLStateConnection,
		Message:  what + " is closed",
	}
}

// translateEngineError maps a DuckDB error onto the Snowflake error table.
// A nil result means the error should be swallowed as success (commit or
// rollback outside a transaction).
func translateEngineError(err error) error {
	if err == nil {
		return nil
	}
	var sfErr *SnowflakeError
	if errors.As(err, &sfErr) {
		return sfErr
	}

	msg := err.Error()
	var dErr *duckdb.Error
	if errors.As(err, &dErr) {
		switch dErr.Type {
		case duckdb.ErrorTypeParser, duckdb.ErrorTypeSyntax:
			return newSyntaxError(dErr.Msg)
		case duckdb.ErrorTypeCatalog:
			return &SnowflakeError{
				Number:   ErrObjectNotFound,
				SQLState: SQLStateNotFound,
				Message:  firstLine(dErr.Msg),
			}
		case duckdb.ErrorTypeBinder:
			return &SnowflakeError{
				Number:   ErrTypeMismatch,
				SQLState: SQLStateBinder,
				Message:  dErr.Msg,
			}
		case duckdb.ErrorTypeConnection:
			return &SnowflakeError{
				Number:   ErrConnectionClosed,
				SQLState: SQLStateConnection,
				Message:  dErr.Msg,
			}
		case duckdb.ErrorTypeTransaction:
			if isNoActiveTransaction(dErr.Msg) {
				return nil
			}
		}
		msg = dErr.Msg
	}

	// The driver does not always surface a typed error; classify by the
	// engine's message prefix.
	switch {
	case strings.Contains(msg, "Parser Error"), strings.Contains(msg, "Syntax Error"):
		return newSyntaxError(msg)
	case strings.Contains(msg, "Catalog Error"):
		return &SnowflakeError{
			Number:   ErrObjectNotFound,
			SQLState: SQLStateNotFound,
			Message:  firstLine(msg),
		}
	case strings.Contains(msg, "Binder Error"), strings.Contains(msg, "Conversion Error"):
		return &SnowflakeError{
			Number:   ErrTypeMismatch,
			SQLState: SQLStateBinder,
			Message:  msg,
		}
	case isNoActiveTransaction(msg):
		return nil
	}
	return &SnowflakeError{
		Number:   ErrExecution,
		SQLState: SQLStateExecution,
		Message:  msg,
	}
}

func isNoActiveTransaction(msg string) bool {
	return strings.Contains(msg, "no transaction is active")
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
