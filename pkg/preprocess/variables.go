package preprocess

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// substituteVariables replaces $name references with the session's bound
// values. An unbound reference fails the whole statement.
func substituteVariables(stmt ast.Stmt, sess *Session) error {
	var missing *UndefinedVariableError

	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		sv, ok := e.(*ast.SessionVar)
		if !ok {
			return e
		}
		val, bound := sess.Variables[strings.ToUpper(sv.Name)]
		if !bound {
			if missing == nil {
				missing = &UndefinedVariableError{Name: sv.Name}
			}
			return e
		}
		return variableLiteral(val)
	}}
	r.RewriteStmt(stmt)

	if missing != nil {
		return missing
	}
	return nil
}

// variableLiteral converts a bound session variable value to a literal node.
func variableLiteral(val any) ast.Expr {
	switch v := val.(type) {
	case int:
		return &ast.Literal{Type: ast.LiteralNumber, Value: strconv.Itoa(v)}
	case int64:
		return &ast.Literal{Type: ast.LiteralNumber, Value: strconv.FormatInt(v, 10)}
	case float64:
		return &ast.Literal{Type: ast.LiteralNumber, Value: strconv.FormatFloat(v, 'g', -1, 64)}
	case bool:
		if v {
			return &ast.Literal{Type: ast.LiteralBool, Value: "TRUE"}
		}
		return &ast.Literal{Type: ast.LiteralBool, Value: "FALSE"}
	case string:
		return &ast.Literal{Type: ast.LiteralString, Value: v}
	default:
		return &ast.Literal{Type: ast.LiteralString, Value: fmt.Sprintf("%v", v)}
	}
}

// ParseVariableValue converts the textual value of a SET statement into the
// typed representation stored on the session: int, then float, then string.
func ParseVariableValue(lit *ast.Literal) any {
	switch lit.Type {
	case ast.LiteralNumber:
		if i, err := strconv.ParseInt(lit.Value, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(lit.Value, 64); err == nil {
			return f
		}
		return lit.Value
	case ast.LiteralBool:
		return strings.EqualFold(lit.Value, "TRUE")
	default:
		return lit.Value
	}
}
