package preprocess

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// dateFuncs are functions whose string-literal arguments get coerced to
// DATE or TIMESTAMP. Snowflake coerces date-shaped strings implicitly;
// DuckDB wants explicit casts.
var dateFuncs = map[string]bool{
	"DATEDIFF":       true,
	"TIMESTAMPDIFF":  true,
	"DATEADD":        true,
	"TIMEADD":        true,
	"TIMESTAMPADD":   true,
	"DATE_TRUNC":     true,
	"DATE_PART":      true,
	"LAST_DAY":       true,
	"NEXT_DAY":       true,
	"PREVIOUS_DAY":   true,
	"DAYNAME":        true,
	"MONTHNAME":      true,
	"ADD_MONTHS":     true,
	"MONTHS_BETWEEN": true,
	"YEAR":           true,
	"QUARTER":        true,
	"MONTH":          true,
	"WEEK":           true,
	"WEEKOFYEAR":     true,
	"DAY":            true,
	"DAYOFMONTH":     true,
	"DAYOFWEEK":      true,
	"DAYOFYEAR":      true,
	"HOUR":           true,
	"MINUTE":         true,
	"SECOND":         true,
}

// timeUnits force TIMESTAMP coercion when given as the unit argument of
// DATEDIFF/DATEADD style functions.
var timeUnits = map[string]bool{
	"HOUR":        true,
	"MINUTE":      true,
	"SECOND":      true,
	"MILLISECOND": true,
	"MICROSECOND": true,
	"NANOSECOND":  true,
}

var (
	dateOnlyRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimeRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
	slashDateRe = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
	monthNameRe = regexp.MustCompile(`^\d{2}-[A-Za-z]{3}-\d{4}$`)
)

// coerceDateLiterals wraps date-shaped string literals in CAST when they
// appear as arguments of date functions. Column references are never
// touched: only literals carry enough shape to coerce safely.
func coerceDateLiterals(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		call, ok := e.(*ast.FuncCall)
		if !ok || !dateFuncs[call.Name.Normalized()] {
			return e
		}

		forceTimestamp := false
		if len(call.Args) > 0 {
			if unit, ok2 := unitName(call.Args[0]); ok2 && timeUnits[unit] {
				forceTimestamp = true
			}
		}

		for i, arg := range call.Args {
			lit, ok2 := arg.(*ast.Literal)
			if !ok2 || lit.Type != ast.LiteralString {
				continue
			}
			typ, shaped := literalDateType(lit.Value)
			if !shaped {
				continue
			}
			if forceTimestamp {
				typ = "TIMESTAMP"
			}
			call.Args[i] = &ast.CastExpr{Expr: lit, Type: &ast.TypeName{Name: typ}}
		}
		return call
	}}
	r.RewriteStmt(stmt)
	return nil
}

// unitName extracts a date-part unit from the first argument, which parses
// as a bare column reference (DATEDIFF(day, a, b)) or a string literal.
func unitName(e ast.Expr) (string, bool) {
	switch arg := e.(type) {
	case *ast.ColumnRef:
		if len(arg.Qualifier) == 0 {
			return arg.Column.Normalized(), true
		}
	case *ast.Literal:
		if arg.Type == ast.LiteralString {
			return strings.ToUpper(strings.TrimSpace(arg.Value)), true
		}
	}
	return "", false
}

// literalDateType classifies a string literal as DATE or TIMESTAMP shaped.
func literalDateType(s string) (string, bool) {
	switch {
	case dateOnlyRe.MatchString(s), slashDateRe.MatchString(s), monthNameRe.MatchString(s):
		return "DATE", true
	case dateTimeRe.MatchString(s):
		return "TIMESTAMP", true
	}
	return "", false
}
