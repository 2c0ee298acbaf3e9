package preprocess

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// remapFunc rewrites one function call, or returns nil to leave it alone.
type remapFunc func(*ast.FuncCall) ast.Expr

// remapFunctions is the final pass: a strategy table of Snowflake function
// remappings keyed by uppercase name. Handlers check arity themselves;
// unmatched shapes pass through untouched and fail in DuckDB with its own
// diagnostics.
func remapFunctions(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		call, ok := e.(*ast.FuncCall)
		if !ok {
			return e
		}
		if handler, found := remapTable[call.Name.Normalized()]; found {
			if out := handler(call); out != nil {
				return out
			}
		}
		return e
	}}
	r.RewriteStmt(stmt)
	return nil
}

var remapTable = map[string]remapFunc{
	// String functions
	"LEN":     rename("length"),
	"SQUARE":  squareExpr,
	"INSTR":   rename("strpos"),
	"CHARINDEX": func(c *ast.FuncCall) ast.Expr {
		if len(c.Args) != 2 {
			return nil
		}
		// CHARINDEX(needle, haystack) -> strpos(haystack, needle)
		return fn("strpos", c.Args[1], c.Args[0])
	},
	"TO_VARCHAR": castTo("VARCHAR"),
	"TO_CHAR":    castTo("VARCHAR"),

	// Numeric functions
	"DIV0":          div0Expr,
	"BITAND":        binOp(token.AMP),
	"BITOR":         binOp(token.PIPE),
	"BITXOR":        func(c *ast.FuncCall) ast.Expr { return twoArg(c, "xor") },
	"BITNOT":        bitNotExpr,
	"BITSHIFTLEFT":  binOp(token.LSHIFT),
	"BITSHIFTRIGHT": binOp(token.RSHIFT),
	"TO_NUMBER":     castTo("DECIMAL(38,0)"),
	"TO_DECIMAL":    castTo("DECIMAL(38,0)"),

	// Array functions
	"ARRAY_SIZE":     rename("len"),
	"ARRAY_CAT":      rename("list_concat"),
	"ARRAY_POSITION": arrayPositionExpr,
	"ARRAY_SLICE":    arraySliceExpr,
	"ARRAY_COMPACT":  arrayCompactExpr,
	"ARRAY_CONTAINS": arrayContainsExpr,
	"GET":            getExpr,
	"TO_ARRAY":       toArrayExpr,

	// Hash and encoding functions
	"MD5_HEX":              rename("md5"),
	"SHA2":                 sha2Expr,
	"BASE64_ENCODE":        rename("to_base64"),
	"BASE64_DECODE_STRING": base64DecodeExpr,
	"HEX_ENCODE":           rename("hex"),

	// Conditional functions
	"IFF":        rename("if"),
	"NVL":        rename("coalesce"),
	"IFNULL":     rename("coalesce"),
	"NVL2":       nvl2Expr,
	"ZEROIFNULL": zeroIfNullExpr,
	"EQUAL_NULL": equalNullExpr,

	// Date and timestamp functions
	"ADD_MONTHS":       addMonthsExpr,
	"CONVERT_TIMEZONE": convertTimezoneExpr,
	"SYSDATE":          sysdateExpr,
	"TO_TIMESTAMP_NTZ": castTo("TIMESTAMP"),
	"TO_DATE":          castTo("DATE"),
	"TO_TIME":          castTo("TIME"),
	"TO_VARIANT":       castTo("JSON"),

	// Aggregates
	"LISTAGG": rename("string_agg"),

	// Misc
	"RANDSTR": randstrExpr,
}

// fn builds a call to a DuckDB function. The name stays unquoted so the
// renderer emits its uppercase form.
func fn(name string, args ...ast.Expr) *ast.FuncCall {
	return &ast.FuncCall{Name: ast.Ident{Name: name}, Args: args}
}

// rename returns a handler that swaps the function name.
func rename(name string) remapFunc {
	return func(c *ast.FuncCall) ast.Expr {
		c.Name = ast.Ident{Name: name}
		return c
	}
}

// castTo returns a handler converting a 1-argument call to a cast. The
// type string may carry precision arguments.
func castTo(typeName string) remapFunc {
	t := parseTypeString(typeName)
	return func(c *ast.FuncCall) ast.Expr {
		if len(c.Args) != 1 {
			return nil
		}
		cloned := *t
		return &ast.CastExpr{Expr: c.Args[0], Type: &cloned}
	}
}

func parseTypeString(s string) *ast.TypeName {
	if s == "DECIMAL(38,0)" {
		return &ast.TypeName{Name: "DECIMAL", Args: []int{38, 0}}
	}
	return &ast.TypeName{Name: s}
}

// binOp returns a handler converting a 2-argument call to an infix operator.
func binOp(op token.TokenType) remapFunc {
	return func(c *ast.FuncCall) ast.Expr {
		if len(c.Args) != 2 {
			return nil
		}
		return &ast.ParenExpr{Expr: &ast.BinaryExpr{Left: c.Args[0], Op: op, Right: c.Args[1]}}
	}
}

func twoArg(c *ast.FuncCall, name string) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	return fn(name, c.Args[0], c.Args[1])
}

func squareExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 1 {
		return nil
	}
	return &ast.ParenExpr{Expr: &ast.BinaryExpr{Left: c.Args[0], Op: token.STAR, Right: c.Args[0]}}
}

func div0Expr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	zero := &ast.Literal{Type: ast.LiteralNumber, Value: "0"}
	return &ast.CaseExpr{
		Whens: []ast.WhenClause{{
			Cond: &ast.BinaryExpr{Left: c.Args[1], Op: token.EQ, Right: zero},
			Then: zero,
		}},
		Else: &ast.BinaryExpr{Left: c.Args[0], Op: token.SLASH, Right: c.Args[1]},
	}
}

func bitNotExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 1 {
		return nil
	}
	return &ast.ParenExpr{Expr: &ast.UnaryExpr{Op: token.TILDE, Expr: c.Args[0]}}
}

// arrayPositionExpr maps ARRAY_POSITION(elem, arr) to a 0-based
// list_indexof; a missing element yields NULL through arithmetic.
func arrayPositionExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	indexOf := fn("list_indexof", c.Args[1], c.Args[0])
	return &ast.ParenExpr{Expr: &ast.BinaryExpr{
		Left:  indexOf,
		Op:    token.MINUS,
		Right: &ast.Literal{Type: ast.LiteralNumber, Value: "1"},
	}}
}

// arraySliceExpr maps 0-based exclusive ARRAY_SLICE(arr, from, to) to
// 1-based inclusive list_slice(arr, from+1, to).
func arraySliceExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 3 {
		return nil
	}
	from := &ast.BinaryExpr{
		Left:  c.Args[1],
		Op:    token.PLUS,
		Right: &ast.Literal{Type: ast.LiteralNumber, Value: "1"},
	}
	return fn("list_slice", c.Args[0], from, c.Args[2])
}

func arrayCompactExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 1 {
		return nil
	}
	x := ast.Ident{Name: "x", Quoted: true}
	body := &ast.IsNullExpr{Expr: &ast.ColumnRef{Column: x}, Not: true}
	return fn("list_filter", c.Args[0], &ast.LambdaExpr{Params: []ast.Ident{x}, Body: body})
}

// arrayContainsExpr swaps ARRAY_CONTAINS(elem, arr) argument order for
// list_contains(arr, elem).
func arrayContainsExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	return fn("list_contains", c.Args[1], c.Args[0])
}

func getExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	return &ast.IndexExpr{Expr: c.Args[0], Index: c.Args[1]}
}

func toArrayExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 1 {
		return nil
	}
	return &ast.ListLiteral{Items: c.Args}
}

// sha2Expr drops the optional digest size: only 256 is emulated.
func sha2Expr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) == 0 {
		return nil
	}
	return fn("sha256", c.Args[0])
}

func base64DecodeExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 1 {
		return nil
	}
	return &ast.CastExpr{Expr: fn("from_base64", c.Args[0]), Type: &ast.TypeName{Name: "VARCHAR"}}
}

func nvl2Expr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 3 {
		return nil
	}
	return &ast.CaseExpr{
		Whens: []ast.WhenClause{{
			Cond: &ast.IsNullExpr{Expr: c.Args[0], Not: true},
			Then: c.Args[1],
		}},
		Else: c.Args[2],
	}
}

func zeroIfNullExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 1 {
		return nil
	}
	return fn("coalesce", c.Args[0], &ast.Literal{Type: ast.LiteralNumber, Value: "0"})
}

func equalNullExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	return &ast.DistinctFromExpr{Left: c.Args[0], Not: true, Right: c.Args[1]}
}

// addMonthsExpr maps ADD_MONTHS(d, n) to interval arithmetic. DuckDB
// clamps to the last day of the target month, matching Snowflake.
func addMonthsExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 2 {
		return nil
	}
	months := fn("to_months", &ast.CastExpr{Expr: c.Args[1], Type: &ast.TypeName{Name: "INTEGER"}})
	return &ast.ParenExpr{Expr: &ast.BinaryExpr{Left: c.Args[0], Op: token.PLUS, Right: months}}
}

// convertTimezoneExpr maps CONVERT_TIMEZONE to DuckDB's timezone():
// 2-arg converts to the target zone, 3-arg re-interprets via the source
// zone first.
func convertTimezoneExpr(c *ast.FuncCall) ast.Expr {
	switch len(c.Args) {
	case 2:
		return fn("timezone", c.Args[0], c.Args[1])
	case 3:
		inner := fn("timezone", c.Args[0], c.Args[2])
		return fn("timezone", c.Args[1], inner)
	}
	return nil
}

func sysdateExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) != 0 {
		return nil
	}
	return &ast.CastExpr{Expr: fn("now"), Type: &ast.TypeName{Name: "TIMESTAMP"}}
}

// randstrExpr approximates RANDSTR(n, gen) with hex characters; the
// generator argument is ignored like UNIFORM's.
func randstrExpr(c *ast.FuncCall) ast.Expr {
	if len(c.Args) == 0 {
		return nil
	}
	randHex := fn("md5", &ast.CastExpr{Expr: fn("random"), Type: &ast.TypeName{Name: "VARCHAR"}})
	return fn("left", randHex, c.Args[0])
}
