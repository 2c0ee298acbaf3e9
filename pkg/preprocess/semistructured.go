package preprocess

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// rewriteSemiStructured converts Snowflake semi-structured constructs to
// their DuckDB JSON equivalents:
//
//   - OBJECT_CONSTRUCT(k, v, ...)  -> json_object(k, v, ...)
//   - OBJECT_CONSTRUCT(*)          -> to_json(row(*))
//   - ARRAY_CONSTRUCT(a, b)        -> [a, b]
//   - PARSE_JSON(x)/TRY_PARSE_JSON -> CAST/TRY_CAST(x AS JSON)
//   - col:a.b[0]                   -> json_extract_string(col, '$.a.b[0]')
//   - GET_PATH / JSON_EXTRACT_PATH_TEXT -> json_extract_string
//   - LATERAL FLATTEN(x)           -> LATERAL UNNEST(x) AS alias(VALUE)
//   - AT/BEFORE time-travel qualifiers are dropped
func rewriteSemiStructured(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{
		Expr:  rewriteSemiStructuredExpr,
		Table: rewriteSemiStructuredTable,
	}
	r.RewriteStmt(stmt)
	return nil
}

func rewriteSemiStructuredExpr(e ast.Expr) ast.Expr {
	switch ex := e.(type) {
	case *ast.JSONPathExpr:
		return &ast.FuncCall{
			Name: ast.Ident{Name: "json_extract_string"},
			Args: []ast.Expr{ex.Expr, &ast.Literal{Type: ast.LiteralString, Value: jsonPathString(ex.Path)}},
		}

	case *ast.FuncCall:
		switch ex.Name.Normalized() {
		case "OBJECT_CONSTRUCT":
			if ex.Star {
				return &ast.FuncCall{
					Name: ast.Ident{Name: "to_json"},
					Args: []ast.Expr{&ast.FuncCall{Name: ast.Ident{Name: "row"}, Star: true}},
				}
			}
			ex.Name = ast.Ident{Name: "json_object"}
			return ex

		case "ARRAY_CONSTRUCT":
			return &ast.ListLiteral{Items: ex.Args}

		case "PARSE_JSON", "TRY_PARSE_JSON":
			if len(ex.Args) != 1 {
				return ex
			}
			return &ast.CastExpr{
				Expr: ex.Args[0],
				Type: &ast.TypeName{Name: "JSON"},
				Try:  ex.Name.Normalized() == "TRY_PARSE_JSON",
			}

		case "GET_PATH", "JSON_EXTRACT_PATH_TEXT":
			if len(ex.Args) != 2 {
				return ex
			}
			path := ex.Args[1]
			if lit, ok := path.(*ast.Literal); ok && lit.Type == ast.LiteralString {
				path = &ast.Literal{Type: ast.LiteralString, Value: dollarPath(lit.Value)}
			}
			return &ast.FuncCall{
				Name: ast.Ident{Name: "json_extract_string"},
				Args: []ast.Expr{ex.Args[0], path},
			}
		}
	}
	return e
}

func rewriteSemiStructuredTable(t ast.TableRef) ast.TableRef {
	switch tr := t.(type) {
	case *ast.TableName:
		// Time travel reads resolve to current state.
		tr.At = nil

	case *ast.TableFunc:
		if tr.Call == nil {
			return t
		}
		switch tr.Call.Name.Normalized() {
		case "FLATTEN", "EXPLODE":
			input := flattenInput(tr.Call)
			tr.Call = &ast.FuncCall{Name: ast.Ident{Name: "UNNEST"}, Args: []ast.Expr{input}}
			tr.Lateral = true
			if tr.Alias.IsZero() {
				tr.Alias = ast.Ident{Name: "F"}
			}
			if len(tr.Columns) == 0 {
				tr.Columns = []ast.Ident{{Name: "VALUE"}}
			}
		}
	}
	return t
}

// flattenInput extracts the flattened expression: either the single
// positional argument or the INPUT => named argument.
func flattenInput(call *ast.FuncCall) ast.Expr {
	for _, arg := range call.Args {
		if named, ok := arg.(*ast.NamedArg); ok {
			if named.Name.Normalized() == "INPUT" {
				return named.Value
			}
			continue
		}
		return arg
	}
	return &ast.Literal{Type: ast.LiteralNull, Value: "NULL"}
}

// jsonPathString converts parsed path elements to a DuckDB JSONPath string.
func jsonPathString(path []ast.PathElem) string {
	var b strings.Builder
	b.WriteString("$")
	for _, elem := range path {
		if elem.Key != "" {
			b.WriteString(".")
			b.WriteString(elem.Key)
		} else {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(elem.Index))
			b.WriteString("]")
		}
	}
	return b.String()
}

// dollarPath prefixes a Snowflake path string with $. unless it already
// carries a JSONPath root.
func dollarPath(p string) string {
	if strings.HasPrefix(p, "$") {
		return p
	}
	if strings.HasPrefix(p, "[") {
		return "$" + p
	}
	return "$." + p
}
