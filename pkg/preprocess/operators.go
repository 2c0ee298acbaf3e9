package preprocess

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// rewriteBitwiseXor converts the infix ^ operator to an xor() call. In
// Snowflake ^ is bitwise XOR; DuckDB reserves ^ for exponentiation.
func rewriteBitwiseXor(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		bin, ok := e.(*ast.BinaryExpr)
		if !ok || bin.Op != token.CARET {
			return e
		}
		return &ast.FuncCall{
			Name: ast.Ident{Name: "xor"},
			Args: []ast.Expr{bin.Left, bin.Right},
		}
	}}
	r.RewriteStmt(stmt)
	return nil
}

// rewriteRegexpReplace aligns REGEXP_REPLACE semantics. Snowflake replaces
// every occurrence by default; DuckDB replaces only the first unless the
// 'g' option is given. A 3-argument call therefore gains a trailing 'g';
// calls that already pass flags keep them.
func rewriteRegexpReplace(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		call, ok := e.(*ast.FuncCall)
		if !ok || call.Name.Normalized() != "REGEXP_REPLACE" {
			return e
		}
		switch len(call.Args) {
		case 2:
			call.Args = append(call.Args,
				&ast.Literal{Type: ast.LiteralString, Value: ""},
				&ast.Literal{Type: ast.LiteralString, Value: "g"})
		case 3:
			call.Args = append(call.Args, &ast.Literal{Type: ast.LiteralString, Value: "g"})
		}
		return call
	}}
	r.RewriteStmt(stmt)
	return nil
}
