package preprocess

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// rewriteGenerators converts TABLE(GENERATOR(ROWCOUNT => n)) row sources to
// generate_series(1, n).
func rewriteGenerators(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{Table: func(t ast.TableRef) ast.TableRef {
		tf, ok := t.(*ast.TableFunc)
		if !ok || tf.Call == nil || tf.Call.Name.Normalized() != "GENERATOR" {
			return t
		}

		rowcount := ast.Expr(&ast.Literal{Type: ast.LiteralNumber, Value: "0"})
		for _, arg := range tf.Call.Args {
			named, ok := arg.(*ast.NamedArg)
			if ok && named.Name.Normalized() == "ROWCOUNT" {
				rowcount = named.Value
			}
		}

		tf.Call = &ast.FuncCall{
			Name: ast.Ident{Name: "generate_series"},
			Args: []ast.Expr{&ast.Literal{Type: ast.LiteralNumber, Value: "1"}, rowcount},
		}
		return tf
	}}
	r.RewriteStmt(stmt)
	return nil
}

// rewriteSequences converts row sequence and random helpers:
//
//   - SEQ1()/SEQ2()/SEQ4()/SEQ8()  -> row_number() OVER () - 1
//   - UNIFORM(min, max, gen)       -> CAST(floor(random()*(max-min+1))+min AS INT)
//
// The UNIFORM generator argument (RANDOM(seed)) is dropped: DuckDB's
// random() is not seedable per call.
func rewriteSequences(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		call, ok := e.(*ast.FuncCall)
		if !ok {
			return e
		}
		switch call.Name.Normalized() {
		case "SEQ1", "SEQ2", "SEQ4", "SEQ8":
			rowNumber := &ast.FuncCall{
				Name:   ast.Ident{Name: "row_number"},
				Window: &ast.WindowSpec{},
			}
			return &ast.BinaryExpr{
				Left:  rowNumber,
				Op:    token.MINUS,
				Right: &ast.Literal{Type: ast.LiteralNumber, Value: "1"},
			}

		case "UNIFORM":
			if len(call.Args) < 2 {
				return e
			}
			lo, hi := call.Args[0], call.Args[1]
			span := &ast.ParenExpr{Expr: &ast.BinaryExpr{
				Left: &ast.BinaryExpr{Left: hi, Op: token.MINUS, Right: lo},
				Op:   token.PLUS,
				Right: &ast.Literal{
					Type: ast.LiteralNumber, Value: "1",
				},
			}}
			scaled := &ast.BinaryExpr{
				Left:  &ast.FuncCall{Name: ast.Ident{Name: "random"}},
				Op:    token.STAR,
				Right: span,
			}
			floored := &ast.FuncCall{
				Name: ast.Ident{Name: "floor"},
				Args: []ast.Expr{scaled},
			}
			return &ast.CastExpr{
				Expr: &ast.BinaryExpr{Left: floored, Op: token.PLUS, Right: lo},
				Type: &ast.TypeName{Name: "INT"},
			}
		}
		return e
	}}
	r.RewriteStmt(stmt)
	return nil
}
