package preprocess

import (
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// resolveIdentifierCalls unwraps IDENTIFIER('name') indirection. In table
// position the literal may be dot-qualified; in expression position it names
// a single column.
func resolveIdentifierCalls(stmt ast.Stmt, _ *Session) error {
	r := &ast.Rewriter{
		Expr: func(e ast.Expr) ast.Expr {
			call, ok := e.(*ast.FuncCall)
			if !ok || call.Name.Normalized() != "IDENTIFIER" || len(call.Args) != 1 {
				return e
			}
			lit, ok := call.Args[0].(*ast.Literal)
			if !ok || lit.Type != ast.LiteralString {
				return e
			}
			parts := splitIdentifierLiteral(lit.Value)
			return &ast.ColumnRef{Qualifier: parts[:len(parts)-1], Column: parts[len(parts)-1]}
		},
		Table: func(t ast.TableRef) ast.TableRef {
			tf, ok := t.(*ast.TableFunc)
			if !ok || tf.Call == nil || tf.Call.Name.Normalized() != "IDENTIFIER" || len(tf.Call.Args) != 1 {
				return t
			}
			lit, ok := tf.Call.Args[0].(*ast.Literal)
			if !ok || lit.Type != ast.LiteralString {
				return t
			}
			parts := splitIdentifierLiteral(lit.Value)
			name := &ast.TableName{Alias: tf.Alias}
			switch len(parts) {
			case 1:
				name.Name = parts[0]
			case 2:
				name.Schema, name.Name = parts[0], parts[1]
			default:
				name.Database, name.Schema, name.Name = parts[0], parts[1], parts[2]
			}
			return name
		},
	}
	r.RewriteStmt(stmt)
	return nil
}

// splitIdentifierLiteral splits a possibly dot-qualified, possibly quoted
// identifier literal into its parts.
func splitIdentifierLiteral(s string) []ast.Ident {
	var parts []ast.Ident
	for _, piece := range strings.Split(s, ".") {
		piece = strings.TrimSpace(piece)
		if len(piece) >= 2 && piece[0] == '"' && piece[len(piece)-1] == '"' {
			parts = append(parts, ast.Ident{Name: piece[1 : len(piece)-1], Quoted: true})
		} else {
			parts = append(parts, ast.Ident{Name: piece})
		}
	}
	if len(parts) == 0 {
		parts = append(parts, ast.Ident{Name: s})
	}
	return parts
}
