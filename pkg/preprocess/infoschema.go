package preprocess

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// rewriteInfoSchema redirects INFORMATION_SCHEMA references to the internal
// schema that carries the emulated views. DATABASES and COLUMNS map to the
// fabricated views; everything else falls through to DuckDB's own
// information_schema, which covers the standard relations.
func rewriteInfoSchema(stmt ast.Stmt, sess *Session) error {
	r := &ast.Rewriter{Table: func(t ast.TableRef) ast.TableRef {
		name, ok := t.(*ast.TableName)
		if !ok {
			return t
		}

		implicit := name.Schema.IsZero() && sess.Schema == "INFORMATION_SCHEMA"
		if !implicit && name.Schema.Normalized() != "INFORMATION_SCHEMA" {
			return t
		}

		switch name.Name.Normalized() {
		case "DATABASES":
			if name.Database.IsZero() {
				name.Database = ast.Ident{Name: sess.Database, Quoted: true}
			}
			name.Schema = ast.Ident{Name: sess.InfoSchema, Quoted: true}
			name.Name = ast.Ident{Name: "_databases", Quoted: true}
		case "COLUMNS":
			if name.Database.IsZero() {
				name.Database = ast.Ident{Name: sess.Database, Quoted: true}
			}
			name.Schema = ast.Ident{Name: sess.InfoSchema, Quoted: true}
			name.Name = ast.Ident{Name: "_columns", Quoted: true}
		default:
			// DuckDB ships TABLES, SCHEMATA, VIEWS and friends natively.
			name.Schema = ast.Ident{Name: "information_schema", Quoted: true}
		}
		return name
	}}
	r.RewriteStmt(stmt)
	return nil
}
