package render

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// show renders SHOW statements as queries over the DuckDB catalog, shaped
// like the Snowflake result sets (lowercase quoted column names).
func (g *generator) show(s *ast.ShowStmt) []string {
	switch s.Kind {
	case ast.ObjectDatabase:
		return []string{g.showDatabases(s)}
	case ast.ObjectSchema:
		return []string{g.showSchemas(s)}
	case ast.ObjectTable, ast.ObjectView:
		return []string{g.showRelations(s)}
	case ast.ObjectRole:
		return []string{fmt.Sprintf(
			`SELECT now() AS "created_on", '%s' AS "name", 'Y' AS "is_current"`,
			escapeString(g.sess.Role))}
	case ast.ObjectWarehouse:
		return []string{fmt.Sprintf(
			`SELECT '%s' AS "name", 'STARTED' AS "state", 'STANDARD' AS "type", 'X-Small' AS "size"`,
			escapeString(g.sess.Warehouse))}
	}
	return nil
}

func (g *generator) showDatabases(s *ast.ShowStmt) string {
	var b strings.Builder
	b.WriteString(`SELECT now() AS "created_on", database_name AS "name", 'STANDARD' AS "kind", '' AS "comment" FROM `)
	b.WriteString(quoteIdent(g.sess.AccountCatalog))
	b.WriteString(".")
	b.WriteString(quoteIdent(g.sess.InfoSchema))
	b.WriteString(`."_databases"`)
	if s.Like != "" {
		b.WriteString(" WHERE database_name ILIKE '" + escapeString(s.Like) + "'")
	}
	b.WriteString(" ORDER BY database_name")
	return b.String()
}

func (g *generator) showSchemas(s *ast.ShowStmt) string {
	db := g.sess.Database
	if s.InName != nil && !s.InName.Name.IsZero() {
		db = s.InName.Name.Normalized()
	}
	var b strings.Builder
	b.WriteString(`SELECT now() AS "created_on", schema_name AS "name", '`)
	b.WriteString(escapeString(db))
	b.WriteString(`' AS "database_name" FROM `)
	b.WriteString(quoteIdent(db))
	b.WriteString(".information_schema.schemata WHERE schema_name NOT IN ('information_schema', 'pg_catalog', '")
	b.WriteString(escapeString(g.sess.InfoSchema))
	b.WriteString("')")
	if s.Like != "" {
		b.WriteString(" AND schema_name ILIKE '" + escapeString(s.Like) + "'")
	}
	b.WriteString(" ORDER BY schema_name")
	return b.String()
}

// showRelations covers SHOW TABLES, SHOW VIEWS and SHOW OBJECTS. The scope
// defaults to the session schema; IN DATABASE widens it to the database.
func (g *generator) showRelations(s *ast.ShowStmt) string {
	db := g.sess.Database
	schema := g.sess.Schema
	switch s.InKind {
	case "DATABASE":
		db = s.InName.Name.Normalized()
		schema = ""
	case "SCHEMA":
		if !s.InName.Schema.IsZero() {
			db = s.InName.Schema.Normalized()
			schema = s.InName.Name.Normalized()
		} else {
			schema = s.InName.Name.Normalized()
		}
	case "ACCOUNT":
		schema = ""
	}
	var b strings.Builder
	b.WriteString(`SELECT now() AS "created_on", table_name AS "name", upper(table_catalog) AS "database_name", upper(table_schema) AS "schema_name", CASE WHEN table_type = 'VIEW' THEN 'VIEW' ELSE 'TABLE' END AS "kind" FROM `)
	b.WriteString(quoteIdent(db))
	b.WriteString(".information_schema.tables WHERE table_schema NOT IN ('information_schema', 'pg_catalog', '")
	b.WriteString(escapeString(g.sess.InfoSchema))
	b.WriteString("')")
	if !s.Objects {
		if s.Kind == ast.ObjectView {
			b.WriteString(" AND table_type = 'VIEW'")
		} else {
			b.WriteString(" AND table_type <> 'VIEW'")
		}
	}
	if schema != "" {
		b.WriteString(" AND upper(table_schema) = '" + escapeString(strings.ToUpper(schema)) + "'")
	}
	if s.Like != "" {
		b.WriteString(" AND table_name ILIKE '" + escapeString(s.Like) + "'")
	}
	b.WriteString(" ORDER BY table_name")
	return b.String()
}
