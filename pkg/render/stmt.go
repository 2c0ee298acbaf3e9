package render

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

// Statements renders a rewritten statement as one or more DuckDB SQL
// statements. Statements whose effect is handled entirely by the connector
// (USE ROLE, SET, PUT, DESCRIBE and friends) render as an empty slice.
func Statements(stmt ast.Stmt, sess *preprocess.Session) ([]string, error) {
	g := &generator{sess: sess}
	return g.statements(stmt)
}

type generator struct {
	sess *preprocess.Session
}

func (g *generator) statements(stmt ast.Stmt) ([]string, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		p := newPrinter()
		p.selectStmt(s)
		return []string{p.String()}, nil
	case *ast.InsertStmt:
		return g.insert(s)
	case *ast.UpdateStmt:
		return g.update(s), nil
	case *ast.DeleteStmt:
		return g.delete(s), nil
	case *ast.MergeStmt:
		return g.merge(s), nil
	case *ast.CreateDatabaseStmt:
		return g.createDatabase(s), nil
	case *ast.CreateSchemaStmt:
		return g.createSchema(s), nil
	case *ast.CreateTableStmt:
		return g.createTable(s), nil
	case *ast.CreateViewStmt:
		return g.createView(s), nil
	case *ast.CreateStageStmt:
		// Stage directories are created by the connector.
		return nil, nil
	case *ast.DropStmt:
		return g.drop(s), nil
	case *ast.TruncateStmt:
		return g.truncate(s), nil
	case *ast.AlterTableStmt:
		return g.alterTable(s), nil
	case *ast.AlterSessionStmt, *ast.SetStmt, *ast.UnsetStmt:
		return nil, nil
	case *ast.UseStmt:
		return g.use(s), nil
	case *ast.ShowStmt:
		return g.show(s), nil
	case *ast.DescribeStmt:
		// Column metadata comes from the information schema cache.
		return nil, nil
	case *ast.PutStmt:
		return nil, nil
	case *ast.CopyIntoStmt:
		return g.copyInto(s), nil
	case *ast.BeginStmt:
		return []string{"BEGIN TRANSACTION"}, nil
	case *ast.CommitStmt:
		return []string{"COMMIT"}, nil
	case *ast.RollbackStmt:
		return []string{"ROLLBACK"}, nil
	}
	return nil, fmt.Errorf("render: unsupported statement %T", stmt)
}

// ---------- queries ----------

func (p *printer) selectStmt(s *ast.SelectStmt) {
	if s.With != nil {
		p.keyword("WITH")
		if s.With.Recursive {
			p.keyword("RECURSIVE")
		}
		p.list(len(s.With.CTEs), func(i int) {
			cte := s.With.CTEs[i]
			p.ident(cte.Name)
			if len(cte.Columns) > 0 {
				p.write("(")
				p.list(len(cte.Columns), func(j int) { p.ident(cte.Columns[j]) })
				p.write(")")
			}
			p.keyword("AS")
			p.write("(")
			p.selectStmt(cte.Select)
			p.write(")")
		})
	}
	p.selectBody(s.Body)
}

func (p *printer) selectBody(b *ast.SelectBody) {
	p.selectCore(b.Left)
	if b.Op != ast.SetOpNone {
		p.keyword(string(b.Op))
		if b.All {
			p.keyword("ALL")
		}
		p.selectBody(b.Right)
	}
}

func (p *printer) selectCore(c *ast.SelectCore) {
	p.keyword("SELECT")
	if c.Distinct {
		p.keyword("DISTINCT")
	}
	p.list(len(c.Columns), func(i int) { p.selectItem(c.Columns[i]) })
	if len(c.From) > 0 {
		p.keyword("FROM")
		p.fromClause(c.From)
	}
	if c.Where != nil {
		p.keyword("WHERE")
		p.expr(c.Where)
	}
	if len(c.GroupBy) > 0 {
		p.keyword("GROUP BY")
		p.list(len(c.GroupBy), func(i int) { p.expr(c.GroupBy[i]) })
	}
	if c.Having != nil {
		p.keyword("HAVING")
		p.expr(c.Having)
	}
	if c.Qualify != nil {
		p.keyword("QUALIFY")
		p.expr(c.Qualify)
	}
	if len(c.OrderBy) > 0 {
		p.keyword("ORDER BY")
		p.orderByList(c.OrderBy)
	}
	if c.Limit != nil {
		p.keyword("LIMIT")
		p.expr(c.Limit)
	}
	if c.Offset != nil {
		p.keyword("OFFSET")
		p.expr(c.Offset)
	}
}

func (p *printer) selectItem(item ast.SelectItem) {
	switch {
	case item.Star:
		p.space()
		p.write("*")
		p.space()
	case !item.TableStar.IsZero():
		p.space()
		p.ident(item.TableStar)
		p.write(".*")
		p.space()
	default:
		p.expr(item.Expr)
		if !item.Alias.IsZero() {
			p.keyword("AS")
			p.ident(item.Alias)
		}
	}
}

func (p *printer) fromClause(refs []ast.TableRef) {
	comma := false
	for _, ref := range refs {
		if j, ok := ref.(*ast.Join); ok {
			p.join(j)
			continue
		}
		if comma {
			p.write(", ")
		}
		p.tableRef(ref)
		comma = true
	}
}

func (p *printer) join(j *ast.Join) {
	p.keyword(string(j.Type))
	p.tableRef(j.Right)
	if j.Condition != nil {
		p.keyword("ON")
		p.expr(j.Condition)
	}
	if len(j.Using) > 0 {
		p.keyword("USING")
		p.write("(")
		p.list(len(j.Using), func(i int) { p.ident(j.Using[i]) })
		p.write(")")
	}
}

func (p *printer) tableRef(ref ast.TableRef) {
	switch t := ref.(type) {
	case *ast.TableName:
		p.tableName(t)
		if !t.Alias.IsZero() {
			p.keyword("AS")
			p.ident(t.Alias)
		}
	case *ast.DerivedTable:
		p.space()
		p.write("(")
		p.selectStmt(t.Select)
		p.write(")")
		if !t.Alias.IsZero() {
			p.keyword("AS")
			p.ident(t.Alias)
			p.columnAliases(t.Columns)
		}
	case *ast.TableFunc:
		if t.Lateral {
			p.keyword("LATERAL")
		}
		p.funcCall(t.Call)
		if !t.Alias.IsZero() {
			p.keyword("AS")
			p.ident(t.Alias)
			p.columnAliases(t.Columns)
		}
	}
}

func (p *printer) columnAliases(cols []ast.Ident) {
	if len(cols) == 0 {
		return
	}
	p.write("(")
	p.list(len(cols), func(i int) { p.ident(cols[i]) })
	p.write(")")
}

func (p *printer) tableName(t *ast.TableName) {
	p.space()
	if !t.Database.IsZero() {
		p.ident(t.Database)
		p.write(".")
	}
	if !t.Schema.IsZero() {
		p.ident(t.Schema)
		p.write(".")
	}
	p.ident(t.Name)
	p.space()
}

// ---------- DML ----------

func (g *generator) insert(s *ast.InsertStmt) ([]string, error) {
	var out []string
	if s.Overwrite {
		p := newPrinter()
		p.keyword("DELETE FROM")
		p.tableName(s.Table)
		out = append(out, p.String())
	}
	p := newPrinter()
	p.keyword("INSERT INTO")
	p.tableName(s.Table)
	p.columnAliases(s.Columns)
	if s.Query != nil {
		p.selectStmt(s.Query)
	} else {
		p.keyword("VALUES")
		p.list(len(s.Values), func(i int) {
			p.write("(")
			p.list(len(s.Values[i]), func(j int) { p.expr(s.Values[i][j]) })
			p.write(")")
		})
	}
	return append(out, p.String()), nil
}

func (g *generator) update(s *ast.UpdateStmt) []string {
	p := newPrinter()
	p.keyword("UPDATE")
	p.tableName(s.Table)
	if !s.Table.Alias.IsZero() {
		p.keyword("AS")
		p.ident(s.Table.Alias)
	}
	p.keyword("SET")
	p.list(len(s.Set), func(i int) {
		p.ident(s.Set[i].Column)
		p.write(" = ")
		p.expr(s.Set[i].Value)
	})
	if len(s.From) > 0 {
		p.keyword("FROM")
		p.fromClause(s.From)
	}
	if s.Where != nil {
		p.keyword("WHERE")
		p.expr(s.Where)
	}
	return []string{p.String()}
}

func (g *generator) delete(s *ast.DeleteStmt) []string {
	p := newPrinter()
	p.keyword("DELETE FROM")
	p.tableName(s.Table)
	if !s.Table.Alias.IsZero() {
		p.keyword("AS")
		p.ident(s.Table.Alias)
	}
	if len(s.Using) > 0 {
		p.keyword("USING")
		p.fromClause(s.Using)
	}
	if s.Where != nil {
		p.keyword("WHERE")
		p.expr(s.Where)
	}
	return []string{p.String()}
}

func (g *generator) merge(s *ast.MergeStmt) []string {
	p := newPrinter()
	p.keyword("MERGE INTO")
	p.tableName(s.Target)
	if !s.Target.Alias.IsZero() {
		p.keyword("AS")
		p.ident(s.Target.Alias)
	}
	p.keyword("USING")
	p.tableRef(s.Source)
	p.keyword("ON")
	p.expr(s.On)
	for _, c := range s.Clauses {
		if c.Matched {
			p.keyword("WHEN MATCHED")
		} else {
			p.keyword("WHEN NOT MATCHED")
		}
		if c.Condition != nil {
			p.keyword("AND")
			p.expr(c.Condition)
		}
		p.keyword("THEN")
		switch c.Action {
		case ast.MergeUpdate:
			p.keyword("UPDATE SET")
			p.list(len(c.Set), func(i int) {
				p.ident(c.Set[i].Column)
				p.write(" = ")
				p.expr(c.Set[i].Value)
			})
		case ast.MergeDelete:
			p.keyword("DELETE")
		case ast.MergeInsert:
			p.keyword("INSERT")
			p.columnAliases(c.Columns)
			p.keyword("VALUES")
			p.write("(")
			p.list(len(c.Values), func(i int) { p.expr(c.Values[i]) })
			p.write(")")
		}
	}
	return []string{p.String()}
}

// ---------- DDL ----------

// createDatabase maps CREATE DATABASE onto an in-memory ATTACH plus the
// default PUBLIC schema Snowflake gives every database.
func (g *generator) createDatabase(s *ast.CreateDatabaseStmt) []string {
	name := s.Name.Normalized()
	attach := fmt.Sprintf("ATTACH DATABASE ':memory:' AS %s", quoteIdent(name))
	if s.IfNotExists {
		// DuckDB rejects the DATABASE keyword before IF NOT EXISTS.
		attach = fmt.Sprintf("ATTACH IF NOT EXISTS ':memory:' AS %s", quoteIdent(name))
	}
	schema := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s.PUBLIC", quoteIdent(name))
	return []string{attach, schema}
}

func (g *generator) createSchema(s *ast.CreateSchemaStmt) []string {
	db := s.Database
	if db.IsZero() {
		db = ast.Ident{Name: g.sess.Database}
	}
	var out []string
	if s.OrReplace {
		p := newPrinter()
		p.keyword("DROP SCHEMA IF EXISTS")
		p.ident(db)
		p.write(".")
		p.ident(s.Name)
		p.keyword("CASCADE")
		out = append(out, p.String())
	}
	p := newPrinter()
	p.keyword("CREATE SCHEMA")
	if s.IfNotExists {
		p.keyword("IF NOT EXISTS")
	}
	p.ident(db)
	p.write(".")
	p.ident(s.Name)
	return append(out, p.String())
}

// createTable splits CREATE OR REPLACE into DROP plus CREATE so the
// replacement works across attached databases.
func (g *generator) createTable(s *ast.CreateTableStmt) []string {
	var out []string
	if s.OrReplace {
		p := newPrinter()
		p.keyword("DROP TABLE IF EXISTS")
		p.tableName(s.Name)
		out = append(out, p.String())
	}
	p := newPrinter()
	p.keyword("CREATE TABLE")
	if s.IfNotExists {
		p.keyword("IF NOT EXISTS")
	}
	p.tableName(s.Name)
	if s.AsQuery != nil {
		p.keyword("AS")
		p.selectStmt(s.AsQuery)
		return append(out, p.String())
	}
	p.write("(")
	p.list(len(s.Columns), func(i int) { p.columnDef(s.Columns[i]) })
	p.write(")")
	return append(out, p.String())
}

func (p *printer) columnDef(c ast.ColumnDef) {
	p.ident(c.Name)
	p.typeName(*c.Type)
	if c.NotNull {
		p.keyword("NOT NULL")
	}
	if c.PrimaryKey {
		p.keyword("PRIMARY KEY")
	}
	if c.Default != nil {
		p.keyword("DEFAULT")
		p.expr(c.Default)
	}
}

func (g *generator) createView(s *ast.CreateViewStmt) []string {
	p := newPrinter()
	p.keyword("CREATE")
	if s.OrReplace {
		p.keyword("OR REPLACE")
	}
	p.keyword("VIEW")
	if s.IfNotExists {
		p.keyword("IF NOT EXISTS")
	}
	p.tableName(s.Name)
	p.keyword("AS")
	p.selectStmt(s.Query)
	return []string{p.String()}
}

func (g *generator) drop(s *ast.DropStmt) []string {
	p := newPrinter()
	switch s.Kind {
	case ast.ObjectDatabase:
		p.keyword("DETACH DATABASE")
		if s.IfExists {
			p.keyword("IF EXISTS")
		}
		p.ident(s.Name.Name)
	case ast.ObjectSchema:
		p.keyword("DROP SCHEMA")
		if s.IfExists {
			p.keyword("IF EXISTS")
		}
		p.tableName(s.Name)
		p.keyword("CASCADE")
	case ast.ObjectStage, ast.ObjectRole, ast.ObjectWarehouse:
		// No backing object in DuckDB.
		return nil
	default:
		p.keyword("DROP " + string(s.Kind))
		if s.IfExists {
			p.keyword("IF EXISTS")
		}
		p.tableName(s.Name)
	}
	return []string{p.String()}
}

func (g *generator) truncate(s *ast.TruncateStmt) []string {
	p := newPrinter()
	p.keyword("DELETE FROM")
	p.tableName(s.Table)
	return []string{p.String()}
}

func (g *generator) alterTable(s *ast.AlterTableStmt) []string {
	p := newPrinter()
	p.keyword("ALTER TABLE")
	if s.IfExists {
		p.keyword("IF EXISTS")
	}
	p.tableName(s.Table)
	switch s.Action {
	case ast.AlterRenameTo:
		p.keyword("RENAME TO")
		p.ident(s.NewName.Name)
	case ast.AlterAddColumn:
		p.keyword("ADD COLUMN")
		p.columnDef(s.Column)
	case ast.AlterDropColumn:
		p.keyword("DROP COLUMN")
		p.ident(s.OldCol)
	case ast.AlterRenameColumn:
		p.keyword("RENAME COLUMN")
		p.ident(s.OldCol)
		p.keyword("TO")
		p.ident(s.NewCol)
	}
	return []string{p.String()}
}

// use maps USE DATABASE/SCHEMA to DuckDB's qualified SET schema. Role and
// warehouse switches are session-only.
func (g *generator) use(s *ast.UseStmt) []string {
	switch s.Kind {
	case ast.UseDatabase:
		target := s.Name.Normalized() + ".PUBLIC"
		return []string{fmt.Sprintf("SET schema = '%s'", escapeString(target))}
	case ast.UseSchema:
		db := g.sess.Database
		if !s.Database.IsZero() {
			db = s.Database.Normalized()
		}
		target := db + "." + s.Name.Normalized()
		return []string{fmt.Sprintf("SET schema = '%s'", escapeString(target))}
	}
	return nil
}

// ---------- COPY INTO ----------

// copyOptions maps Snowflake FILE_FORMAT options onto DuckDB COPY options.
var copyOptions = map[string]string{
	"FILE_FORMAT.TYPE":            "FORMAT",
	"FILE_FORMAT.FIELD_DELIMITER": "DELIMITER",
	"FILE_FORMAT.SKIP_HEADER":     "HEADER",
}

func (g *generator) copyInto(s *ast.CopyIntoStmt) []string {
	p := newPrinter()
	p.keyword("COPY")
	p.tableName(s.Target)
	p.columnAliases(s.Columns)
	p.keyword("FROM")
	p.str(g.stagePath(s.From))
	var opts []string
	for key, value := range s.Options {
		mapped, ok := copyOptions[strings.ToUpper(key)]
		if !ok {
			continue
		}
		switch mapped {
		case "HEADER":
			if value != "0" {
				opts = append(opts, "HEADER")
			}
		case "FORMAT":
			opts = append(opts, "FORMAT "+strings.ToUpper(strings.Trim(value, "'")))
		default:
			opts = append(opts, mapped+" '"+escapeString(strings.Trim(value, "'"))+"'")
		}
	}
	if len(opts) > 0 {
		sort.Strings(opts)
		p.write(" (" + strings.Join(opts, ", ") + ")")
	}
	return []string{p.String()}
}

// StagePath resolves a @stage[/path] reference to a filesystem path under
// the stage root. Shared with the PUT/COPY side-effect handling.
func StagePath(root string, ref ast.StageRef) string {
	path := filepath.Join(root, ref.Name)
	if ref.Path != "" {
		path = filepath.Join(path, ref.Path)
	}
	return path
}

func (g *generator) stagePath(ref ast.StageRef) string {
	return StagePath(g.sess.StageRoot, ref)
}

// ---------- helpers ----------

func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
