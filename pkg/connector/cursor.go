package connector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/infoschema"
	"github.com/leapstack-labs/snowduck/pkg/parser"
	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

// Cursor executes statements on one connection and exposes the last result
// set. State resets at the start of every Execute.
type Cursor struct {
	conn *Connection

	result      *resultSet
	description []ColumnInfo
	rowCount    int64
	sfqid       string
	sqlState    string
	lastTable   string
	closed      bool
}

// SfQID returns the query id of the last execution.
func (cur *Cursor) SfQID() string { return cur.sfqid }

// SQLState returns the SQLSTATE of the last failed execution, empty on
// success.
func (cur *Cursor) SQLState() string { return cur.sqlState }

// RowCount returns the affected or returned row count of the last
// execution; -1 before the first one.
func (cur *Cursor) RowCount() int64 { return cur.rowCount }

// LastTableName reports the table referenced by the last single-table
// SELECT, used for metadata enrichment.
func (cur *Cursor) LastTableName() string { return cur.lastTable }

// Description returns the Snowflake-shaped column metadata of the last
// result.
func (cur *Cursor) Description() []ColumnInfo { return cur.description }

// FetchOne returns the next row, or nil when exhausted.
func (cur *Cursor) FetchOne() []any { return cur.result.fetchOne() }

// FetchMany returns up to n further rows.
func (cur *Cursor) FetchMany(n int) [][]any { return cur.result.fetchMany(n) }

// FetchAll returns every remaining row.
func (cur *Cursor) FetchAll() [][]any { return cur.result.fetchAll() }

// Close makes the cursor unusable. Closing twice is fine.
func (cur *Cursor) Close() { cur.closed = true }

// IsClosed reports whether Close was called.
func (cur *Cursor) IsClosed() bool { return cur.closed }

// Execute runs one statement, or a ;-separated batch when no parameters
// are bound. Positional args bind natively; a single map argument
// substitutes %(name)s placeholders client-side.
func (cur *Cursor) Execute(ctx context.Context, query string, args ...any) error {
	if cur.closed {
		return cur.fail(errClosed("cursor"))
	}
	if cur.conn.closed {
		return cur.fail(errClosed("connection"))
	}
	cur.sfqid = uuid.NewString()
	cur.sqlState = ""
	cur.result = nil
	cur.description = nil
	cur.rowCount = -1

	parts := splitNonEmpty(query)
	if len(parts) == 0 {
		return cur.fail(newSyntaxError("empty SQL statement"))
	}
	if len(parts) > 1 && len(args) > 0 {
		return cur.fail(&SnowflakeError{
			Number:   ErrSyntax,
			SQLState: SQLStateMultiStatement,
			Message:  "Multiple SQL statements in a single API call are not supported; use one API call per statement instead.",
		})
	}
	for _, part := range parts {
		stmt, err := parser.Parse(part)
		if err != nil {
			return cur.fail(newSyntaxError(err.Error()))
		}
		if err := cur.executeStatement(ctx, stmt, args); err != nil {
			return cur.fail(err)
		}
	}
	return nil
}

// Describe returns the result description of a query without materializing
// its rows.
func (cur *Cursor) Describe(ctx context.Context, query string) ([]ColumnInfo, error) {
	if err := cur.Execute(ctx, query); err != nil {
		return nil, err
	}
	return cur.description, nil
}

func (cur *Cursor) fail(err error) error {
	var sfErr *SnowflakeError
	if errors.As(err, &sfErr) {
		sfErr.QueryID = cur.sfqid
		cur.sqlState = sfErr.SQLState
	}
	return err
}

func (cur *Cursor) setResult(rs *resultSet) {
	cur.result = rs
	cur.description = rs.columns
	cur.rowCount = int64(len(rs.rows))
}

//nolint:gocyclo // One arm per command kind keeps the dispatch table flat.
func (cur *Cursor) executeStatement(ctx context.Context, stmt ast.Stmt, args []any) error {
	if named := namedArgs(args); named != nil {
		substituteNamed(stmt, named)
		args = nil
	}

	switch s := stmt.(type) {
	case *ast.UseStmt:
		return cur.execUse(ctx, s)
	case *ast.SetStmt:
		return cur.execSet(s)
	case *ast.UnsetStmt:
		delete(cur.conn.sess.Variables, s.Name.Normalized())
		cur.setResult(statusResult(msgSuccess))
		return nil
	case *ast.AlterSessionStmt:
		// Session parameters are accepted and ignored.
		cur.setResult(statusResult(msgSuccess))
		return nil
	case *ast.CreateStageStmt:
		return cur.execCreateStage(s)
	case *ast.PutStmt:
		return cur.execPut(s)
	case *ast.DescribeStmt:
		return cur.execDescribe(ctx, s)
	}

	sess := cur.conn.sess
	sqls, err := cur.conn.connector.trans.Translate(stmt, sess)
	if err != nil {
		return err
	}
	if err := cur.conn.syncSchema(ctx); err != nil {
		return err
	}

	switch s := stmt.(type) {
	case *ast.SelectStmt:
		cur.inferTableName(s)
		return cur.execQuery(ctx, sqls[0], args)
	case *ast.ShowStmt:
		if len(sqls) == 0 {
			cur.setResult(statusResult(msgSuccess))
			return nil
		}
		return cur.execQuery(ctx, sqls[0], nil)
	case *ast.InsertStmt:
		count, err := cur.execAll(ctx, sqls, args)
		if err != nil {
			return err
		}
		cur.setDMLResult(dmlResult("INSERT", count), count)
		return nil
	case *ast.UpdateStmt:
		count, err := cur.execAll(ctx, sqls, args)
		if err != nil {
			return err
		}
		cur.setDMLResult(dmlResult("UPDATE", count), count)
		return nil
	case *ast.DeleteStmt:
		count, err := cur.execAll(ctx, sqls, args)
		if err != nil {
			return err
		}
		cur.setDMLResult(dmlResult("DELETE", count), count)
		return nil
	case *ast.MergeStmt:
		count, err := cur.execAll(ctx, sqls, args)
		if err != nil {
			return err
		}
		cur.setDMLResult(dmlResult("INSERT", count), count)
		return nil
	case *ast.CopyIntoStmt:
		return cur.execCopyInto(ctx, s, sqls)
	default:
		if _, err := cur.execAll(ctx, sqls, nil); err != nil {
			return err
		}
		cur.applyCatalogEffects(ctx, stmt)
		cur.setResult(ddlResult(stmt))
		return nil
	}
}

// execAll runs every rendered statement and returns the affected-row count
// of the last one.
func (cur *Cursor) execAll(ctx context.Context, sqls []string, args []any) (int64, error) {
	var count int64
	for _, q := range sqls {
		res, err := cur.conn.conn.ExecContext(ctx, q, args...)
		if err != nil {
			if mapped := translateEngineError(err); mapped != nil {
				return 0, mapped
			}
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			count = n
		}
	}
	return count, nil
}

func (cur *Cursor) execQuery(ctx context.Context, query string, args []any) error {
	rows, err := cur.conn.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return translateEngineError(err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return translateEngineError(err)
	}
	infos, err := describeColumns(types, cur.tableMetadata(ctx))
	if err != nil {
		return err
	}

	rs := &resultSet{columns: infos}
	for rows.Next() {
		row := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return translateEngineError(err)
		}
		rs.rows = append(rs.rows, row)
	}
	if err := rows.Err(); err != nil {
		return translateEngineError(err)
	}
	cur.setResult(rs)
	return nil
}

func (cur *Cursor) setDMLResult(rs *resultSet, count int64) {
	cur.setResult(rs)
	cur.rowCount = count
}

func (cur *Cursor) execUse(ctx context.Context, s *ast.UseStmt) error {
	sess := cur.conn.sess
	name := s.Name.Normalized()
	switch s.Kind {
	case ast.UseRole:
		sess.Role = name
	case ast.UseWarehouse:
		sess.Warehouse = name
	case ast.UseDatabase:
		sess.Database = name
		sess.Schema = preprocess.DefaultSchema
		if err := cur.conn.syncSchema(ctx); err != nil {
			return err
		}
	case ast.UseSchema:
		if !s.Database.IsZero() {
			sess.Database = s.Database.Normalized()
		}
		if strings.EqualFold(name, InfoSchemaName) {
			sess.Schema = InfoSchemaName
		} else {
			sess.Schema = name
		}
		if err := cur.conn.syncSchema(ctx); err != nil {
			return err
		}
	}
	cur.setResult(statusResult(msgSuccess))
	return nil
}

func (cur *Cursor) execSet(s *ast.SetStmt) error {
	value, err := sessionValue(s.Value)
	if err != nil {
		return err
	}
	cur.conn.sess.Variables[s.Name.Normalized()] = value
	cur.setResult(statusResult(msgSuccess))
	return nil
}

// inferTableName remembers the table of a simple single-table SELECT.
func (cur *Cursor) inferTableName(s *ast.SelectStmt) {
	cur.lastTable = ""
	if s.Body == nil || s.Body.Op != ast.SetOpNone || s.Body.Left == nil {
		return
	}
	from := s.Body.Left.From
	if len(from) != 1 {
		return
	}
	if t, ok := from[0].(*ast.TableName); ok {
		cur.lastTable = t.Name.Normalized()
	}
}

// tableMetadata looks catalog metadata up for the inferred table; best
// effort, a miss returns nil.
func (cur *Cursor) tableMetadata(ctx context.Context) []infoschema.Column {
	if cur.lastTable == "" {
		return nil
	}
	cols, err := cur.conn.connector.schemas.Columns(ctx, cur.conn.sess.Database, cur.conn.actualSchema(), cur.lastTable)
	if err != nil {
		return nil
	}
	return cols
}

// applyCatalogEffects keeps the catalog managers in step with executed DDL.
func (cur *Cursor) applyCatalogEffects(ctx context.Context, stmt ast.Stmt) {
	m := cur.conn.connector.schemas
	sess := cur.conn.sess
	switch s := stmt.(type) {
	case *ast.CreateDatabaseStmt:
		// Best effort; failures surface on first use of the database.
		_ = m.EnsureDatabase(ctx, s.Name.Normalized())
	case *ast.CreateTableStmt:
		if s.OrReplace {
			db, schema := tableScope(s.Name, sess)
			m.Invalidate(db, schema, s.Name.Name.Normalized())
		}
	case *ast.DropStmt:
		switch s.Kind {
		case ast.ObjectDatabase:
			m.ClearCache()
		case ast.ObjectTable, ast.ObjectView:
			db, schema := tableScope(s.Name, sess)
			m.Invalidate(db, schema, s.Name.Name.Normalized())
		}
	case *ast.AlterTableStmt:
		db, schema := tableScope(s.Table, sess)
		m.Invalidate(db, schema, s.Table.Name.Normalized())
	}
}

// tableScope resolves an optionally qualified table name against the
// session. An unqualified schema returns empty so invalidation covers every
// schema.
func tableScope(t *ast.TableName, sess *preprocess.Session) (string, string) {
	db := sess.Database
	if !t.Database.IsZero() {
		db = t.Database.Normalized()
	}
	schema := ""
	if !t.Schema.IsZero() {
		schema = t.Schema.Normalized()
	}
	return db, schema
}

// ddlResult fabricates the canned row of a successfully executed DDL or
// transaction statement.
func ddlResult(stmt ast.Stmt) *resultSet {
	switch s := stmt.(type) {
	case *ast.CreateDatabaseStmt:
		return createdResult("Database", s.Name.Normalized())
	case *ast.CreateSchemaStmt:
		return createdResult("Schema", s.Name.Normalized())
	case *ast.CreateTableStmt:
		return createdResult("Table", s.Name.Name.Normalized())
	case *ast.CreateViewStmt:
		return createdResult("View", s.Name.Name.Normalized())
	case *ast.DropStmt:
		return droppedResult(s.Name.Name.Normalized())
	default:
		return statusResult(msgSuccess)
	}
}

// sessionValue evaluates the literal value of a SET statement.
func sessionValue(e ast.Expr) (any, error) {
	switch v := e.(type) {
	case *ast.Literal:
		return preprocess.ParseVariableValue(v), nil
	case *ast.UnaryExpr:
		if lit, ok := v.Expr.(*ast.Literal); ok && lit.Type == ast.LiteralNumber {
			return preprocess.ParseVariableValue(&ast.Literal{
				Type:  ast.LiteralNumber,
				Value: v.Op.String() + lit.Value,
			}), nil
		}
	}
	return nil, newSyntaxError("SET supports literal values only")
}

// namedArgs returns the map when the single bound argument is a name/value
// map.
func namedArgs(args []any) map[string]any {
	if len(args) != 1 {
		return nil
	}
	m, ok := args[0].(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// substituteNamed replaces %(name)s placeholders with literals; float
// values carry an explicit DOUBLE cast to match warehouse float semantics.
func substituteNamed(stmt ast.Stmt, values map[string]any) {
	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		ph, ok := e.(*ast.Placeholder)
		if !ok {
			return e
		}
		v, bound := values[ph.Name]
		if !bound {
			return e
		}
		return bindLiteral(v)
	}}
	r.RewriteStmt(stmt)
}

func bindLiteral(v any) ast.Expr {
	switch val := v.(type) {
	case nil:
		return &ast.Literal{Type: ast.LiteralNull, Value: "NULL"}
	case bool:
		if val {
			return &ast.Literal{Type: ast.LiteralBool, Value: "TRUE"}
		}
		return &ast.Literal{Type: ast.LiteralBool, Value: "FALSE"}
	case int:
		return &ast.Literal{Type: ast.LiteralNumber, Value: strconv.Itoa(val)}
	case int64:
		return &ast.Literal{Type: ast.LiteralNumber, Value: strconv.FormatInt(val, 10)}
	case float64:
		return &ast.CastExpr{
			Expr: &ast.Literal{Type: ast.LiteralNumber, Value: strconv.FormatFloat(val, 'g', -1, 64)},
			Type: &ast.TypeName{Name: "DOUBLE"},
		}
	case string:
		return &ast.Literal{Type: ast.LiteralString, Value: val}
	default:
		return &ast.Literal{Type: ast.LiteralString, Value: fmt.Sprintf("%v", val)}
	}
}

func splitNonEmpty(query string) []string {
	var parts []string
	for _, part := range parser.SplitStatements(query) {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
