package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/parser"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

func parseSelect(t *testing.T, sql string) *ast.SelectStmt {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	sel, ok := stmt.(*ast.SelectStmt)
	require.True(t, ok, "expected SelectStmt, got %T", stmt)
	return sel
}

func TestParseSelectCore(t *testing.T) {
	sel := parseSelect(t, "SELECT a, b AS total FROM t WHERE a > 1 GROUP BY a HAVING count(*) > 2 ORDER BY a DESC LIMIT 10")
	core := sel.Body.Left

	require.Len(t, core.Columns, 2)
	assert.Equal(t, "total", core.Columns[1].Alias.Name)
	require.Len(t, core.From, 1)
	assert.Equal(t, "T", core.From[0].(*ast.TableName).Name.Normalized())
	require.NotNil(t, core.Where)
	require.Len(t, core.GroupBy, 1)
	require.NotNil(t, core.Having)
	require.Len(t, core.OrderBy, 1)
	assert.True(t, core.OrderBy[0].Desc)
	assert.Nil(t, core.OrderBy[0].NullsFirst, "no explicit NULLS ordering given")
	require.NotNil(t, core.Limit)
}

func TestParseExplicitNullsOrdering(t *testing.T) {
	sel := parseSelect(t, "SELECT a FROM t ORDER BY a ASC NULLS FIRST")
	item := sel.Body.Left.OrderBy[0]
	require.NotNil(t, item.NullsFirst)
	assert.True(t, *item.NullsFirst)
}

func TestParseQualify(t *testing.T) {
	sel := parseSelect(t, "SELECT a FROM t QUALIFY row_number() OVER (PARTITION BY a ORDER BY b) = 1")
	require.NotNil(t, sel.Body.Left.Qualify)
}

func TestParseSetOperations(t *testing.T) {
	sel := parseSelect(t, "SELECT a FROM t1 UNION ALL SELECT a FROM t2")
	assert.Equal(t, ast.SetOpUnion, sel.Body.Op)
	assert.True(t, sel.Body.All)
	require.NotNil(t, sel.Body.Right)
}

func TestParseWithClause(t *testing.T) {
	sel := parseSelect(t, "WITH base AS (SELECT 1 AS a) SELECT a FROM base")
	require.NotNil(t, sel.With)
	require.Len(t, sel.With.CTEs, 1)
	assert.Equal(t, "BASE", sel.With.CTEs[0].Name.Normalized())
}

func TestParseQuotedIdentifiers(t *testing.T) {
	sel := parseSelect(t, `SELECT "MixedCase" FROM "my table"`)
	col := sel.Body.Left.Columns[0].Expr.(*ast.ColumnRef)
	assert.True(t, col.Column.Quoted)
	assert.Equal(t, "MixedCase", col.Column.Name)
	from := sel.Body.Left.From[0].(*ast.TableName)
	assert.True(t, from.Name.Quoted)
	assert.Equal(t, "my table", from.Name.Name)
}

func TestParseJoins(t *testing.T) {
	sel := parseSelect(t, "SELECT * FROM a LEFT JOIN b ON a.id = b.id JOIN c USING (id)")
	from := sel.Body.Left.From
	require.Len(t, from, 3)

	left := from[1].(*ast.Join)
	assert.Equal(t, ast.JoinLeft, left.Type)
	require.NotNil(t, left.Condition)

	using := from[2].(*ast.Join)
	assert.Equal(t, ast.JoinInner, using.Type)
	require.Len(t, using.Using, 1)
	assert.Equal(t, "ID", using.Using[0].Normalized())
}

func TestParsePostfixCast(t *testing.T) {
	sel := parseSelect(t, "SELECT '2024-01-01'::DATE")
	cast := sel.Body.Left.Columns[0].Expr.(*ast.CastExpr)
	assert.Equal(t, "DATE", cast.Type.Name)
	assert.False(t, cast.Try)
}

func TestParseSemiStructuredPath(t *testing.T) {
	sel := parseSelect(t, "SELECT payload:user.id[0] FROM events")
	path := sel.Body.Left.Columns[0].Expr.(*ast.JSONPathExpr)
	require.Len(t, path.Path, 3)
	assert.Equal(t, "user", path.Path[0].Key)
	assert.Equal(t, "id", path.Path[1].Key)
	assert.Equal(t, "", path.Path[2].Key)
	assert.Equal(t, 0, path.Path[2].Index)
}

func TestParseSessionVariable(t *testing.T) {
	sel := parseSelect(t, "SELECT $threshold + 1")
	bin := sel.Body.Left.Columns[0].Expr.(*ast.BinaryExpr)
	v := bin.Left.(*ast.SessionVar)
	assert.Equal(t, "THRESHOLD", v.Name)
}

func TestParsePlaceholders(t *testing.T) {
	sel := parseSelect(t, "SELECT * FROM t WHERE a = ? AND b = %(name)s")
	where := sel.Body.Left.Where.(*ast.BinaryExpr)
	assert.Equal(t, token.AND, where.Op)

	first := where.Left.(*ast.BinaryExpr).Right.(*ast.Placeholder)
	assert.Equal(t, 1, first.Index)
	assert.Empty(t, first.Name)

	second := where.Right.(*ast.BinaryExpr).Right.(*ast.Placeholder)
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "name", second.Name)
}

func TestParseCreateTable(t *testing.T) {
	stmt, err := parser.Parse("CREATE OR REPLACE TABLE db.s.t (a NUMBER(10,2) NOT NULL, b VARCHAR DEFAULT 'x')")
	require.NoError(t, err)
	ct := stmt.(*ast.CreateTableStmt)
	assert.True(t, ct.OrReplace)
	assert.Equal(t, "DB", ct.Name.Database.Normalized())
	require.Len(t, ct.Columns, 2)
	assert.Equal(t, "NUMBER", ct.Columns[0].Type.Name)
	assert.Equal(t, []int{10, 2}, ct.Columns[0].Type.Args)
	assert.True(t, ct.Columns[0].NotNull)
	require.NotNil(t, ct.Columns[1].Default)
}

func TestParseInsertOverwrite(t *testing.T) {
	stmt, err := parser.Parse("INSERT OVERWRITE INTO t (a) VALUES (1), (2)")
	require.NoError(t, err)
	ins := stmt.(*ast.InsertStmt)
	assert.True(t, ins.Overwrite)
	require.Len(t, ins.Values, 2)
}

func TestParseMerge(t *testing.T) {
	stmt, err := parser.Parse(`MERGE INTO t USING s ON t.id = s.id
		WHEN MATCHED THEN UPDATE SET v = s.v
		WHEN NOT MATCHED THEN INSERT (id, v) VALUES (s.id, s.v)`)
	require.NoError(t, err)
	m := stmt.(*ast.MergeStmt)
	require.Len(t, m.Clauses, 2)
	assert.True(t, m.Clauses[0].Matched)
	assert.Equal(t, ast.MergeUpdate, m.Clauses[0].Action)
	assert.False(t, m.Clauses[1].Matched)
	assert.Equal(t, ast.MergeInsert, m.Clauses[1].Action)
}

func TestParseUseForms(t *testing.T) {
	tests := []struct {
		sql  string
		kind ast.UseKind
		name string
	}{
		{"USE DATABASE db1", ast.UseDatabase, "DB1"},
		{"USE db1", ast.UseDatabase, "DB1"},
		{"USE SCHEMA s1", ast.UseSchema, "S1"},
		{"USE ROLE sysadmin", ast.UseRole, "SYSADMIN"},
		{"USE WAREHOUSE wh", ast.UseWarehouse, "WH"},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			stmt, err := parser.Parse(tt.sql)
			require.NoError(t, err)
			use := stmt.(*ast.UseStmt)
			assert.Equal(t, tt.kind, use.Kind)
			assert.Equal(t, tt.name, use.Name.Normalized())
		})
	}
}

func TestParseUseSchemaQualified(t *testing.T) {
	stmt, err := parser.Parse("USE SCHEMA db1.raw")
	require.NoError(t, err)
	use := stmt.(*ast.UseStmt)
	assert.Equal(t, ast.UseSchema, use.Kind)
	assert.Equal(t, "DB1", use.Database.Normalized())
	assert.Equal(t, "RAW", use.Name.Normalized())
}

func TestParseShowVariants(t *testing.T) {
	stmt, err := parser.Parse("SHOW TERSE TABLES LIKE 'T%' IN SCHEMA db1.s1")
	require.NoError(t, err)
	show := stmt.(*ast.ShowStmt)
	assert.True(t, show.Terse)
	assert.Equal(t, ast.ObjectTable, show.Kind)
	assert.Equal(t, "T%", show.Like)
	assert.Equal(t, "SCHEMA", show.InKind)
	require.NotNil(t, show.InName)

	stmt, err = parser.Parse("SHOW OBJECTS IN ACCOUNT")
	require.NoError(t, err)
	show = stmt.(*ast.ShowStmt)
	assert.True(t, show.Objects)
	assert.Equal(t, "ACCOUNT", show.InKind)
}

func TestParsePut(t *testing.T) {
	stmt, err := parser.Parse("PUT file:///tmp/data.csv @mystage/raw")
	require.NoError(t, err)
	put := stmt.(*ast.PutStmt)
	assert.Equal(t, "/tmp/data.csv", put.LocalPath)
	assert.Equal(t, "MYSTAGE", put.Stage.Name)
	assert.Equal(t, "raw", put.Stage.Path)
}

func TestParseCopyInto(t *testing.T) {
	stmt, err := parser.Parse("COPY INTO t (a, b) FROM @stg/f.csv FILE_FORMAT = (TYPE = 'CSV' SKIP_HEADER = 1) ON_ERROR = 'CONTINUE'")
	require.NoError(t, err)
	cp := stmt.(*ast.CopyIntoStmt)
	assert.Equal(t, "T", cp.Target.Name.Normalized())
	require.Len(t, cp.Columns, 2)
	assert.Equal(t, "STG", cp.From.Name)
	assert.Equal(t, "f.csv", cp.From.Path)
	assert.Equal(t, "CSV", cp.Options["FILE_FORMAT.TYPE"])
	assert.Equal(t, "1", cp.Options["FILE_FORMAT.SKIP_HEADER"])
	assert.Equal(t, "CONTINUE", cp.Options["ON_ERROR"])
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"SELEKT 1",
		"SELECT FROM",
		"CREATE TABLE t (a INTEGER",
		"PUT /tmp/x @stage",
	}
	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			_, err := parser.Parse(sql)
			require.Error(t, err)
			var perr *parser.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestSplitStatements(t *testing.T) {
	parts := parser.SplitStatements("SELECT 1; SELECT 'a;b'; -- trailing; comment\nSELECT 2;")
	require.Len(t, parts, 3)
	assert.Contains(t, parts[1], "'a;b'")
	assert.Contains(t, parts[2], "SELECT 2")
}

func TestParseScript(t *testing.T) {
	stmts, err := parser.ParseScript("CREATE TABLE t (a INTEGER); INSERT INTO t VALUES (1);")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.IsType(t, &ast.CreateTableStmt{}, stmts[0])
	assert.IsType(t, &ast.InsertStmt{}, stmts[1])
}
