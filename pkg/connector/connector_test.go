package connector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

func openConnection(t *testing.T) *Connection {
	t.Helper()
	ctx := context.Background()
	c, err := Open(ctx, Config{Database: "DB1", StageRoot: t.TempDir(), Timezone: "UTC"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	conn, err := c.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func mustExec(t *testing.T, cur *Cursor, sql string) {
	t.Helper()
	require.NoError(t, cur.Execute(context.Background(), sql), "statement: %s", sql)
}

func TestConnectionDefaults(t *testing.T) {
	conn := openConnection(t)
	assert.Equal(t, "DB1", conn.Database())
	assert.Equal(t, preprocess.DefaultSchema, conn.Schema())
	assert.Equal(t, preprocess.DefaultRole, conn.Role())
	assert.Equal(t, preprocess.DefaultWarehouse, conn.Warehouse())
	assert.False(t, conn.IsClosed())
}

func TestCaseFolding(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE DATABASE foo")
	mustExec(t, cur, "USE DATABASE foo")
	assert.Equal(t, "FOO", conn.Database())
	assert.Equal(t, "PUBLIC", conn.Schema())

	mustExec(t, cur, "SELECT current_database()")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.Equal(t, "FOO", row[0])
}

func TestQuotedIdentifiersPreserveCase(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, `CREATE DATABASE "foo"`)
	mustExec(t, cur, `USE DATABASE "foo"`)
	assert.Equal(t, "foo", conn.Database())

	mustExec(t, cur, "SELECT current_database()")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.Equal(t, "foo", row[0])
}

func TestDescribeRoundTrip(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T1 (A INTEGER NOT NULL, B VARCHAR)")
	mustExec(t, cur, "DESCRIBE TABLE T1")

	rows := cur.FetchAll()
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"A", "NUMBER(38,0)", "COLUMN", "N", nil, "N", "N", nil, nil, nil}, rows[0])
	assert.Equal(t, []any{"B", fmt.Sprintf("VARCHAR(%d)", maxTextLength), "COLUMN", "Y", nil, "N", "N", nil, nil, nil}, rows[1])
}

func TestDescribeMissingTable(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	err := cur.Execute(context.Background(), "DESCRIBE TABLE NO_SUCH")
	var sfErr *SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, ErrObjectNotFound, sfErr.Number)
	assert.Equal(t, SQLStateNotFound, sfErr.SQLState)
	assert.Equal(t, SQLStateNotFound, cur.SQLState())
}

func TestQueryDescriptionFromCatalog(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T2 (A INTEGER NOT NULL, B VARCHAR)")
	mustExec(t, cur, "INSERT INTO T2 VALUES (1, 'x')")
	mustExec(t, cur, "SELECT * FROM T2")

	desc := cur.Description()
	require.Len(t, desc, 2)
	assert.Equal(t, TypeFixed, desc[0].Type)
	assert.False(t, desc[0].Nullable)
	assert.EqualValues(t, 38, desc[0].Precision)
	assert.EqualValues(t, 0, desc[0].Scale)
	assert.Equal(t, TypeText, desc[1].Type)
	assert.True(t, desc[1].Nullable)
	assert.EqualValues(t, maxTextLength, desc[1].Length)
}

func TestDateCoercion(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	// No explicit cast in the input: the string literal must be coerced.
	mustExec(t, cur, "SELECT ADD_MONTHS('2024-01-31', 1)")
	row := cur.FetchOne()
	require.NotNil(t, row)
	ts, ok := row[0].(time.Time)
	require.True(t, ok, "expected a temporal value, got %T", row[0])
	assert.Equal(t, "2024-02-29", ts.Format("2006-01-02"))
}

func TestSessionVariables(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "SET x = 5")
	mustExec(t, cur, "SELECT $x + 1")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.EqualValues(t, 6, row[0])

	mustExec(t, cur, "UNSET x")
	err := cur.Execute(context.Background(), "SELECT $x")
	var undef *preprocess.UndefinedVariableError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, "X", undef.Name)
}

func TestInsertResultShape(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T3 (A INTEGER)")
	mustExec(t, cur, "INSERT INTO T3 VALUES (1), (2)")

	desc := cur.Description()
	require.Len(t, desc, 1)
	assert.Equal(t, "number of rows inserted", desc[0].Name)
	rows := cur.FetchAll()
	require.Len(t, rows, 1)
	assert.Equal(t, []any{int64(2)}, rows[0])
	assert.EqualValues(t, 2, cur.RowCount())
}

func TestUpdateAndDeleteResultShapes(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T4 (A INTEGER)")
	mustExec(t, cur, "INSERT INTO T4 VALUES (1), (2), (3)")

	mustExec(t, cur, "UPDATE T4 SET A = A + 10 WHERE A > 1")
	desc := cur.Description()
	require.Len(t, desc, 2)
	assert.Equal(t, "number of rows updated", desc[0].Name)
	assert.Equal(t, "number of multi-joined rows updated", desc[1].Name)
	assert.Equal(t, []any{int64(2), int64(0)}, cur.FetchOne())

	mustExec(t, cur, "DELETE FROM T4 WHERE A = 1")
	assert.Equal(t, "number of rows deleted", cur.Description()[0].Name)
	assert.EqualValues(t, 1, cur.RowCount())
}

func TestMissingTableSQLState(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	err := cur.Execute(context.Background(), "SELECT * FROM NO_SUCH_TABLE")
	var sfErr *SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, "42S02", sfErr.SQLState)
	assert.Equal(t, ErrObjectNotFound, sfErr.Number)
	assert.Equal(t, cur.SfQID(), sfErr.QueryID)
}

func TestSyntaxError(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	err := cur.Execute(context.Background(), "SELEKT 1")
	var sfErr *SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, ErrSyntax, sfErr.Number)
	assert.Equal(t, SQLStateSyntax, sfErr.SQLState)
	assert.Contains(t, sfErr.Message, "SQL compilation error:")
}

func TestMultiStatementWithParams(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	err := cur.Execute(context.Background(), "SELECT ?; SELECT ?", 1)
	var sfErr *SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, SQLStateMultiStatement, sfErr.SQLState)
}

func TestMultiStatementBatch(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T5 (A INTEGER); INSERT INTO T5 VALUES (7); SELECT A FROM T5")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.EqualValues(t, 7, row[0])
}

func TestPositionalBinding(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T6 (A INTEGER, B VARCHAR)")
	require.NoError(t, cur.Execute(context.Background(), "INSERT INTO T6 VALUES (?, ?)", 1, "one"))
	assert.EqualValues(t, 1, cur.RowCount())

	require.NoError(t, cur.Execute(context.Background(), "SELECT B FROM T6 WHERE A = ?", 1))
	assert.Equal(t, []any{"one"}, cur.FetchOne())
}

func TestNamedBinding(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T7 (A INTEGER, B VARCHAR, C DOUBLE)")
	args := map[string]any{"a": 2, "b": "two", "c": 2.5}
	require.NoError(t, cur.Execute(context.Background(), "INSERT INTO T7 VALUES (%(a)s, %(b)s, %(c)s)", args))

	mustExec(t, cur, "SELECT A, B, C FROM T7")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.EqualValues(t, 2, row[0])
	assert.Equal(t, "two", row[1])
	assert.Equal(t, 2.5, row[2])
}

func TestCommitWithoutTransaction(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "COMMIT")
	assert.Equal(t, []any{msgSuccess}, cur.FetchOne())
	mustExec(t, cur, "ROLLBACK")
	assert.Equal(t, []any{msgSuccess}, cur.FetchOne())
}

func TestTransactionRollback(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T8 (A INTEGER)")
	mustExec(t, cur, "BEGIN")
	mustExec(t, cur, "INSERT INTO T8 VALUES (1)")
	mustExec(t, cur, "ROLLBACK")

	mustExec(t, cur, "SELECT count(*) FROM T8")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.EqualValues(t, 0, row[0])
}

func TestUseSchemaInformationSchema(t *testing.T) {
	conn := openConnection(t)
	require.NoError(t, conn.UseSchema(context.Background(), "information_schema"))
	assert.Equal(t, InfoSchemaName, conn.Schema())

	cur := conn.Cursor()
	mustExec(t, cur, "SELECT current_schema()")
	assert.Equal(t, []any{InfoSchemaName}, cur.FetchOne())

	require.NoError(t, conn.UseSchema(context.Background(), "PUBLIC"))
	assert.Equal(t, "PUBLIC", conn.Schema())
}

func TestUseRoleAndWarehouse(t *testing.T) {
	conn := openConnection(t)
	require.NoError(t, conn.UseRole(context.Background(), "analyst"))
	assert.Equal(t, "ANALYST", conn.Role())
	require.NoError(t, conn.UseWarehouse(context.Background(), "compute_wh"))
	assert.Equal(t, "COMPUTE_WH", conn.Warehouse())
}

func TestShowDatabases(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE DATABASE EXTRA")
	mustExec(t, cur, "SHOW DATABASES")

	var names []string
	for _, row := range cur.FetchAll() {
		names = append(names, fmt.Sprintf("%v", row[1]))
	}
	assert.Contains(t, names, "DB1")
	assert.Contains(t, names, "EXTRA")
	assert.NotContains(t, names, "system")
}

func TestStageWorkflow(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(local, []byte("A,B\n1,one\n2,two\n"), 0o644))

	mustExec(t, cur, "CREATE STAGE mystage")
	require.NoError(t, cur.Execute(ctx, fmt.Sprintf("PUT file://%s @mystage", local)))
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.Equal(t, "data.csv", row[0])
	assert.Equal(t, "UPLOADED", row[4])

	mustExec(t, cur, "CREATE TABLE LOADS (A INTEGER, B VARCHAR)")
	mustExec(t, cur, "COPY INTO LOADS FROM @mystage/data.csv FILE_FORMAT = (TYPE = 'CSV' SKIP_HEADER = 1)")
	assert.EqualValues(t, 2, cur.RowCount())
	loaded := cur.FetchOne()
	require.NotNil(t, loaded)
	assert.Equal(t, "LOADED", loaded[1])

	mustExec(t, cur, "SELECT count(*) FROM LOADS")
	count := cur.FetchOne()
	require.NotNil(t, count)
	assert.EqualValues(t, 2, count[0])
}

func TestClosedConnectionRejectsStatements(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()
	require.NoError(t, conn.Close())
	assert.True(t, conn.IsClosed())

	err := cur.Execute(context.Background(), "SELECT 1")
	var sfErr *SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, ErrConnectionClosed, sfErr.Number)
	assert.Equal(t, SQLStateConnection, sfErr.SQLState)
}

func TestClosedCursorRejectsStatements(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()
	cur.Close()
	assert.True(t, cur.IsClosed())

	err := cur.Execute(context.Background(), "SELECT 1")
	var sfErr *SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, ErrConnectionClosed, sfErr.Number)
}

func TestSharedCatalogAcrossConnections(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, Config{Database: "DB1", StageRoot: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	first, err := c.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	second, err := c.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	cur := first.Cursor()
	mustExec(t, cur, "CREATE TABLE SHARED (A INTEGER)")
	mustExec(t, cur, "INSERT INTO SHARED VALUES (42)")

	other := second.Cursor()
	mustExec(t, other, "SELECT A FROM SHARED")
	row := other.FetchOne()
	require.NotNil(t, row)
	assert.EqualValues(t, 42, row[0])
}

func TestFetchVariants(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE TABLE T9 (A INTEGER)")
	mustExec(t, cur, "INSERT INTO T9 VALUES (1), (2), (3)")
	mustExec(t, cur, "SELECT A FROM T9 ORDER BY A")

	assert.EqualValues(t, 3, cur.RowCount())
	first := cur.FetchOne()
	require.NotNil(t, first)
	assert.EqualValues(t, 1, first[0])

	next := cur.FetchMany(5)
	require.Len(t, next, 2)
	assert.Nil(t, cur.FetchOne())
	assert.Empty(t, cur.FetchAll())
}

func TestSfQIDChangesPerExecution(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "SELECT 1")
	first := cur.SfQID()
	require.NotEmpty(t, first)
	mustExec(t, cur, "SELECT 2")
	assert.NotEqual(t, first, cur.SfQID())
	assert.Empty(t, cur.SQLState())
}

func TestUnmappedTypeIsFatal(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	err := cur.Execute(context.Background(), "SELECT STRING_SPLIT('a,b', ',')")
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*preprocess.UndefinedVariableError)))
	assert.Contains(t, err.Error(), "no Snowflake type mapping")
}

func TestDropDatabase(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "CREATE DATABASE GONE")
	mustExec(t, cur, "DROP DATABASE GONE")
	assert.Equal(t, []any{"GONE successfully dropped."}, cur.FetchOne())

	err := cur.Execute(context.Background(), "USE DATABASE GONE; SELECT * FROM SOME_TABLE")
	require.Error(t, err)
}

func TestAlterSessionIsAccepted(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "ALTER SESSION SET QUERY_TAG = 'etl'")
	assert.Equal(t, []any{msgSuccess}, cur.FetchOne())
}

func TestInitcapMacro(t *testing.T) {
	conn := openConnection(t)
	cur := conn.Cursor()

	mustExec(t, cur, "SELECT INITCAP('hello snowy world')")
	row := cur.FetchOne()
	require.NotNil(t, row)
	assert.Equal(t, "Hello Snowy World", row[0])
}
