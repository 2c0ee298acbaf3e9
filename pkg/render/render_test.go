package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowduck/pkg/parser"
	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

func translate(t *testing.T, sql string) []string {
	t.Helper()
	sess := preprocess.NewSession("DB1")
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	out, err := NewTranslator(0).Translate(stmt, sess)
	require.NoError(t, err)
	return out
}

func translateOne(t *testing.T, sql string) string {
	t.Helper()
	out := translate(t, sql)
	require.Len(t, out, 1)
	return out[0]
}

func TestSelectRendering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple select",
			input: "select a, b from t where a = 1",
			want:  "SELECT A, B FROM T WHERE A = 1",
		},
		{
			name:  "order by adds nulls last on asc",
			input: "select a from t order by a",
			want:  "SELECT A FROM T ORDER BY A ASC NULLS LAST",
		},
		{
			name:  "order by adds nulls first on desc",
			input: "select a from t order by a desc",
			want:  "SELECT A FROM T ORDER BY A DESC NULLS FIRST",
		},
		{
			name:  "explicit nulls ordering preserved",
			input: "select a from t order by a asc nulls first",
			want:  "SELECT A FROM T ORDER BY A ASC NULLS FIRST",
		},
		{
			name:  "quoted identifiers keep their spelling",
			input: `select "mixedCase" from "my table"`,
			want:  `SELECT "mixedCase" FROM "my table"`,
		},
		{
			name:  "qualified star and alias",
			input: "select t.*, a as x from db1.public.t",
			want:  "SELECT T.*, A AS X FROM DB1.PUBLIC.T",
		},
		{
			name:  "group by having limit offset",
			input: "select a, count(*) from t group by a having count(*) > 1 limit 10 offset 5",
			want:  "SELECT A, COUNT(*) FROM T GROUP BY A HAVING COUNT(*) > 1 LIMIT 10 OFFSET 5",
		},
		{
			name:  "union all",
			input: "select a from t union all select b from u",
			want:  "SELECT A FROM T UNION ALL SELECT B FROM U",
		},
		{
			name:  "qualify passes through",
			input: "select a from t qualify row_number() over (order by a) = 1",
			want:  "SELECT A FROM T QUALIFY ROW_NUMBER() OVER (ORDER BY A ASC NULLS LAST) = 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateOne(t, tt.input))
		})
	}
}

func TestFunctionRewrites(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "iff becomes if",
			input: "select iff(a > 1, 'x', 'y') from t",
			want:  "SELECT IF(A > 1, 'x', 'y') FROM T",
		},
		{
			name:  "nvl becomes coalesce",
			input: "select nvl(a, 0) from t",
			want:  "SELECT COALESCE(A, 0) FROM T",
		},
		{
			name:  "bitwise xor operator",
			input: "select 3 ^ 5",
			want:  "SELECT XOR(3, 5)",
		},
		{
			name:  "json path access",
			input: "select payload:user.id from events",
			want:  "SELECT JSON_EXTRACT_STRING(PAYLOAD, '$.user.id') FROM EVENTS",
		},
		{
			name:  "parse_json casts to json",
			input: "select parse_json(raw) from t",
			want:  "SELECT CAST(RAW AS JSON) FROM T",
		},
		{
			name:  "to_varchar casts",
			input: "select to_varchar(a) from t",
			want:  "SELECT CAST(A AS VARCHAR) FROM T",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateOne(t, tt.input))
		})
	}
}

func TestCreateTable(t *testing.T) {
	t.Run("or replace splits into drop and create", func(t *testing.T) {
		out := translate(t, "create or replace table t1 (id number, name varchar)")
		require.Len(t, out, 2)
		assert.Equal(t, "DROP TABLE IF EXISTS T1", out[0])
		assert.Equal(t, "CREATE TABLE T1 (ID DECIMAL(38, 0), NAME VARCHAR)", out[1])
	})

	t.Run("snowflake types map to duckdb types", func(t *testing.T) {
		out := translate(t, "create table t2 (v variant, o object, a array, ts timestamp_ntz, tz timestamp_tz, b binary)")
		require.Len(t, out, 1)
		assert.Equal(t, "CREATE TABLE T2 (V JSON, O JSON, A JSON, TS TIMESTAMP, TZ TIMESTAMPTZ, B BLOB)", out[0])
	})

	t.Run("create table as select", func(t *testing.T) {
		out := translate(t, "create table t3 as select 1 as a")
		require.Len(t, out, 1)
		assert.Equal(t, "CREATE TABLE T3 AS SELECT 1 AS A", out[0])
	})
}

func TestDatabaseStatements(t *testing.T) {
	t.Run("create database attaches in-memory", func(t *testing.T) {
		out := translate(t, "create database mydb")
		require.Len(t, out, 2)
		assert.Equal(t, "ATTACH DATABASE ':memory:' AS MYDB", out[0])
		assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS MYDB.PUBLIC", out[1])
	})

	t.Run("create database if not exists drops the keyword", func(t *testing.T) {
		out := translate(t, "create database if not exists mydb")
		require.Len(t, out, 2)
		assert.Equal(t, "ATTACH IF NOT EXISTS ':memory:' AS MYDB", out[0])
		assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS MYDB.PUBLIC", out[1])
	})

	t.Run("drop database detaches", func(t *testing.T) {
		out := translate(t, "drop database if exists mydb")
		require.Len(t, out, 1)
		assert.Equal(t, "DETACH DATABASE IF EXISTS MYDB", out[0])
	})

	t.Run("use database sets qualified schema", func(t *testing.T) {
		out := translate(t, "use database mydb")
		require.Len(t, out, 1)
		assert.Equal(t, "SET schema = 'MYDB.PUBLIC'", out[0])
	})

	t.Run("use schema keeps session database", func(t *testing.T) {
		out := translate(t, "use schema staging")
		require.Len(t, out, 1)
		assert.Equal(t, "SET schema = 'DB1.STAGING'", out[0])
	})

	t.Run("use role renders nothing", func(t *testing.T) {
		out := translate(t, "use role accountadmin")
		assert.Empty(t, out)
	})
}

func TestSessionInfoFolding(t *testing.T) {
	out := translateOne(t, "select current_database(), current_schema()")
	assert.Equal(t, `SELECT 'DB1' AS "CURRENT_DATABASE()", 'PUBLIC' AS "CURRENT_SCHEMA()"`, out)
}

func TestSessionVariables(t *testing.T) {
	sess := preprocess.NewSession("DB1")
	sess.Variables["LIM"] = int64(5)

	stmt, err := parser.Parse("select a from t limit $lim")
	require.NoError(t, err)
	out, err := NewTranslator(0).Translate(stmt, sess)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "SELECT A FROM T LIMIT 5", out[0])
}

func TestUndefinedSessionVariable(t *testing.T) {
	stmt, err := parser.Parse("select $missing")
	require.NoError(t, err)
	_, err = NewTranslator(0).Translate(stmt, preprocess.NewSession("DB1"))
	var undefErr *preprocess.UndefinedVariableError
	require.ErrorAs(t, err, &undefErr)
	assert.Equal(t, "MISSING", undefErr.Name)
}

func TestTranslationCache(t *testing.T) {
	t.Run("identical statements hit the cache", func(t *testing.T) {
		tr := NewTranslator(0)
		sess := preprocess.NewSession("DB1")
		for i := 0; i < 3; i++ {
			stmt, err := parser.Parse("select a from t")
			require.NoError(t, err)
			out, err := tr.Translate(stmt, sess)
			require.NoError(t, err)
			assert.Equal(t, []string{"SELECT A FROM T"}, out)
		}
		assert.Equal(t, 1, tr.CacheSize())
	})

	t.Run("session database is part of the key", func(t *testing.T) {
		tr := NewTranslator(0)
		for _, db := range []string{"DB1", "DB2"} {
			stmt, err := parser.Parse("select current_database()")
			require.NoError(t, err)
			out, err := tr.Translate(stmt, preprocess.NewSession(db))
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Contains(t, out[0], "'"+db+"'")
		}
		assert.Equal(t, 2, tr.CacheSize())
	})

	t.Run("placeholders bypass the cache", func(t *testing.T) {
		tr := NewTranslator(0)
		stmt, err := parser.Parse("select a from t where a = ?")
		require.NoError(t, err)
		_, err = tr.Translate(stmt, preprocess.NewSession("DB1"))
		require.NoError(t, err)
		assert.Equal(t, 0, tr.CacheSize())
	})

	t.Run("session variables bypass the cache", func(t *testing.T) {
		tr := NewTranslator(0)
		sess := preprocess.NewSession("DB1")
		sess.Variables["X"] = int64(1)
		stmt, err := parser.Parse("select $x")
		require.NoError(t, err)
		_, err = tr.Translate(stmt, sess)
		require.NoError(t, err)
		assert.Equal(t, 0, tr.CacheSize())
	})

	t.Run("capacity evicts least recently used", func(t *testing.T) {
		tr := NewTranslator(2)
		sess := preprocess.NewSession("DB1")
		for i := 0; i < 4; i++ {
			stmt, err := parser.Parse(fmt.Sprintf("select %d", i))
			require.NoError(t, err)
			_, err = tr.Translate(stmt, sess)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, tr.CacheSize())
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		tr := NewTranslator(0)
		stmt, err := parser.Parse("select 1")
		require.NoError(t, err)
		_, err = tr.Translate(stmt, preprocess.NewSession("DB1"))
		require.NoError(t, err)
		tr.ClearCache()
		assert.Equal(t, 0, tr.CacheSize())
	})
}

func TestDML(t *testing.T) {
	t.Run("insert overwrite clears the table first", func(t *testing.T) {
		out := translate(t, "insert overwrite into t (a) values (1)")
		require.Len(t, out, 2)
		assert.Equal(t, "DELETE FROM T", out[0])
		assert.Equal(t, "INSERT INTO T (A) VALUES (1)", out[1])
	})

	t.Run("update with from clause", func(t *testing.T) {
		out := translateOne(t, "update t set a = u.a from u where t.id = u.id")
		assert.Equal(t, "UPDATE T SET A = U.A FROM U WHERE T.ID = U.ID", out)
	})

	t.Run("truncate renders as delete", func(t *testing.T) {
		out := translateOne(t, "truncate table t")
		assert.Equal(t, "DELETE FROM T", out)
	})
}

func TestShowStatements(t *testing.T) {
	t.Run("show databases reads the account catalog", func(t *testing.T) {
		out := translateOne(t, "show databases")
		assert.Contains(t, out, `"_snowduck_account"."_information_schema"."_databases"`)
		assert.Contains(t, out, `AS "name"`)
	})

	t.Run("show tables scopes to the session schema", func(t *testing.T) {
		out := translateOne(t, "show tables")
		assert.Contains(t, out, "DB1.information_schema.tables")
		assert.Contains(t, out, "upper(table_schema) = 'PUBLIC'")
		assert.Contains(t, out, "table_type <> 'VIEW'")
	})

	t.Run("show tables like filters by pattern", func(t *testing.T) {
		out := translateOne(t, "show tables like 'ORDER%'")
		assert.Contains(t, out, "table_name ILIKE 'ORDER%'")
	})

	t.Run("show views filters to views", func(t *testing.T) {
		out := translateOne(t, "show views in database db2")
		assert.Contains(t, out, "DB2.information_schema.tables")
		assert.Contains(t, out, "table_type = 'VIEW'")
	})
}

func TestCopyInto(t *testing.T) {
	out := translateOne(t, "copy into t from @mystage file_format = (type = 'CSV' skip_header = 1)")
	assert.Equal(t, "COPY T FROM '/tmp/snowduck_stage/MYSTAGE' (FORMAT CSV, HEADER)", out)
}

func TestTransactionStatements(t *testing.T) {
	assert.Equal(t, "BEGIN TRANSACTION", translateOne(t, "begin"))
	assert.Equal(t, "COMMIT", translateOne(t, "commit"))
	assert.Equal(t, "ROLLBACK", translateOne(t, "rollback"))
}
