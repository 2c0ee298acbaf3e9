package preprocess

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/parser"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// firstExpr parses a single-statement SELECT and returns its first
// projection after running the given pass.
func firstExpr(t *testing.T, sql string, pass func(ast.Stmt, *Session) error, sess *Session) ast.Expr {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	require.NoError(t, pass(stmt, sess))
	sel := stmt.(*ast.SelectStmt)
	return sel.Body.Left.Columns[0].Expr
}

// firstTable does the same for the first FROM entry.
func firstTable(t *testing.T, sql string, pass func(ast.Stmt, *Session) error) ast.TableRef {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	require.NoError(t, pass(stmt, nil))
	sel := stmt.(*ast.SelectStmt)
	return sel.Body.Left.From[0]
}

func TestSessionDefaults(t *testing.T) {
	sess := NewSession("MYDB")
	assert.Equal(t, "MYDB", sess.Database)
	assert.Equal(t, DefaultSchema, sess.Schema)
	assert.Equal(t, DefaultRole, sess.Role)
	assert.Equal(t, DefaultWarehouse, sess.Warehouse)
	assert.NotNil(t, sess.Variables)
}

func TestSubstituteVariables(t *testing.T) {
	sess := NewSession("DB1")
	sess.Variables["N"] = int64(42)
	sess.Variables["S"] = "hello"
	sess.Variables["B"] = true
	sess.Variables["F"] = 1.5

	tests := []struct {
		name string
		sql  string
		typ  ast.LiteralType
		val  string
	}{
		{"integer", "SELECT $n", ast.LiteralNumber, "42"},
		{"string", "SELECT $s", ast.LiteralString, "hello"},
		{"boolean", "SELECT $b", ast.LiteralBool, "TRUE"},
		{"float", "SELECT $f", ast.LiteralNumber, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := firstExpr(t, tt.sql, substituteVariables, sess).(*ast.Literal)
			assert.Equal(t, tt.typ, lit.Type)
			assert.Equal(t, tt.val, lit.Value)
		})
	}
}

func TestSubstituteVariablesUnbound(t *testing.T) {
	stmt, err := parser.Parse("SELECT $missing")
	require.NoError(t, err)
	err = substituteVariables(stmt, NewSession("DB1"))
	var undef *UndefinedVariableError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, "MISSING", undef.Name)
}

func TestParseVariableValue(t *testing.T) {
	assert.Equal(t, int64(7), ParseVariableValue(&ast.Literal{Type: ast.LiteralNumber, Value: "7"}))
	assert.Equal(t, 2.5, ParseVariableValue(&ast.Literal{Type: ast.LiteralNumber, Value: "2.5"}))
	assert.Equal(t, true, ParseVariableValue(&ast.Literal{Type: ast.LiteralBool, Value: "TRUE"}))
	assert.Equal(t, "x", ParseVariableValue(&ast.Literal{Type: ast.LiteralString, Value: "x"}))
}

func TestResolveIdentifierCalls(t *testing.T) {
	t.Run("column position", func(t *testing.T) {
		col := firstExpr(t, `SELECT IDENTIFIER('t."Mixed"') FROM x`, resolveIdentifierCalls, nil).(*ast.ColumnRef)
		require.Len(t, col.Qualifier, 1)
		assert.Equal(t, "T", col.Qualifier[0].Normalized())
		assert.True(t, col.Column.Quoted)
		assert.Equal(t, "Mixed", col.Column.Name)
	})

	t.Run("table position", func(t *testing.T) {
		tbl := firstTable(t, "SELECT * FROM IDENTIFIER('db1.public.orders')", resolveIdentifierCalls)
		name, ok := tbl.(*ast.TableName)
		require.True(t, ok, "expected TableName, got %T", tbl)
		assert.Equal(t, "DB1", name.Database.Normalized())
		assert.Equal(t, "PUBLIC", name.Schema.Normalized())
		assert.Equal(t, "ORDERS", name.Name.Normalized())
	})
}

func TestCoerceDateLiterals(t *testing.T) {
	t.Run("date shaped literal gets a date cast", func(t *testing.T) {
		call := firstExpr(t, "SELECT ADD_MONTHS('2024-01-31', 1)", coerceDateLiterals, nil).(*ast.FuncCall)
		cast, ok := call.Args[0].(*ast.CastExpr)
		require.True(t, ok)
		assert.Equal(t, "DATE", cast.Type.Name)
	})

	t.Run("time unit forces timestamp cast", func(t *testing.T) {
		call := firstExpr(t, "SELECT DATEDIFF(hour, '2024-01-01', '2024-01-02')", coerceDateLiterals, nil).(*ast.FuncCall)
		cast, ok := call.Args[1].(*ast.CastExpr)
		require.True(t, ok)
		assert.Equal(t, "TIMESTAMP", cast.Type.Name)
	})

	t.Run("datetime shaped literal gets a timestamp cast", func(t *testing.T) {
		call := firstExpr(t, "SELECT DATE_TRUNC('day', '2024-01-01 10:30:00')", coerceDateLiterals, nil).(*ast.FuncCall)
		cast, ok := call.Args[1].(*ast.CastExpr)
		require.True(t, ok)
		assert.Equal(t, "TIMESTAMP", cast.Type.Name)
	})

	t.Run("unshaped literal untouched", func(t *testing.T) {
		call := firstExpr(t, "SELECT DAYNAME('not a date')", coerceDateLiterals, nil).(*ast.FuncCall)
		_, ok := call.Args[0].(*ast.Literal)
		assert.True(t, ok)
	})

	t.Run("non date function untouched", func(t *testing.T) {
		call := firstExpr(t, "SELECT UPPER('2024-01-31')", coerceDateLiterals, nil).(*ast.FuncCall)
		_, ok := call.Args[0].(*ast.Literal)
		assert.True(t, ok)
	})
}

func TestRewriteGenerators(t *testing.T) {
	tbl := firstTable(t, "SELECT 1 FROM TABLE(GENERATOR(ROWCOUNT => 5))", rewriteGenerators)
	tf := tbl.(*ast.TableFunc)
	assert.Equal(t, "generate_series", tf.Call.Name.Name)
	require.Len(t, tf.Call.Args, 2)
	assert.Equal(t, "1", tf.Call.Args[0].(*ast.Literal).Value)
	assert.Equal(t, "5", tf.Call.Args[1].(*ast.Literal).Value)
}

func TestRewriteSequences(t *testing.T) {
	t.Run("seq becomes zero based row_number", func(t *testing.T) {
		bin := firstExpr(t, "SELECT SEQ4()", rewriteSequences, nil).(*ast.BinaryExpr)
		rn := bin.Left.(*ast.FuncCall)
		assert.Equal(t, "row_number", rn.Name.Name)
		require.NotNil(t, rn.Window)
		assert.Equal(t, token.MINUS, bin.Op)
	})

	t.Run("uniform becomes scaled random", func(t *testing.T) {
		cast := firstExpr(t, "SELECT UNIFORM(1, 10, RANDOM())", rewriteSequences, nil).(*ast.CastExpr)
		assert.Equal(t, "INT", cast.Type.Name)
	})
}

func TestRewriteSemiStructured(t *testing.T) {
	t.Run("json path access", func(t *testing.T) {
		call := firstExpr(t, "SELECT payload:user.id[0] FROM events", rewriteSemiStructured, nil).(*ast.FuncCall)
		assert.Equal(t, "json_extract_string", call.Name.Name)
		path := call.Args[1].(*ast.Literal)
		assert.Equal(t, "$.user.id[0]", path.Value)
	})

	t.Run("array_construct becomes list literal", func(t *testing.T) {
		list := firstExpr(t, "SELECT ARRAY_CONSTRUCT(1, 2, 3)", rewriteSemiStructured, nil).(*ast.ListLiteral)
		assert.Len(t, list.Items, 3)
	})

	t.Run("object_construct star", func(t *testing.T) {
		call := firstExpr(t, "SELECT OBJECT_CONSTRUCT(*) FROM t", rewriteSemiStructured, nil).(*ast.FuncCall)
		assert.Equal(t, "to_json", call.Name.Name)
		row := call.Args[0].(*ast.FuncCall)
		assert.Equal(t, "row", row.Name.Name)
		assert.True(t, row.Star)
	})

	t.Run("try_parse_json uses try_cast", func(t *testing.T) {
		cast := firstExpr(t, "SELECT TRY_PARSE_JSON(raw) FROM t", rewriteSemiStructured, nil).(*ast.CastExpr)
		assert.Equal(t, "JSON", cast.Type.Name)
		assert.True(t, cast.Try)
	})

	t.Run("get_path gains a jsonpath root", func(t *testing.T) {
		call := firstExpr(t, "SELECT GET_PATH(v, 'a.b') FROM t", rewriteSemiStructured, nil).(*ast.FuncCall)
		assert.Equal(t, "json_extract_string", call.Name.Name)
		assert.Equal(t, "$.a.b", call.Args[1].(*ast.Literal).Value)
	})

	t.Run("flatten becomes lateral unnest", func(t *testing.T) {
		stmt, err := parser.Parse("SELECT f.value FROM t, LATERAL FLATTEN(INPUT => t.arr) f")
		require.NoError(t, err)
		require.NoError(t, rewriteSemiStructured(stmt, nil))
		sel := stmt.(*ast.SelectStmt)
		tf := sel.Body.Left.From[1].(*ast.TableFunc)
		assert.True(t, tf.Lateral)
		assert.Equal(t, "UNNEST", tf.Call.Name.Name)
		require.Len(t, tf.Columns, 1)
		assert.Equal(t, "VALUE", tf.Columns[0].Name)
	})

	t.Run("time travel qualifier dropped", func(t *testing.T) {
		tbl := firstTable(t, "SELECT a FROM t AT(OFFSET => -60)", rewriteSemiStructured)
		name := tbl.(*ast.TableName)
		assert.Nil(t, name.At)
	})
}

func TestRemapAddMonths(t *testing.T) {
	paren := firstExpr(t, "SELECT ADD_MONTHS(d, 2) FROM t", remapFunctions, nil).(*ast.ParenExpr)
	bin := paren.Expr.(*ast.BinaryExpr)
	assert.Equal(t, token.PLUS, bin.Op)
	months := bin.Right.(*ast.FuncCall)
	assert.Equal(t, "to_months", months.Name.Name)
	cast := months.Args[0].(*ast.CastExpr)
	assert.Equal(t, "INTEGER", cast.Type.Name)
}

func TestSecondaryRolesReportAll(t *testing.T) {
	sess := NewSession("DB1")
	expr := firstExpr(t, "SELECT CURRENT_SECONDARY_ROLES()", foldSessionInfo, sess)
	lit, ok := expr.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, `{"roles":"","value":"ALL"}`, lit.Value)
}

func TestBootstrapPayloadReflectsSession(t *testing.T) {
	sess := NewSession("ANALYTICS")
	sess.Schema = "RAW"
	sess.Role = "DATA_ENG"
	sess.Warehouse = "WH_XS"

	expr := firstExpr(t, "SELECT SYSTEM$BOOTSTRAP_DATA_REQUEST()", foldBootstrapRequest, sess)
	lit, ok := expr.(*ast.Literal)
	require.True(t, ok)
	require.Equal(t, ast.LiteralString, lit.Type)

	var payload struct {
		Account struct {
			AccountName string `json:"accountName"`
			Region      string `json:"region"`
		} `json:"account"`
		ServerVersion  string `json:"serverVersion"`
		CurrentSession struct {
			DatabaseName  string `json:"databaseName"`
			SchemaName    string `json:"schemaName"`
			RoleName      string `json:"roleName"`
			WarehouseName string `json:"warehouseName"`
		} `json:"currentSession"`
		User struct {
			Name             string `json:"name"`
			DefaultRole      string `json:"defaultRole"`
			DefaultWarehouse string `json:"defaultWarehouse"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(lit.Value), &payload))

	assert.Equal(t, AccountName, payload.Account.AccountName)
	assert.Equal(t, Region, payload.Account.Region)
	assert.Equal(t, ServerVersion, payload.ServerVersion)
	assert.Equal(t, "ANALYTICS", payload.CurrentSession.DatabaseName)
	assert.Equal(t, "RAW", payload.CurrentSession.SchemaName)
	assert.Equal(t, "DATA_ENG", payload.CurrentSession.RoleName)
	assert.Equal(t, "WH_XS", payload.CurrentSession.WarehouseName)
	assert.Equal(t, UserName, payload.User.Name)
	assert.Equal(t, "DATA_ENG", payload.User.DefaultRole)
	assert.Equal(t, "WH_XS", payload.User.DefaultWarehouse)
}

func TestPipelineOrder(t *testing.T) {
	passes := Passes()
	index := make(map[string]int, len(passes))
	for i, p := range passes {
		index[p.Name] = i
	}
	assert.Less(t, index["variables"], index["dates"], "variables must be bound before literal inspection")
	assert.Less(t, index["dates"], index["functions"], "date coercion must see original function names")
	assert.Equal(t, len(passes)-1, index["functions"])
}
