package preprocess

import (
	"encoding/json"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// foldSessionInfo replaces zero-argument session information functions with
// literals carrying the current session state. Projections keep the
// function spelling as their column name, matching what a Snowflake server
// reports for these calls.
func foldSessionInfo(stmt ast.Stmt, sess *Session) error {
	eachSelectItem(stmt, func(item *ast.SelectItem) {
		call, ok := item.Expr.(*ast.FuncCall)
		if !ok || !item.Alias.IsZero() {
			return
		}
		if lit, ok2 := sessionInfoLiteral(call, sess); ok2 {
			item.Expr = lit
			item.Alias = ast.Ident{Name: call.Name.Normalized() + "()", Quoted: true}
		}
	})

	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		if call, ok := e.(*ast.FuncCall); ok {
			if lit, ok2 := sessionInfoLiteral(call, sess); ok2 {
				return lit
			}
		}
		return e
	}}
	r.RewriteStmt(stmt)
	return nil
}

// sessionInfoLiteral returns the literal value of a session information
// function call, if it is one.
func sessionInfoLiteral(call *ast.FuncCall, sess *Session) (ast.Expr, bool) {
	if len(call.Args) != 0 || call.Star || call.Window != nil {
		return nil, false
	}
	var value string
	switch call.Name.Normalized() {
	case "CURRENT_DATABASE":
		value = sess.Database
	case "CURRENT_SCHEMA":
		value = sess.Schema
	case "CURRENT_ROLE":
		value = sess.Role
	case "CURRENT_WAREHOUSE":
		value = sess.Warehouse
	case "CURRENT_SECONDARY_ROLES":
		value = `{"roles":"","value":"ALL"}`
	case "CURRENT_VERSION":
		value = ServerVersion
	case "CURRENT_ACCOUNT":
		value = AccountName
	case "CURRENT_REGION":
		value = Region
	case "CURRENT_USER":
		value = UserName
	case "CURRENT_SESSION":
		value = SessionID
	default:
		return nil, false
	}
	if value == "" {
		return &ast.Literal{Type: ast.LiteralNull, Value: "NULL"}, true
	}
	return &ast.Literal{Type: ast.LiteralString, Value: value}, true
}

// Fabricated server identity reported by session information functions and
// the bootstrap payload.
const (
	ServerVersion = "9.8.1"
	AccountName   = "SD4711"
	UserName      = "SNOWDUCK"
	SessionID     = "4711"
	Region        = "AWS_US_EAST_1"
)

// bootstrapData builds the SYSTEM$BOOTSTRAP_DATA_REQUEST payload the
// connector's login sequence consumes: fabricated server identity plus the
// live session context.
func bootstrapData(sess *Session) string {
	payload := map[string]any{
		"account": map[string]any{
			"accountName": AccountName,
			"region":      Region,
			"url":         "https://" + AccountName + ".snowflakecomputing.com",
		},
		"serverVersion": ServerVersion,
		"currentSession": map[string]any{
			"sessionId":     json.RawMessage(SessionID),
			"autocommit":    true,
			"databaseName":  sess.Database,
			"schemaName":    sess.Schema,
			"roleName":      sess.Role,
			"warehouseName": sess.Warehouse,
		},
		"user": map[string]any{
			"name":             UserName,
			"loginName":        UserName,
			"createdOn":        "2024-01-01T00:00:00.000Z",
			"lastLogin":        "2024-01-01T00:00:00.000Z",
			"defaultRole":      sess.Role,
			"defaultWarehouse": sess.Warehouse,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// foldBootstrapRequest replaces SYSTEM$BOOTSTRAP_DATA_REQUEST(...) with the
// session's bootstrap payload. The projection keeps the exact call spelling
// as its column name.
func foldBootstrapRequest(stmt ast.Stmt, sess *Session) error {
	eachSelectItem(stmt, func(item *ast.SelectItem) {
		call, ok := item.Expr.(*ast.FuncCall)
		if !ok || call.Name.Normalized() != "SYSTEM$BOOTSTRAP_DATA_REQUEST" {
			return
		}
		if item.Alias.IsZero() {
			item.Alias = ast.Ident{Name: bootstrapAlias(call), Quoted: true}
		}
		item.Expr = &ast.Literal{Type: ast.LiteralString, Value: bootstrapData(sess)}
	})

	r := &ast.Rewriter{Expr: func(e ast.Expr) ast.Expr {
		if call, ok := e.(*ast.FuncCall); ok && call.Name.Normalized() == "SYSTEM$BOOTSTRAP_DATA_REQUEST" {
			return &ast.Literal{Type: ast.LiteralString, Value: bootstrapData(sess)}
		}
		return e
	}}
	r.RewriteStmt(stmt)
	return nil
}

// bootstrapAlias reconstructs the call spelling for the result column name.
func bootstrapAlias(call *ast.FuncCall) string {
	var args []string
	for _, a := range call.Args {
		if lit, ok := a.(*ast.Literal); ok && lit.Type == ast.LiteralString {
			args = append(args, "'"+strings.ToUpper(lit.Value)+"'")
		}
	}
	return "SYSTEM$BOOTSTRAP_DATA_REQUEST(" + strings.Join(args, ",") + ")"
}

// eachSelectItem visits every projection of every select core in the
// statement, including set operation arms and CTEs.
func eachSelectItem(stmt ast.Stmt, fn func(*ast.SelectItem)) {
	sel, ok := stmt.(*ast.SelectStmt)
	if !ok {
		return
	}
	visitSelectItems(sel, fn)
}

func visitSelectItems(sel *ast.SelectStmt, fn func(*ast.SelectItem)) {
	if sel == nil {
		return
	}
	if sel.With != nil {
		for _, cte := range sel.With.CTEs {
			visitSelectItems(cte.Select, fn)
		}
	}
	for body := sel.Body; body != nil; body = body.Right {
		if body.Left == nil {
			continue
		}
		for i := range body.Left.Columns {
			fn(&body.Left.Columns[i])
		}
	}
}
