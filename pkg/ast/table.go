package ast

import "github.com/leapstack-labs/snowduck/pkg/token"

// ---------- Table Reference Types ----------

// TableName represents a (possibly qualified) table reference.
type TableName struct {
	Database Ident
	Schema   Ident
	Name     Ident
	Alias    Ident
	At       *AtClause // time-travel qualifier, stripped before rendering
}

func (*TableName) tableRefNode() {}

// Pos implements Node.
func (t *TableName) Pos() token.Position { return token.Position{} }

// End implements Node.
func (t *TableName) End() token.Position { return token.Position{} }

// AtClause is a Snowflake AT/BEFORE time-travel qualifier.
type AtClause struct {
	Before bool
	Kind   string // TIMESTAMP, OFFSET or STATEMENT
	Value  Expr
}

// DerivedTable represents a subquery in FROM.
type DerivedTable struct {
	Select  *SelectStmt
	Alias   Ident
	Columns []Ident
}

func (*DerivedTable) tableRefNode() {}

// Pos implements Node.
func (d *DerivedTable) Pos() token.Position { return token.Position{} }

// End implements Node.
func (d *DerivedTable) End() token.Position { return token.Position{} }

// TableFunc represents a table function in FROM: TABLE(GENERATOR(...)),
// LATERAL FLATTEN(...), or their DuckDB rewrites (generate_series, UNNEST).
type TableFunc struct {
	Lateral bool
	Call    *FuncCall
	Alias   Ident
	Columns []Ident // column aliases: alias(VALUE)
}

func (*TableFunc) tableRefNode() {}

// Pos implements Node.
func (t *TableFunc) Pos() token.Position { return token.Position{} }

// End implements Node.
func (t *TableFunc) End() token.Position { return token.Position{} }

// JoinType enumerates join kinds.
type JoinType string

// Join types.
const (
	JoinInner JoinType = "JOIN"
	JoinLeft  JoinType = "LEFT JOIN"
	JoinRight JoinType = "RIGHT JOIN"
	JoinFull  JoinType = "FULL JOIN"
	JoinCross JoinType = "CROSS JOIN"
)

// Join represents a join against the preceding FROM entry.
type Join struct {
	Type      JoinType
	Right     TableRef
	Condition Expr    // ON clause
	Using     []Ident // USING (...) columns
}

func (*Join) tableRefNode() {}

// Pos implements Node.
func (j *Join) Pos() token.Position { return token.Position{} }

// End implements Node.
func (j *Join) End() token.Position { return token.Position{} }
