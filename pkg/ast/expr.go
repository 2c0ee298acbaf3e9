package ast

import "github.com/leapstack-labs/snowduck/pkg/token"

// ---------- Expression Types ----------

// ColumnRef represents a column reference (possibly qualified).
type ColumnRef struct {
	Qualifier []Ident // optional table/schema/database qualifiers
	Column    Ident
}

func (*ColumnRef) exprNode() {}

// Pos implements Node.
func (c *ColumnRef) Pos() token.Position { return token.Position{} }

// End implements Node.
func (c *ColumnRef) End() token.Position { return token.Position{} }

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralType constants for SQL literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal represents a literal value. Value holds the unescaped text for
// strings and the source spelling for numbers.
type Literal struct {
	Type  LiteralType
	Value string
}

func (*Literal) exprNode() {}

// Pos implements Node.
func (l *Literal) Pos() token.Position { return token.Position{} }

// End implements Node.
func (l *Literal) End() token.Position { return token.Position{} }

// Placeholder represents a bind parameter (?, %s or %(name)s).
type Placeholder struct {
	Index int    // 1-based ordinal of the placeholder in the statement
	Name  string // set for %(name)s style placeholders
}

func (*Placeholder) exprNode() {}

// Pos implements Node.
func (p *Placeholder) Pos() token.Position { return token.Position{} }

// End implements Node.
func (p *Placeholder) End() token.Position { return token.Position{} }

// SessionVar represents a $name session variable reference.
type SessionVar struct {
	Name string
}

func (*SessionVar) exprNode() {}

// Pos implements Node.
func (s *SessionVar) Pos() token.Position { return token.Position{} }

// End implements Node.
func (s *SessionVar) End() token.Position { return token.Position{} }

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// Pos implements Node.
func (b *BinaryExpr) Pos() token.Position {
	if b.Left != nil {
		return b.Left.Pos()
	}
	return token.Position{}
}

// End implements Node.
func (b *BinaryExpr) End() token.Position {
	if b.Right != nil {
		return b.Right.End()
	}
	return token.Position{}
}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// Pos implements Node.
func (u *UnaryExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (u *UnaryExpr) End() token.Position {
	if u.Expr != nil {
		return u.Expr.End()
	}
	return token.Position{}
}

// NamedArg represents a name => value function argument (GENERATOR(ROWCOUNT => 5)).
type NamedArg struct {
	Name  Ident
	Value Expr
}

func (*NamedArg) exprNode() {}

// Pos implements Node.
func (n *NamedArg) Pos() token.Position { return token.Position{} }

// End implements Node.
func (n *NamedArg) End() token.Position { return token.Position{} }

// FuncCall represents a function call.
type FuncCall struct {
	Name     Ident
	Distinct bool
	Args     []Expr
	Star     bool        // COUNT(*)
	Window   *WindowSpec // OVER clause
	Filter   Expr        // FILTER (WHERE ...) clause
}

func (*FuncCall) exprNode() {}

// Pos implements Node.
func (f *FuncCall) Pos() token.Position { return token.Position{} }

// End implements Node.
func (f *FuncCall) End() token.Position { return token.Position{} }

// WindowSpec represents an OVER (...) window specification.
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *FrameSpec
}

// FrameType distinguishes ROWS and RANGE frames.
type FrameType int

// Frame types.
const (
	FrameRows FrameType = iota
	FrameRange
)

// FrameBoundKind enumerates window frame bound kinds.
type FrameBoundKind int

// Frame bound kinds.
const (
	BoundUnboundedPreceding FrameBoundKind = iota
	BoundPreceding
	BoundCurrentRow
	BoundFollowing
	BoundUnboundedFollowing
)

// FrameBound is one end of a window frame.
type FrameBound struct {
	Kind  FrameBoundKind
	Value Expr // for BoundPreceding/BoundFollowing
}

// FrameSpec represents a window frame clause.
type FrameSpec struct {
	Type  FrameType
	Start FrameBound
	End   *FrameBound // nil when only a start bound is given
}

// TypeName represents a type in CAST expressions and column definitions.
type TypeName struct {
	Name string // uppercase base name, e.g. VARCHAR, NUMBER, TIMESTAMP_NTZ
	Args []int  // optional precision/scale or length
}

func (*TypeName) exprNode() {}

// Pos implements Node.
func (t *TypeName) Pos() token.Position { return token.Position{} }

// End implements Node.
func (t *TypeName) End() token.Position { return token.Position{} }

// CastExpr represents CAST(x AS type), x::type, and TRY_CAST.
type CastExpr struct {
	Expr Expr
	Type *TypeName
	Try  bool
}

func (*CastExpr) exprNode() {}

// Pos implements Node.
func (c *CastExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (c *CastExpr) End() token.Position { return token.Position{} }

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []WhenClause
	Else    Expr
}

// WhenClause is one WHEN ... THEN ... arm of a CASE expression.
type WhenClause struct {
	Cond Expr
	Then Expr
}

func (*CaseExpr) exprNode() {}

// Pos implements Node.
func (c *CaseExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (c *CaseExpr) End() token.Position { return token.Position{} }

// InExpr represents x [NOT] IN (list | subquery).
type InExpr struct {
	Expr     Expr
	Not      bool
	List     []Expr
	Subquery *SelectStmt
}

func (*InExpr) exprNode() {}

// Pos implements Node.
func (i *InExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (i *InExpr) End() token.Position { return token.Position{} }

// BetweenExpr represents x [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// Pos implements Node.
func (b *BetweenExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (b *BetweenExpr) End() token.Position { return token.Position{} }

// IsNullExpr represents x IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// Pos implements Node.
func (i *IsNullExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (i *IsNullExpr) End() token.Position { return token.Position{} }

// DistinctFromExpr represents x IS [NOT] DISTINCT FROM y.
type DistinctFromExpr struct {
	Left  Expr
	Not   bool
	Right Expr
}

func (*DistinctFromExpr) exprNode() {}

// Pos implements Node.
func (d *DistinctFromExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (d *DistinctFromExpr) End() token.Position { return token.Position{} }

// LikeExpr represents x [NOT] LIKE/ILIKE pattern [ESCAPE e].
type LikeExpr struct {
	Left    Expr
	Not     bool
	Ilike   bool
	Pattern Expr
	Escape  Expr
}

func (*LikeExpr) exprNode() {}

// Pos implements Node.
func (l *LikeExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (l *LikeExpr) End() token.Position { return token.Position{} }

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// Pos implements Node.
func (p *ParenExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (p *ParenExpr) End() token.Position { return token.Position{} }

// StarExpr represents a bare * or qualified t.* in expression position.
type StarExpr struct {
	Table Ident
}

func (*StarExpr) exprNode() {}

// Pos implements Node.
func (s *StarExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (s *StarExpr) End() token.Position { return token.Position{} }

// SubqueryExpr represents a scalar subquery.
type SubqueryExpr struct {
	Select *SelectStmt
}

func (*SubqueryExpr) exprNode() {}

// Pos implements Node.
func (s *SubqueryExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (s *SubqueryExpr) End() token.Position { return token.Position{} }

// ExistsExpr represents [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not    bool
	Select *SelectStmt
}

func (*ExistsExpr) exprNode() {}

// Pos implements Node.
func (e *ExistsExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (e *ExistsExpr) End() token.Position { return token.Position{} }

// ListLiteral represents a [a, b, c] list literal.
type ListLiteral struct {
	Items []Expr
}

func (*ListLiteral) exprNode() {}

// Pos implements Node.
func (l *ListLiteral) Pos() token.Position { return token.Position{} }

// End implements Node.
func (l *ListLiteral) End() token.Position { return token.Position{} }

// IndexExpr represents x[i] subscript access.
type IndexExpr struct {
	Expr  Expr
	Index Expr
}

func (*IndexExpr) exprNode() {}

// Pos implements Node.
func (i *IndexExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (i *IndexExpr) End() token.Position { return token.Position{} }

// JSONPathExpr represents Snowflake semi-structured path access
// (col:a.b[0]). Path elements are rendered as a json_extract path.
type JSONPathExpr struct {
	Expr Expr
	Path []PathElem
}

// PathElem is one step of a semi-structured access path.
type PathElem struct {
	Key   string // field name; empty for index steps
	Index int    // used when Key is empty
}

func (*JSONPathExpr) exprNode() {}

// Pos implements Node.
func (j *JSONPathExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (j *JSONPathExpr) End() token.Position { return token.Position{} }

// LambdaExpr represents a lambda (x -> body). Only synthesized by rewrite
// passes for DuckDB list functions; never parsed from input.
type LambdaExpr struct {
	Params []Ident
	Body   Expr
}

func (*LambdaExpr) exprNode() {}

// Pos implements Node.
func (l *LambdaExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (l *LambdaExpr) End() token.Position { return token.Position{} }

// IntervalExpr represents INTERVAL 'n unit'.
type IntervalExpr struct {
	Value string
}

func (*IntervalExpr) exprNode() {}

// Pos implements Node.
func (i *IntervalExpr) Pos() token.Position { return token.Position{} }

// End implements Node.
func (i *IntervalExpr) End() token.Position { return token.Position{} }
