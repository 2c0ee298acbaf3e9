// Package ast defines the syntax tree for the accepted Snowflake SQL
// surface. Nodes are produced by pkg/parser, rewritten by pkg/preprocess,
// and rendered to DuckDB SQL by pkg/render.
package ast

import (
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for table reference nodes.
type TableRef interface {
	Node
	tableRefNode()
}

// Ident is an identifier with its quoting preserved. Unquoted identifiers
// fold to uppercase; quoted identifiers keep their exact spelling.
type Ident struct {
	Name   string
	Quoted bool
}

// Normalized returns the catalog-facing spelling of the identifier.
func (i Ident) Normalized() string {
	if i.Quoted {
		return i.Name
	}
	return strings.ToUpper(i.Name)
}

// IsZero returns true if the identifier is absent.
func (i Ident) IsZero() bool {
	return i.Name == ""
}

// NodeInfo carries source span information and is embedded in statement
// nodes. Expression nodes synthesized by rewrite passes carry no spans.
type NodeInfo struct {
	Span token.Span
}

// Pos implements Node.
func (n NodeInfo) Pos() token.Position { return n.Span.Start }

// End implements Node.
func (n NodeInfo) End() token.Position { return n.Span.End }
