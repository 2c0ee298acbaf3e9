package render

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

func (p *printer) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.ColumnRef:
		p.space()
		for _, q := range n.Qualifier {
			p.ident(q)
			p.write(".")
		}
		p.ident(n.Column)
		p.space()
	case *ast.Literal:
		p.literal(n)
	case *ast.Placeholder:
		p.space()
		p.write("?")
		p.space()
	case *ast.SessionVar:
		// Session variables are substituted before rendering; an
		// unresolved one only appears when the pipeline was skipped.
		p.space()
		p.write("$" + n.Name)
		p.space()
	case *ast.BinaryExpr:
		p.expr(n.Left)
		if n.Op == token.AND || n.Op == token.OR {
			p.keyword(n.Op.String())
		} else {
			p.space()
			p.write(n.Op.String())
			p.space()
		}
		p.expr(n.Right)
	case *ast.UnaryExpr:
		p.space()
		if n.Op == token.NOT {
			p.keyword("NOT")
		} else {
			p.write(n.Op.String())
			p.lastSpace = true // -1, not - 1
		}
		p.expr(n.Expr)
	case *ast.FuncCall:
		p.funcCall(n)
	case *ast.NamedArg:
		p.space()
		p.ident(n.Name)
		p.write(" := ")
		p.expr(n.Value)
	case *ast.CastExpr:
		p.space()
		if n.Try {
			p.write("TRY_CAST(")
		} else {
			p.write("CAST(")
		}
		p.expr(n.Expr)
		p.keyword("AS")
		p.typeName(*n.Type)
		p.write(")")
		p.space()
	case *ast.CaseExpr:
		p.keyword("CASE")
		if n.Operand != nil {
			p.expr(n.Operand)
		}
		for _, w := range n.Whens {
			p.keyword("WHEN")
			p.expr(w.Cond)
			p.keyword("THEN")
			p.expr(w.Then)
		}
		if n.Else != nil {
			p.keyword("ELSE")
			p.expr(n.Else)
		}
		p.keyword("END")
	case *ast.InExpr:
		p.expr(n.Expr)
		if n.Not {
			p.keyword("NOT")
		}
		p.keyword("IN")
		p.write("(")
		if n.Subquery != nil {
			p.selectStmt(n.Subquery)
		} else {
			p.list(len(n.List), func(i int) { p.expr(n.List[i]) })
		}
		p.write(")")
	case *ast.BetweenExpr:
		p.expr(n.Expr)
		if n.Not {
			p.keyword("NOT")
		}
		p.keyword("BETWEEN")
		p.expr(n.Low)
		p.keyword("AND")
		p.expr(n.High)
	case *ast.IsNullExpr:
		p.expr(n.Expr)
		p.keyword("IS")
		if n.Not {
			p.keyword("NOT")
		}
		p.keyword("NULL")
	case *ast.DistinctFromExpr:
		p.expr(n.Left)
		p.keyword("IS")
		if n.Not {
			p.keyword("NOT")
		}
		p.keyword("DISTINCT FROM")
		p.expr(n.Right)
	case *ast.LikeExpr:
		p.expr(n.Left)
		if n.Not {
			p.keyword("NOT")
		}
		if n.Ilike {
			p.keyword("ILIKE")
		} else {
			p.keyword("LIKE")
		}
		p.expr(n.Pattern)
		if n.Escape != nil {
			p.keyword("ESCAPE")
			p.expr(n.Escape)
		}
	case *ast.ParenExpr:
		p.space()
		p.write("(")
		p.expr(n.Expr)
		p.write(")")
		p.space()
	case *ast.StarExpr:
		p.space()
		if !n.Table.IsZero() {
			p.ident(n.Table)
			p.write(".")
		}
		p.write("*")
		p.space()
	case *ast.SubqueryExpr:
		p.space()
		p.write("(")
		p.selectStmt(n.Select)
		p.write(")")
		p.space()
	case *ast.ExistsExpr:
		if n.Not {
			p.keyword("NOT")
		}
		p.keyword("EXISTS")
		p.write("(")
		p.selectStmt(n.Select)
		p.write(")")
	case *ast.ListLiteral:
		p.space()
		p.write("[")
		p.list(len(n.Items), func(i int) { p.expr(n.Items[i]) })
		p.write("]")
		p.space()
	case *ast.IndexExpr:
		p.expr(n.Expr)
		p.write("[")
		p.expr(n.Index)
		p.write("]")
	case *ast.LambdaExpr:
		p.space()
		p.list(len(n.Params), func(i int) { p.ident(n.Params[i]) })
		p.write(" -> ")
		p.expr(n.Body)
	case *ast.IntervalExpr:
		p.keyword("INTERVAL")
		p.str(n.Value)
	case *ast.TypeName:
		p.typeName(*n)
	case *ast.JSONPathExpr:
		// Normally rewritten to json_extract_string before rendering.
		p.expr(n.Expr)
	}
}

func (p *printer) literal(l *ast.Literal) {
	p.space()
	switch l.Type {
	case ast.LiteralString:
		p.str(l.Value)
	case ast.LiteralNull:
		p.write("NULL")
	default:
		p.write(l.Value)
	}
	p.space()
}

func (p *printer) funcCall(f *ast.FuncCall) {
	p.space()
	p.write(f.Name.Normalized())
	p.write("(")
	if f.Star {
		p.write("*")
	} else {
		if f.Distinct {
			p.keyword("DISTINCT")
		}
		p.list(len(f.Args), func(i int) { p.expr(f.Args[i]) })
	}
	p.write(")")
	if f.Filter != nil {
		p.keyword("FILTER")
		p.write("(")
		p.keyword("WHERE")
		p.expr(f.Filter)
		p.write(")")
	}
	if f.Window != nil {
		p.keyword("OVER")
		p.windowSpec(f.Window)
	}
	p.space()
}

func (p *printer) windowSpec(w *ast.WindowSpec) {
	p.write("(")
	if len(w.PartitionBy) > 0 {
		p.keyword("PARTITION BY")
		p.list(len(w.PartitionBy), func(i int) { p.expr(w.PartitionBy[i]) })
	}
	if len(w.OrderBy) > 0 {
		p.keyword("ORDER BY")
		p.orderByList(w.OrderBy)
	}
	if w.Frame != nil {
		p.frameSpec(w.Frame)
	}
	p.write(")")
	p.space()
}

func (p *printer) frameSpec(f *ast.FrameSpec) {
	if f.Type == ast.FrameRange {
		p.keyword("RANGE")
	} else {
		p.keyword("ROWS")
	}
	if f.End != nil {
		p.keyword("BETWEEN")
		p.frameBound(f.Start)
		p.keyword("AND")
		p.frameBound(*f.End)
	} else {
		p.frameBound(f.Start)
	}
}

func (p *printer) frameBound(b ast.FrameBound) {
	switch b.Kind {
	case ast.BoundUnboundedPreceding:
		p.keyword("UNBOUNDED PRECEDING")
	case ast.BoundPreceding:
		p.expr(b.Value)
		p.keyword("PRECEDING")
	case ast.BoundCurrentRow:
		p.keyword("CURRENT ROW")
	case ast.BoundFollowing:
		p.expr(b.Value)
		p.keyword("FOLLOWING")
	case ast.BoundUnboundedFollowing:
		p.keyword("UNBOUNDED FOLLOWING")
	}
}

// orderByList renders ORDER BY items. Snowflake places NULLs last on
// ascending sorts and first on descending ones, while DuckDB defaults to
// the opposite, so an explicit NULLS clause is always emitted.
func (p *printer) orderByList(items []ast.OrderByItem) {
	p.list(len(items), func(i int) {
		item := items[i]
		p.expr(item.Expr)
		if item.Desc {
			p.keyword("DESC")
		} else {
			p.keyword("ASC")
		}
		nullsFirst := item.Desc
		if item.NullsFirst != nil {
			nullsFirst = *item.NullsFirst
		}
		if nullsFirst {
			p.keyword("NULLS FIRST")
		} else {
			p.keyword("NULLS LAST")
		}
	})
}
