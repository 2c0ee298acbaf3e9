package parser

import (
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// parsePrimary parses primary expressions: literals, references, function
// calls, CASE, CAST, subqueries and list literals.
func (p *Parser) parsePrimary() ast.Expr {
	switch p.token.Type {
	case token.NUMBER:
		lit := &ast.Literal{Type: ast.LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.STRING:
		lit := &ast.Literal{Type: ast.LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.TRUE:
		p.nextToken()
		return &ast.Literal{Type: ast.LiteralBool, Value: "TRUE"}

	case token.FALSE:
		p.nextToken()
		return &ast.Literal{Type: ast.LiteralBool, Value: "FALSE"}

	case token.NULL:
		p.nextToken()
		return &ast.Literal{Type: ast.LiteralNull, Value: "NULL"}

	case token.PARAM:
		ph := &ast.Placeholder{Index: p.nextParamIndex(), Name: paramName(p.token.Literal)}
		p.nextToken()
		return ph

	case token.SESSIONVAR:
		sv := &ast.SessionVar{Name: strings.ToUpper(p.token.Literal)}
		p.nextToken()
		return sv

	case token.CASE:
		return p.parseCaseExpr()

	case token.CAST:
		return p.parseCastExpr(false)

	case token.EXISTS:
		p.nextToken()
		p.expect(token.LPAREN)
		sub := p.parseSelect()
		p.expect(token.RPAREN)
		return &ast.ExistsExpr{Select: sub}

	case token.INTERVAL:
		p.nextToken()
		if p.check(token.STRING) {
			iv := &ast.IntervalExpr{Value: p.token.Literal}
			p.nextToken()
			return iv
		}
		p.addError("expected string literal after INTERVAL")
		return nil

	case token.LPAREN:
		p.nextToken()
		if p.check(token.SELECT) || p.check(token.WITH) {
			sub := p.parseSelect()
			p.expect(token.RPAREN)
			return &ast.SubqueryExpr{Select: sub}
		}
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return &ast.ParenExpr{Expr: expr}

	case token.LBRACKET:
		p.nextToken()
		list := &ast.ListLiteral{}
		if !p.check(token.RBRACKET) {
			list.Items = p.parseExpressionList()
		}
		p.expect(token.RBRACKET)
		return list

	case token.STAR:
		p.nextToken()
		return &ast.StarExpr{}

	case token.IDENT:
		return p.parseReference()

	default:
		if isUnreservedKeyword(p.token.Type) {
			return p.parseReference()
		}
		p.addError("unexpected token " + p.token.Type.String() + " in expression")
		p.nextToken()
		return nil
	}
}

// paramName extracts the name from a %(name)s placeholder literal.
func paramName(lit string) string {
	if strings.HasPrefix(lit, "%(") {
		if end := strings.Index(lit, ")"); end > 2 {
			return lit[2:end]
		}
	}
	return ""
}

// parseReference parses a possibly qualified column reference, a qualified
// star (t.*), or a function call.
func (p *Parser) parseReference() ast.Expr {
	parts := []ast.Ident{identFromToken(p.token)}
	p.nextToken()

	for p.check(token.DOT) {
		if p.checkPeek(token.STAR) {
			p.nextToken() // consume '.'
			p.nextToken() // consume '*'
			return &ast.StarExpr{Table: parts[len(parts)-1]}
		}
		p.nextToken()
		if p.check(token.IDENT) || isUnreservedKeyword(p.token.Type) {
			parts = append(parts, identFromToken(p.token))
			p.nextToken()
		} else {
			p.addError("expected identifier after '.'")
			break
		}
	}

	if p.check(token.LPAREN) {
		return p.parseFuncCall(parts[len(parts)-1])
	}

	return &ast.ColumnRef{Qualifier: parts[:len(parts)-1], Column: parts[len(parts)-1]}
}

// parseFuncCall parses the argument list and window of a function call.
// The name token has already been consumed.
func (p *Parser) parseFuncCall(name ast.Ident) ast.Expr {
	if name.Normalized() == "TRY_CAST" {
		return p.parseCastBody(true)
	}

	call := &ast.FuncCall{Name: name}
	p.expect(token.LPAREN)

	if p.match(token.STAR) {
		call.Star = true
	} else if !p.check(token.RPAREN) {
		call.Distinct = p.match(token.DISTINCT)
		for {
			call.Args = append(call.Args, p.parseFuncArg())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)

	if p.match(token.FILTER) {
		p.expect(token.LPAREN)
		p.expect(token.WHERE)
		call.Filter = p.parseExpression()
		p.expect(token.RPAREN)
	}

	if p.match(token.OVER) {
		call.Window = p.parseWindowSpec()
	}

	return call
}

// parseFuncArg parses a single function argument, which may be a
// name => value named argument (GENERATOR(ROWCOUNT => 5)).
func (p *Parser) parseFuncArg() ast.Expr {
	if (p.check(token.IDENT) || isUnreservedKeyword(p.token.Type)) && p.checkPeek(token.FATARROW) {
		name := identFromToken(p.token)
		p.nextToken() // name
		p.nextToken() // =>
		return &ast.NamedArg{Name: name, Value: p.parseExpression()}
	}
	return p.parseExpression()
}

// parseCaseExpr parses simple and searched CASE expressions.
func (p *Parser) parseCaseExpr() ast.Expr {
	p.nextToken() // consume CASE

	c := &ast.CaseExpr{}
	if !p.check(token.WHEN) {
		c.Operand = p.parseExpression()
	}

	for p.match(token.WHEN) {
		cond := p.parseExpression()
		p.expect(token.THEN)
		then := p.parseExpression()
		c.Whens = append(c.Whens, ast.WhenClause{Cond: cond, Then: then})
	}

	if p.match(token.ELSE) {
		c.Else = p.parseExpression()
	}
	p.expect(token.END)
	return c
}

// parseCastExpr parses CAST(expr AS type) / TRY_CAST(expr AS type).
func (p *Parser) parseCastExpr(try bool) ast.Expr {
	p.nextToken() // consume CAST / TRY_CAST
	return p.parseCastBody(try)
}

// parseCastBody parses the (expr AS type) body of a cast.
func (p *Parser) parseCastBody(try bool) ast.Expr {
	p.expect(token.LPAREN)
	expr := p.parseExpression()
	p.expect(token.AS)
	typ := p.parseTypeName()
	p.expect(token.RPAREN)
	return &ast.CastExpr{Expr: expr, Type: typ, Try: try}
}

// parseWindowSpec parses an OVER (...) window specification.
func (p *Parser) parseWindowSpec() *ast.WindowSpec {
	spec := &ast.WindowSpec{}
	p.expect(token.LPAREN)

	if p.match(token.PARTITION) {
		p.expect(token.BY)
		spec.PartitionBy = p.parseExpressionList()
	}

	if p.match(token.ORDER) {
		p.expect(token.BY)
		spec.OrderBy = p.parseOrderByList()
	}

	if p.check(token.ROWS) || p.check(token.RANGE) {
		spec.Frame = p.parseFrameSpec()
	}

	p.expect(token.RPAREN)
	return spec
}

// parseFrameSpec parses a ROWS/RANGE window frame clause.
func (p *Parser) parseFrameSpec() *ast.FrameSpec {
	frame := &ast.FrameSpec{}
	if p.match(token.RANGE) {
		frame.Type = ast.FrameRange
	} else {
		p.expect(token.ROWS)
		frame.Type = ast.FrameRows
	}

	if p.match(token.BETWEEN) {
		frame.Start = p.parseFrameBound()
		p.expect(token.AND)
		end := p.parseFrameBound()
		frame.End = &end
	} else {
		frame.Start = p.parseFrameBound()
	}
	return frame
}

// parseFrameBound parses one window frame bound.
func (p *Parser) parseFrameBound() ast.FrameBound {
	switch {
	case p.match(token.UNBOUNDED):
		if p.match(token.FOLLOWING) {
			return ast.FrameBound{Kind: ast.BoundUnboundedFollowing}
		}
		p.expect(token.PRECEDING)
		return ast.FrameBound{Kind: ast.BoundUnboundedPreceding}

	case p.match(token.CURRENT):
		p.expect(token.ROW)
		return ast.FrameBound{Kind: ast.BoundCurrentRow}

	default:
		value := p.parseExpression()
		if p.match(token.FOLLOWING) {
			return ast.FrameBound{Kind: ast.BoundFollowing, Value: value}
		}
		p.expect(token.PRECEDING)
		return ast.FrameBound{Kind: ast.BoundPreceding, Value: value}
	}
}

// parseOrderByList parses a comma-separated ORDER BY list.
func (p *Parser) parseOrderByList() []ast.OrderByItem {
	var items []ast.OrderByItem
	for {
		item := ast.OrderByItem{Expr: p.parseExpression()}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}
		if p.match(token.NULLS) {
			first := p.match(token.FIRST)
			if !first {
				p.expect(token.LAST)
			}
			item.NullsFirst = &first
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}
