package parser

import (
	"strconv"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels:
//
//	precedenceNone       = 0
//	precedenceOr         = 1
//	precedenceAnd        = 2
//	precedenceNot        = 3
//	precedenceComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE, ILIKE)
//	precedenceAddition   = 5  (+, -, ||, ^)
//	precedenceMultiply   = 6  (*, /, %)
//	precedenceUnary      = 7  (-, +, NOT)
//	precedencePostfix    = 8  (::, [], :)
//
// Snowflake's ^ is bitwise XOR and binds like addition; the operator
// rewrite pass later converts it to a DuckDB xor() call.
const (
	precedenceNone       = 0
	precedenceOr         = 1
	precedenceAnd        = 2
	precedenceNot        = 3
	precedenceComparison = 4
	precedenceAddition   = 5
	precedenceMultiply   = 6
	precedenceUnary      = 7
	precedencePostfix    = 8
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseExpressionWithPrecedence(precedenceNone + 1)
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []ast.Expr {
	var exprs []ast.Expr
	exprs = append(exprs, p.parseExpression())
	for p.match(token.COMMA) {
		exprs = append(exprs, p.parseExpression())
	}
	return exprs
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) ast.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for {
		prec := p.infixPrecedence()
		if prec < minPrecedence {
			break
		}

		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primaries).
func (p *Parser) parsePrefixExpr() ast.Expr {
	switch p.token.Type {
	case token.NOT:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(precedenceNot)
		return &ast.UnaryExpr{Op: token.NOT, Expr: expr}

	case token.MINUS:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(precedenceUnary)
		return &ast.UnaryExpr{Op: token.MINUS, Expr: expr}

	case token.PLUS:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(precedenceUnary)
		return &ast.UnaryExpr{Op: token.PLUS, Expr: expr}

	default:
		return p.parsePrimary()
	}
}

// infixPrecedence returns the precedence of the current token as an infix
// operator, or precedenceNone if the token is not an infix operator.
func (p *Parser) infixPrecedence() int {
	switch p.token.Type {
	case token.OR:
		return precedenceOr
	case token.AND:
		return precedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return precedenceComparison
	case token.IS, token.IN, token.BETWEEN, token.LIKE, token.ILIKE:
		return precedenceComparison
	case token.NOT:
		// NOT as infix (NOT IN, NOT LIKE, NOT BETWEEN)
		return precedenceComparison
	case token.PLUS, token.MINUS, token.DPIPE, token.CARET:
		return precedenceAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precedenceMultiply
	case token.DCOLON, token.LBRACKET, token.COLON:
		return precedencePostfix
	default:
		return precedenceNone
	}
}

// parseInfixExpr parses an infix expression given the left operand.
func (p *Parser) parseInfixExpr(left ast.Expr, prec int) ast.Expr {
	switch p.token.Type {
	case token.NOT:
		return p.parseNotInfixExpr(left)

	case token.IS:
		return p.parseIsExpr(left)

	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, false)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, false)

	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, false, false)

	case token.ILIKE:
		p.nextToken()
		return p.parseLikeExpr(left, false, true)

	case token.DCOLON:
		p.nextToken()
		return &ast.CastExpr{Expr: left, Type: p.parseTypeName()}

	case token.LBRACKET:
		p.nextToken()
		idx := p.parseExpression()
		p.expect(token.RBRACKET)
		return &ast.IndexExpr{Expr: left, Index: idx}

	case token.COLON:
		p.nextToken()
		return p.parseJSONPath(left)
	}

	// Standard binary operators
	op := p.token
	p.nextToken()

	// Parse right operand with higher precedence (left-associative)
	right := p.parseExpressionWithPrecedence(prec + 1)

	return &ast.BinaryExpr{Left: left, Op: op.Type, Right: right}
}

// parseNotInfixExpr handles NOT as an infix modifier (NOT IN, NOT BETWEEN, NOT LIKE).
func (p *Parser) parseNotInfixExpr(left ast.Expr) ast.Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, true)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)

	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, true, false)

	case token.ILIKE:
		p.nextToken()
		return p.parseLikeExpr(left, true, true)

	default:
		p.addError("expected IN, BETWEEN, LIKE or ILIKE after NOT")
		return left
	}
}

// parseIsExpr handles IS [NOT] NULL and IS [NOT] DISTINCT FROM.
func (p *Parser) parseIsExpr(left ast.Expr) ast.Expr {
	p.nextToken() // consume IS
	not := p.match(token.NOT)

	if p.match(token.DISTINCT) {
		p.expect(token.FROM)
		right := p.parseExpressionWithPrecedence(precedenceComparison + 1)
		return &ast.DistinctFromExpr{Left: left, Not: not, Right: right}
	}

	if p.match(token.TRUE) {
		cmp := ast.Expr(&ast.BinaryExpr{Left: left, Op: token.EQ, Right: &ast.Literal{Type: ast.LiteralBool, Value: "TRUE"}})
		if not {
			return &ast.UnaryExpr{Op: token.NOT, Expr: cmp}
		}
		return cmp
	}
	if p.match(token.FALSE) {
		cmp := ast.Expr(&ast.BinaryExpr{Left: left, Op: token.EQ, Right: &ast.Literal{Type: ast.LiteralBool, Value: "FALSE"}})
		if not {
			return &ast.UnaryExpr{Op: token.NOT, Expr: cmp}
		}
		return cmp
	}

	p.expect(token.NULL)
	return &ast.IsNullExpr{Expr: left, Not: not}
}

// parseInExpr parses x [NOT] IN (list | subquery).
func (p *Parser) parseInExpr(left ast.Expr, not bool) ast.Expr {
	p.expect(token.LPAREN)

	if p.check(token.SELECT) || p.check(token.WITH) {
		sub := p.parseSelect()
		p.expect(token.RPAREN)
		return &ast.InExpr{Expr: left, Not: not, Subquery: sub}
	}

	list := p.parseExpressionList()
	p.expect(token.RPAREN)
	return &ast.InExpr{Expr: left, Not: not, List: list}
}

// parseBetweenExpr parses x [NOT] BETWEEN low AND high.
func (p *Parser) parseBetweenExpr(left ast.Expr, not bool) ast.Expr {
	// Bounds bind tighter than AND; parse at addition precedence
	low := p.parseExpressionWithPrecedence(precedenceAddition)
	p.expect(token.AND)
	high := p.parseExpressionWithPrecedence(precedenceAddition)
	return &ast.BetweenExpr{Expr: left, Not: not, Low: low, High: high}
}

// parseLikeExpr parses x [NOT] LIKE/ILIKE pattern [ESCAPE e].
func (p *Parser) parseLikeExpr(left ast.Expr, not, ilike bool) ast.Expr {
	pattern := p.parseExpressionWithPrecedence(precedenceAddition)
	var escape ast.Expr
	if p.check(token.IDENT) && identFromToken(p.token).Normalized() == "ESCAPE" {
		p.nextToken()
		escape = p.parseExpressionWithPrecedence(precedenceAddition)
	}
	return &ast.LikeExpr{Left: left, Not: not, Ilike: ilike, Pattern: pattern, Escape: escape}
}

// parseJSONPath parses the path after a ':' semi-structured access:
// col:a.b[0]:c and collapses chained accesses into one JSONPathExpr.
func (p *Parser) parseJSONPath(left ast.Expr) ast.Expr {
	path := []ast.PathElem{}
	for {
		if p.check(token.IDENT) || isUnreservedKeyword(p.token.Type) {
			id := identFromToken(p.token)
			p.nextToken()
			path = append(path, ast.PathElem{Key: id.Name})
		} else if p.check(token.STRING) {
			path = append(path, ast.PathElem{Key: p.token.Literal})
			p.nextToken()
		} else {
			p.addError("expected field name in path expression")
			break
		}

		for p.match(token.LBRACKET) {
			if p.check(token.NUMBER) {
				idx, _ := strconv.Atoi(p.token.Literal)
				path = append(path, ast.PathElem{Index: idx})
				p.nextToken()
			}
			p.expect(token.RBRACKET)
		}

		if p.match(token.DOT) || p.match(token.COLON) {
			continue
		}
		break
	}

	if jp, ok := left.(*ast.JSONPathExpr); ok {
		jp.Path = append(jp.Path, path...)
		return jp
	}
	return &ast.JSONPathExpr{Expr: left, Path: path}
}

// parseTypeName parses a type name with optional precision/scale arguments.
func (p *Parser) parseTypeName() *ast.TypeName {
	var name string
	switch {
	case p.check(token.IDENT):
		name = identFromToken(p.token).Normalized()
		p.nextToken()
	case token.IsKeyword(p.token.Type):
		name = p.token.Type.String()
		p.nextToken()
	default:
		p.addError("expected type name")
		return &ast.TypeName{Name: "VARCHAR"}
	}

	// Multi-word types: DOUBLE PRECISION, TIMESTAMP WITH TIME ZONE
	if name == "DOUBLE" && p.check(token.IDENT) && identFromToken(p.token).Normalized() == "PRECISION" {
		p.nextToken()
	}

	t := &ast.TypeName{Name: name}
	if p.match(token.LPAREN) {
		for p.check(token.NUMBER) {
			n, _ := strconv.Atoi(p.token.Literal)
			t.Args = append(t.Args, n)
			p.nextToken()
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	return t
}
