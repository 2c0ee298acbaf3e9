package parser

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// parseFromClause parses the FROM clause: the first table reference plus
// any number of comma entries and joins, folded left to right.
func (p *Parser) parseFromClause() []ast.TableRef {
	refs := []ast.TableRef{p.parseTableRef()}

	for {
		switch {
		case p.match(token.COMMA):
			refs = append(refs, p.parseTableRef())

		case p.isJoinStart():
			refs = append(refs, p.parseJoin())

		default:
			return refs
		}
	}
}

// isJoinStart returns true if the current token starts a join.
func (p *Parser) isJoinStart() bool {
	switch p.token.Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL,
		token.CROSS, token.LATERAL:
		return true
	}
	return false
}

// parseJoin parses one join clause.
func (p *Parser) parseJoin() ast.TableRef {
	join := &ast.Join{Type: ast.JoinInner}

	switch {
	case p.match(token.INNER):
		p.expect(token.JOIN)
	case p.match(token.LEFT):
		p.match(token.OUTER)
		p.expect(token.JOIN)
		join.Type = ast.JoinLeft
	case p.match(token.RIGHT):
		p.match(token.OUTER)
		p.expect(token.JOIN)
		join.Type = ast.JoinRight
	case p.match(token.FULL):
		p.match(token.OUTER)
		p.expect(token.JOIN)
		join.Type = ast.JoinFull
	case p.match(token.CROSS):
		p.expect(token.JOIN)
		join.Type = ast.JoinCross
	case p.check(token.LATERAL):
		// Bare LATERAL joins the preceding entry like a cross join
		join.Type = ast.JoinCross
	default:
		p.expect(token.JOIN)
	}

	join.Right = p.parseTableRef()

	if p.match(token.ON) {
		join.Condition = p.parseExpression()
	} else if p.match(token.USING) {
		p.expect(token.LPAREN)
		for {
			join.Using = append(join.Using, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	return join
}

// parseTableRef parses one table reference: a (qualified) table name, a
// derived table, or a table function (TABLE(GENERATOR(...)), FLATTEN(...)).
func (p *Parser) parseTableRef() ast.TableRef {
	lateral := p.match(token.LATERAL)

	switch {
	case p.check(token.LPAREN):
		p.nextToken()
		sub := p.parseSelect()
		p.expect(token.RPAREN)
		dt := &ast.DerivedTable{Select: sub}
		dt.Alias, dt.Columns = p.parseTableAlias()
		return dt

	case p.check(token.TABLE) && p.checkPeek(token.LPAREN):
		p.nextToken() // TABLE
		p.nextToken() // (
		call, _ := p.parseExpression().(*ast.FuncCall)
		p.expect(token.RPAREN)
		tf := &ast.TableFunc{Lateral: lateral, Call: call}
		tf.Alias, tf.Columns = p.parseTableAlias()
		return tf

	case (p.check(token.IDENT) || isUnreservedKeyword(p.token.Type)) && p.checkPeek(token.LPAREN):
		call, _ := p.parseExpression().(*ast.FuncCall)
		tf := &ast.TableFunc{Lateral: lateral, Call: call}
		tf.Alias, tf.Columns = p.parseTableAlias()
		return tf

	default:
		return p.parseTableName()
	}
}

// parseTableName parses a (qualified) table name with optional AT/BEFORE
// time-travel qualifier and alias.
func (p *Parser) parseTableName() *ast.TableName {
	parts := []ast.Ident{p.parseIdent()}
	for p.match(token.DOT) {
		parts = append(parts, p.parseIdent())
	}

	t := &ast.TableName{}
	switch len(parts) {
	case 1:
		t.Name = parts[0]
	case 2:
		t.Schema, t.Name = parts[0], parts[1]
	default:
		t.Database, t.Schema, t.Name = parts[0], parts[1], parts[2]
	}

	// AT/BEFORE time-travel qualifiers are accepted and later discarded:
	// every table read observes current state.
	if p.check(token.AT) || p.check(token.BEFORE) {
		t.At = p.parseAtClause()
	}

	t.Alias, _ = p.parseTableAlias()
	return t
}

// parseAtClause parses AT(TIMESTAMP => ...) / BEFORE(STATEMENT => ...).
func (p *Parser) parseAtClause() *ast.AtClause {
	at := &ast.AtClause{Before: p.token.Type == token.BEFORE}
	p.nextToken()
	p.expect(token.LPAREN)
	if p.check(token.IDENT) || isUnreservedKeyword(p.token.Type) || p.check(token.OFFSET) {
		at.Kind = identFromToken(p.token).Normalized()
		if p.check(token.OFFSET) {
			at.Kind = "OFFSET"
		}
		p.nextToken()
	}
	p.expect(token.FATARROW)
	at.Value = p.parseExpression()
	p.expect(token.RPAREN)
	return at
}

// parseTableAlias parses an optional [AS] alias [(col, ...)] clause.
func (p *Parser) parseTableAlias() (ast.Ident, []ast.Ident) {
	var alias ast.Ident
	if p.match(token.AS) {
		alias = p.parseIdent()
	} else if p.check(token.IDENT) {
		alias = identFromToken(p.token)
		p.nextToken()
	} else {
		return alias, nil
	}

	var cols []ast.Ident
	if p.match(token.LPAREN) {
		for {
			cols = append(cols, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	return alias, cols
}
