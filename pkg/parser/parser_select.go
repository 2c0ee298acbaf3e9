package parser

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// parseSelect parses a full SELECT statement including an optional WITH
// clause and chained set operations.
func (p *Parser) parseSelect() *ast.SelectStmt {
	stmt := &ast.SelectStmt{Raw: p.raw}
	stmt.Span.Start = p.token.Pos

	if p.check(token.WITH) {
		stmt.With = p.parseWithClause()
	}

	stmt.Body = p.parseSelectBody()
	stmt.Span.End = p.token.Pos
	return stmt
}

// parseWithClause parses WITH [RECURSIVE] name [(cols)] AS (select), ...
func (p *Parser) parseWithClause() *ast.WithClause {
	p.expect(token.WITH)
	w := &ast.WithClause{Recursive: p.match(token.RECURSIVE)}

	for {
		cte := &ast.CTE{Name: p.parseIdent()}
		if p.match(token.LPAREN) {
			for {
				cte.Columns = append(cte.Columns, p.parseIdent())
				if !p.match(token.COMMA) {
					break
				}
			}
			p.expect(token.RPAREN)
		}
		p.expect(token.AS)
		p.expect(token.LPAREN)
		cte.Select = p.parseSelect()
		p.expect(token.RPAREN)
		w.CTEs = append(w.CTEs, cte)

		if !p.match(token.COMMA) {
			break
		}
	}
	return w
}

// parseSelectBody parses a select core plus trailing set operations.
func (p *Parser) parseSelectBody() *ast.SelectBody {
	body := &ast.SelectBody{Left: p.parseSelectCore()}

	switch p.token.Type {
	case token.UNION:
		p.nextToken()
		body.Op = ast.SetOpUnion
		body.All = p.match(token.ALL)
		body.Right = p.parseSelectBody()
	case token.INTERSECT:
		p.nextToken()
		body.Op = ast.SetOpIntersect
		body.Right = p.parseSelectBody()
	case token.EXCEPT:
		p.nextToken()
		body.Op = ast.SetOpExcept
		body.Right = p.parseSelectBody()
	}
	return body
}

// parseSelectCore parses one SELECT ... core clause.
func (p *Parser) parseSelectCore() *ast.SelectCore {
	core := &ast.SelectCore{}
	p.expect(token.SELECT)
	core.Distinct = p.match(token.DISTINCT)
	p.match(token.ALL) // SELECT ALL is the default

	core.Columns = p.parseSelectList()

	if p.match(token.FROM) {
		core.From = p.parseFromClause()
	}

	if p.match(token.WHERE) {
		core.Where = p.parseExpression()
	}

	if p.match(token.GROUP) {
		p.expect(token.BY)
		core.GroupBy = p.parseExpressionList()
	}

	if p.match(token.HAVING) {
		core.Having = p.parseExpression()
	}

	if p.match(token.QUALIFY) {
		core.Qualify = p.parseExpression()
	}

	if p.match(token.ORDER) {
		p.expect(token.BY)
		core.OrderBy = p.parseOrderByList()
	}

	if p.match(token.LIMIT) {
		core.Limit = p.parseExpression()
	}

	if p.match(token.OFFSET) {
		core.Offset = p.parseExpression()
	}

	return core
}

// parseSelectList parses the projection list.
func (p *Parser) parseSelectList() []ast.SelectItem {
	var items []ast.SelectItem
	for {
		items = append(items, p.parseSelectItem())
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}

// parseSelectItem parses one projection: *, t.*, or expr [AS] alias.
func (p *Parser) parseSelectItem() ast.SelectItem {
	if p.check(token.STAR) {
		p.nextToken()
		return ast.SelectItem{Star: true}
	}

	expr := p.parseExpression()
	if star, ok := expr.(*ast.StarExpr); ok {
		if star.Table.IsZero() {
			return ast.SelectItem{Star: true}
		}
		return ast.SelectItem{TableStar: star.Table}
	}

	item := ast.SelectItem{Expr: expr}
	if p.match(token.AS) {
		item.Alias = p.parseIdent()
	} else if (p.check(token.IDENT) || isUnreservedKeyword(p.token.Type)) && !p.clauseBoundary() {
		item.Alias = identFromToken(p.token)
		p.nextToken()
	}
	return item
}
