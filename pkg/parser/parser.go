// Package parser provides a recursive descent parser for the accepted
// Snowflake SQL surface.
//
// # Usage
//
//	stmts, err := parser.ParseScript("SELECT 1; SELECT 2")
//	stmt, err := parser.Parse("SELECT a, b FROM t")
//
// # Grammar Overview
//
//	script        → statement (';' statement)*
//	statement     → select | insert | update | delete | merge | create |
//	                drop | truncate | alter | use | set | unset | show |
//	                describe | put | copy | begin | commit | rollback
//	select        → [WITH cte_list] select_body
//	select_body   → select_core ((UNION|INTERSECT|EXCEPT) [ALL] select_body)*
//	select_core   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	                [QUALIFY expr] [ORDER BY order_list] [LIMIT expr] [OFFSET expr]
//
// Expressions use Pratt parsing; see parser_expr.go.
package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// Parser parses Snowflake SQL into an AST.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	peek2  token.Token // second lookahead token
	errors []error
	raw    string // source text of the statement being parsed
	params int    // placeholder ordinal counter
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{
		lexer: NewLexer(sql),
		raw:   strings.TrimSpace(sql),
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a single statement.
func Parse(sql string) (ast.Stmt, error) {
	p := NewParser(sql)
	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if !p.check(token.SEMI) && !p.check(token.EOF) {
		return nil, &ParseError{
			Pos:     p.token.Pos,
			Message: fmt.Sprintf(ErrUnexpectedToken, p.token.Type, token.EOF),
		}
	}
	return stmt, nil
}

// ParseScript splits the input on statement boundaries and parses each
// statement. Empty statements are skipped.
func ParseScript(sql string) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for _, part := range SplitStatements(sql) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		stmt, err := Parse(part)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// SplitStatements splits a script on top-level semicolons, respecting
// string literals, quoted identifiers and comments. Trailing semicolons
// produce no empty tail entries.
func SplitStatements(sql string) []string {
	var parts []string
	start := 0
	i := 0
	for i < len(sql) {
		switch sql[i] {
		case '\'':
			i++
			for i < len(sql) {
				if sql[i] == '\'' {
					if i+1 < len(sql) && sql[i+1] == '\'' {
						i += 2
						continue
					}
					break
				}
				i++
			}
		case '"':
			i++
			for i < len(sql) && sql[i] != '"' {
				i++
			}
		case '-':
			if i+1 < len(sql) && sql[i+1] == '-' {
				for i < len(sql) && sql[i] != '\n' {
					i++
				}
				continue
			}
		case '/':
			if i+1 < len(sql) && sql[i+1] == '*' {
				i += 2
				for i+1 < len(sql) && !(sql[i] == '*' && sql[i+1] == '/') {
					i++
				}
				i++ // at '/' or end
			}
		case ';':
			parts = append(parts, sql[start:i])
			start = i + 1
		}
		i++
	}
	if strings.TrimSpace(sql[start:]) != "" {
		parts = append(parts, sql[start:])
	}
	return parts
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t token.TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, t))
	return false
}

// addError adds a parse error.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// ---------- Identifier Helpers ----------

// identFromToken converts the current token into an ast.Ident. Quoted
// identifiers arrive from the lexer wrapped in double quotes.
func identFromToken(tok token.Token) ast.Ident {
	lit := tok.Literal
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		return ast.Ident{Name: lit[1 : len(lit)-1], Quoted: true}
	}
	return ast.Ident{Name: lit}
}

// parseIdent consumes an identifier (or an unreserved keyword used as an
// identifier) and returns it.
func (p *Parser) parseIdent() ast.Ident {
	if p.check(token.IDENT) || isUnreservedKeyword(p.token.Type) {
		id := identFromToken(p.token)
		p.nextToken()
		return id
	}
	p.addError(fmt.Sprintf(ErrExpectedIdent, p.token.Type))
	return ast.Ident{}
}

// isUnreservedKeyword reports keywords that may double as identifiers.
// Snowflake treats most non-clause keywords as usable names.
func isUnreservedKeyword(t token.TokenType) bool {
	switch t {
	case token.DATABASE, token.DATABASES, token.SCHEMA, token.SCHEMAS,
		token.TABLES, token.VIEWS, token.ROLE, token.WAREHOUSE, token.SESSION,
		token.STAGEKW, token.KEY, token.FIRST, token.LAST, token.AT,
		token.BEFORE, token.ROW, token.ROWS, token.COMMIT, token.BEGIN,
		token.COPY, token.PUT, token.MATCHED, token.OVERWRITE, token.RENAME,
		token.TRANSIENT, token.COLUMN, token.IF, token.REPLACE, token.TO:
		return true
	}
	return false
}

// clauseBoundary reports whether the current token terminates an
// expression list or alias position.
func (p *Parser) clauseBoundary() bool {
	switch p.token.Type {
	case token.EOF, token.SEMI, token.FROM, token.WHERE, token.GROUP,
		token.HAVING, token.QUALIFY, token.ORDER, token.LIMIT, token.OFFSET,
		token.UNION, token.INTERSECT, token.EXCEPT, token.RPAREN, token.COMMA,
		token.JOIN, token.LEFT, token.RIGHT, token.INNER, token.OUTER,
		token.FULL, token.CROSS, token.ON, token.USING, token.WHEN,
		token.THEN, token.SET, token.VALUES:
		return true
	}
	return false
}

// nextParamIndex returns the next 1-based placeholder ordinal.
func (p *Parser) nextParamIndex() int {
	p.params++
	return p.params
}
