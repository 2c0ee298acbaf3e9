package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/token"
)

// parseStatement dispatches on the first token of a statement.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.token.Type {
	case token.SELECT, token.WITH:
		return p.parseSelect()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.MERGE:
		return p.parseMerge()
	case token.CREATE:
		return p.parseCreate()
	case token.DROP:
		return p.parseDrop()
	case token.TRUNCATE:
		return p.parseTruncate()
	case token.ALTER:
		return p.parseAlter()
	case token.USE:
		return p.parseUse()
	case token.SET:
		return p.parseSet()
	case token.UNSET:
		p.nextToken()
		return &ast.UnsetStmt{Raw: p.raw, Name: p.parseIdent()}
	case token.SHOW:
		return p.parseShow()
	case token.DESC, token.DESCRIBE:
		return p.parseDescribe()
	case token.PUT:
		return p.parsePut()
	case token.COPY:
		return p.parseCopyInto()
	case token.BEGIN:
		p.nextToken()
		if p.check(token.IDENT) && identFromToken(p.token).Normalized() == "TRANSACTION" {
			p.nextToken()
		}
		p.match(token.IDENT) // BEGIN WORK / BEGIN NAME ...
		return &ast.BeginStmt{Raw: p.raw}
	case token.COMMIT:
		p.nextToken()
		p.match(token.IDENT) // COMMIT WORK
		return &ast.CommitStmt{Raw: p.raw}
	case token.ROLLBACK:
		p.nextToken()
		p.match(token.IDENT) // ROLLBACK WORK
		return &ast.RollbackStmt{Raw: p.raw}
	default:
		p.addError(fmt.Sprintf(ErrExpectedStatement, p.token.Type))
		return nil
	}
}

// ---------- DML ----------

// parseInsert parses INSERT [OVERWRITE] INTO t [(cols)] VALUES ... | SELECT.
func (p *Parser) parseInsert() ast.Stmt {
	stmt := &ast.InsertStmt{Raw: p.raw}
	p.expect(token.INSERT)
	stmt.Overwrite = p.match(token.OVERWRITE)
	p.expect(token.INTO)
	stmt.Table = p.parseQualifiedName()

	if p.check(token.LPAREN) && !p.selectFollowsParen() {
		p.nextToken()
		for {
			stmt.Columns = append(stmt.Columns, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	if p.match(token.VALUES) {
		for {
			p.expect(token.LPAREN)
			row := p.parseExpressionList()
			p.expect(token.RPAREN)
			stmt.Values = append(stmt.Values, row)
			if !p.match(token.COMMA) {
				break
			}
		}
	} else {
		stmt.Query = p.parseSelect()
	}
	return stmt
}

// selectFollowsParen reports whether '(' begins a subquery rather than a
// column list.
func (p *Parser) selectFollowsParen() bool {
	return p.checkPeek(token.SELECT) || p.checkPeek(token.WITH)
}

// parseUpdate parses UPDATE t SET a = b, ... [FROM refs] [WHERE expr].
func (p *Parser) parseUpdate() ast.Stmt {
	stmt := &ast.UpdateStmt{Raw: p.raw}
	p.expect(token.UPDATE)
	stmt.Table = p.parseQualifiedNameWithAlias()
	p.expect(token.SET)

	for {
		col := p.parseIdent()
		p.expect(token.EQ)
		stmt.Set = append(stmt.Set, ast.Assignment{Column: col, Value: p.parseExpression()})
		if !p.match(token.COMMA) {
			break
		}
	}

	if p.match(token.FROM) {
		stmt.From = p.parseFromClause()
	}
	if p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}
	return stmt
}

// parseDelete parses DELETE FROM t [USING refs] [WHERE expr].
func (p *Parser) parseDelete() ast.Stmt {
	stmt := &ast.DeleteStmt{Raw: p.raw}
	p.expect(token.DELETE)
	p.expect(token.FROM)
	stmt.Table = p.parseQualifiedNameWithAlias()

	if p.match(token.USING) {
		stmt.Using = p.parseFromClause()
	}
	if p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}
	return stmt
}

// parseMerge parses MERGE INTO target USING source ON cond WHEN ... arms.
func (p *Parser) parseMerge() ast.Stmt {
	stmt := &ast.MergeStmt{Raw: p.raw}
	p.expect(token.MERGE)
	p.expect(token.INTO)
	stmt.Target = p.parseQualifiedNameWithAlias()
	p.expect(token.USING)
	stmt.Source = p.parseTableRef()
	p.expect(token.ON)
	stmt.On = p.parseExpression()

	for p.match(token.WHEN) {
		clause := ast.MergeClause{Matched: true}
		if p.match(token.NOT) {
			clause.Matched = false
		}
		p.expect(token.MATCHED)
		if p.match(token.AND) {
			clause.Condition = p.parseExpression()
		}
		p.expect(token.THEN)

		switch {
		case p.match(token.UPDATE):
			clause.Action = ast.MergeUpdate
			p.expect(token.SET)
			for {
				col := p.parseIdent()
				p.expect(token.EQ)
				clause.Set = append(clause.Set, ast.Assignment{Column: col, Value: p.parseExpression()})
				if !p.match(token.COMMA) {
					break
				}
			}
		case p.match(token.DELETE):
			clause.Action = ast.MergeDelete
		case p.match(token.INSERT):
			clause.Action = ast.MergeInsert
			if p.match(token.LPAREN) {
				for {
					clause.Columns = append(clause.Columns, p.parseIdent())
					if !p.match(token.COMMA) {
						break
					}
				}
				p.expect(token.RPAREN)
			}
			p.expect(token.VALUES)
			p.expect(token.LPAREN)
			clause.Values = p.parseExpressionList()
			p.expect(token.RPAREN)
		default:
			p.addError("expected UPDATE, DELETE or INSERT in MERGE clause")
		}

		stmt.Clauses = append(stmt.Clauses, clause)
	}
	return stmt
}

// ---------- DDL ----------

// parseCreate dispatches CREATE [OR REPLACE] [TRANSIENT] <kind>.
func (p *Parser) parseCreate() ast.Stmt {
	p.expect(token.CREATE)
	orReplace := false
	if p.match(token.OR) {
		p.expect(token.REPLACE)
		orReplace = true
	}
	transient := p.match(token.TRANSIENT)

	switch p.token.Type {
	case token.DATABASE:
		p.nextToken()
		stmt := &ast.CreateDatabaseStmt{Raw: p.raw, OrReplace: orReplace}
		stmt.IfNotExists = p.matchIfNotExists()
		stmt.Name = p.parseIdent()
		return stmt

	case token.SCHEMA:
		p.nextToken()
		stmt := &ast.CreateSchemaStmt{Raw: p.raw, OrReplace: orReplace}
		stmt.IfNotExists = p.matchIfNotExists()
		stmt.Name = p.parseIdent()
		if p.match(token.DOT) {
			stmt.Database = stmt.Name
			stmt.Name = p.parseIdent()
		}
		return stmt

	case token.TABLE:
		p.nextToken()
		return p.parseCreateTable(orReplace, transient)

	case token.VIEW:
		p.nextToken()
		stmt := &ast.CreateViewStmt{Raw: p.raw, OrReplace: orReplace}
		stmt.IfNotExists = p.matchIfNotExists()
		stmt.Name = p.parseQualifiedName()
		p.expect(token.AS)
		stmt.Query = p.parseSelect()
		return stmt

	case token.STAGEKW:
		p.nextToken()
		stmt := &ast.CreateStageStmt{Raw: p.raw, OrReplace: orReplace}
		stmt.IfNotExists = p.matchIfNotExists()
		stmt.Name = p.parseIdent()
		return stmt

	default:
		p.addError("unsupported CREATE object " + p.token.Type.String())
		return nil
	}
}

// parseCreateTable parses the body of CREATE TABLE after the TABLE keyword.
func (p *Parser) parseCreateTable(orReplace, transient bool) ast.Stmt {
	stmt := &ast.CreateTableStmt{Raw: p.raw, OrReplace: orReplace, Transient: transient}
	stmt.IfNotExists = p.matchIfNotExists()
	stmt.Name = p.parseQualifiedName()

	if p.match(token.LPAREN) {
		for {
			stmt.Columns = append(stmt.Columns, p.parseColumnDef())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	if p.match(token.AS) {
		stmt.AsQuery = p.parseSelect()
	}
	return stmt
}

// parseColumnDef parses one column definition.
func (p *Parser) parseColumnDef() ast.ColumnDef {
	def := ast.ColumnDef{Name: p.parseIdent(), Type: p.parseTypeName()}
	for {
		switch {
		case p.check(token.NOT) && p.checkPeek(token.NULL):
			p.nextToken()
			p.nextToken()
			def.NotNull = true
		case p.check(token.PRIMARY):
			p.nextToken()
			p.expect(token.KEY)
			def.PrimaryKey = true
		case p.match(token.DEFAULT):
			def.Default = p.parseExpression()
		default:
			return def
		}
	}
}

// matchIfNotExists consumes an optional IF NOT EXISTS.
func (p *Parser) matchIfNotExists() bool {
	if p.check(token.IF) && p.checkPeek(token.NOT) && p.checkPeek2(token.EXISTS) {
		p.nextToken()
		p.nextToken()
		p.nextToken()
		return true
	}
	return false
}

// matchIfExists consumes an optional IF EXISTS.
func (p *Parser) matchIfExists() bool {
	if p.check(token.IF) && p.checkPeek(token.EXISTS) {
		p.nextToken()
		p.nextToken()
		return true
	}
	return false
}

// parseDrop parses DROP <kind> [IF EXISTS] name.
func (p *Parser) parseDrop() ast.Stmt {
	p.expect(token.DROP)
	stmt := &ast.DropStmt{Raw: p.raw}

	switch p.token.Type {
	case token.DATABASE:
		stmt.Kind = ast.ObjectDatabase
	case token.SCHEMA:
		stmt.Kind = ast.ObjectSchema
	case token.TABLE:
		stmt.Kind = ast.ObjectTable
	case token.VIEW:
		stmt.Kind = ast.ObjectView
	case token.STAGEKW:
		stmt.Kind = ast.ObjectStage
	default:
		p.addError("unsupported DROP object " + p.token.Type.String())
		return nil
	}
	p.nextToken()

	stmt.IfExists = p.matchIfExists()
	stmt.Name = p.parseQualifiedName()
	return stmt
}

// parseTruncate parses TRUNCATE [TABLE] [IF EXISTS] name.
func (p *Parser) parseTruncate() ast.Stmt {
	p.expect(token.TRUNCATE)
	p.match(token.TABLE)
	stmt := &ast.TruncateStmt{Raw: p.raw}
	stmt.IfExists = p.matchIfExists()
	stmt.Table = p.parseQualifiedName()
	return stmt
}

// parseAlter parses ALTER SESSION and ALTER TABLE.
func (p *Parser) parseAlter() ast.Stmt {
	p.expect(token.ALTER)

	if p.match(token.SESSION) {
		stmt := &ast.AlterSessionStmt{Raw: p.raw}
		if p.match(token.UNSET) {
			stmt.Unset = true
			for {
				stmt.Params = append(stmt.Params, ast.Assignment{Column: p.parseIdent()})
				if !p.match(token.COMMA) {
					break
				}
			}
			return stmt
		}
		p.expect(token.SET)
		for p.check(token.IDENT) || isUnreservedKeyword(p.token.Type) {
			name := p.parseIdent()
			p.expect(token.EQ)
			stmt.Params = append(stmt.Params, ast.Assignment{Column: name, Value: p.parseExpression()})
			p.match(token.COMMA)
		}
		return stmt
	}

	p.expect(token.TABLE)
	stmt := &ast.AlterTableStmt{Raw: p.raw}
	stmt.IfExists = p.matchIfExists()
	stmt.Table = p.parseQualifiedName()

	switch {
	case p.match(token.RENAME):
		if p.match(token.COLUMN) {
			stmt.Action = ast.AlterRenameColumn
			stmt.OldCol = p.parseIdent()
			p.expect(token.TO)
			stmt.NewCol = p.parseIdent()
		} else {
			p.expect(token.TO)
			stmt.Action = ast.AlterRenameTo
			stmt.NewName = p.parseQualifiedName()
		}
	case p.check(token.IDENT) && identFromToken(p.token).Normalized() == "ADD":
		p.nextToken()
		p.match(token.COLUMN)
		stmt.Action = ast.AlterAddColumn
		stmt.Column = p.parseColumnDef()
	case p.match(token.DROP):
		p.match(token.COLUMN)
		stmt.Action = ast.AlterDropColumn
		stmt.OldCol = p.parseIdent()
	default:
		p.addError("unsupported ALTER TABLE action " + p.token.Type.String())
	}
	return stmt
}

// ---------- Session Statements ----------

// parseUse parses USE [DATABASE|SCHEMA|ROLE|WAREHOUSE] name.
func (p *Parser) parseUse() ast.Stmt {
	p.expect(token.USE)
	stmt := &ast.UseStmt{Raw: p.raw}

	switch p.token.Type {
	case token.DATABASE:
		p.nextToken()
		stmt.Kind = ast.UseDatabase
		stmt.Name = p.parseIdent()
	case token.SCHEMA:
		p.nextToken()
		stmt.Kind = ast.UseSchema
		stmt.Name = p.parseIdent()
		if p.match(token.DOT) {
			stmt.Database = stmt.Name
			stmt.Name = p.parseIdent()
		}
	case token.ROLE:
		p.nextToken()
		stmt.Kind = ast.UseRole
		stmt.Name = p.parseIdent()
	case token.WAREHOUSE:
		p.nextToken()
		stmt.Kind = ast.UseWarehouse
		stmt.Name = p.parseIdent()
	default:
		// Bare USE <name> selects a database
		stmt.Kind = ast.UseDatabase
		stmt.Name = p.parseIdent()
	}
	return stmt
}

// parseSet parses SET <var> = <expr>.
func (p *Parser) parseSet() ast.Stmt {
	p.expect(token.SET)
	stmt := &ast.SetStmt{Raw: p.raw}
	stmt.Name = p.parseIdent()
	p.expect(token.EQ)
	stmt.Value = p.parseExpression()
	return stmt
}

// parseShow parses SHOW [TERSE] <objects> [LIKE 'p'] [IN scope].
func (p *Parser) parseShow() ast.Stmt {
	p.expect(token.SHOW)
	stmt := &ast.ShowStmt{Raw: p.raw}

	if p.check(token.IDENT) && identFromToken(p.token).Normalized() == "TERSE" {
		stmt.Terse = true
		p.nextToken()
	}

	switch {
	case p.match(token.DATABASES):
		stmt.Kind = ast.ObjectDatabase
	case p.match(token.SCHEMAS):
		stmt.Kind = ast.ObjectSchema
	case p.match(token.TABLES):
		stmt.Kind = ast.ObjectTable
	case p.match(token.VIEWS):
		stmt.Kind = ast.ObjectView
	case p.check(token.IDENT) && identFromToken(p.token).Normalized() == "OBJECTS":
		p.nextToken()
		stmt.Kind = ast.ObjectTable
		stmt.Objects = true
	case p.check(token.IDENT) && identFromToken(p.token).Normalized() == "WAREHOUSES":
		p.nextToken()
		stmt.Kind = ast.ObjectWarehouse
	case p.check(token.IDENT) && identFromToken(p.token).Normalized() == "ROLES":
		p.nextToken()
		stmt.Kind = ast.ObjectRole
	default:
		p.addError("unsupported SHOW object " + p.token.Literal)
		return nil
	}

	if p.match(token.LIKE) {
		if p.check(token.STRING) {
			stmt.Like = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected string pattern after LIKE")
		}
	}

	if p.match(token.IN) {
		switch p.token.Type {
		case token.DATABASE:
			stmt.InKind = "DATABASE"
			p.nextToken()
			stmt.InName = p.parseQualifiedName()
		case token.SCHEMA:
			stmt.InKind = "SCHEMA"
			p.nextToken()
			stmt.InName = p.parseQualifiedName()
		default:
			if p.check(token.IDENT) && identFromToken(p.token).Normalized() == "ACCOUNT" {
				stmt.InKind = "ACCOUNT"
				p.nextToken()
			} else {
				stmt.InKind = "SCHEMA"
				stmt.InName = p.parseQualifiedName()
			}
		}
	}
	return stmt
}

// parseDescribe parses DESC[RIBE] [TABLE|VIEW] name.
func (p *Parser) parseDescribe() ast.Stmt {
	p.nextToken() // DESC or DESCRIBE
	stmt := &ast.DescribeStmt{Raw: p.raw, Kind: ast.ObjectTable}

	switch p.token.Type {
	case token.TABLE:
		p.nextToken()
	case token.VIEW:
		stmt.Kind = ast.ObjectView
		p.nextToken()
	}
	stmt.Name = p.parseQualifiedName()
	return stmt
}

// ---------- Stage Statements ----------

// parsePut parses PUT file://<path> @<stage>. The file URI is easier to
// take from the raw text than from tokens.
func (p *Parser) parsePut() ast.Stmt {
	stmt := &ast.PutStmt{Raw: p.raw}

	fields := strings.Fields(p.raw)
	if len(fields) < 3 {
		p.addError("PUT requires a file:// URI and a @stage target")
		return nil
	}

	uri := fields[1]
	if !strings.HasPrefix(strings.ToLower(uri), "file://") {
		p.addError("PUT source must be a file:// URI")
		return nil
	}
	stmt.LocalPath = uri[len("file://"):]

	target := fields[2]
	if !strings.HasPrefix(target, "@") {
		p.addError("PUT target must be a @stage reference")
		return nil
	}
	stmt.Stage = splitStageRef(target[1:])

	// Consume the statement's tokens so the parser lands on EOF
	for !p.check(token.EOF) && !p.check(token.SEMI) {
		p.nextToken()
	}
	return stmt
}

// splitStageRef splits "name/path/under/stage" into a StageRef.
func splitStageRef(ref string) ast.StageRef {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		return ast.StageRef{Name: strings.ToUpper(ref[:i]), Path: ref[i+1:]}
	}
	return ast.StageRef{Name: strings.ToUpper(ref)}
}

// parseCopyInto parses COPY INTO t [(cols)] FROM @stage [options].
func (p *Parser) parseCopyInto() ast.Stmt {
	stmt := &ast.CopyIntoStmt{Raw: p.raw, Options: map[string]string{}}
	p.expect(token.COPY)
	p.expect(token.INTO)
	stmt.Target = p.parseQualifiedName()

	if p.match(token.LPAREN) {
		for {
			stmt.Columns = append(stmt.Columns, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	p.expect(token.FROM)
	if p.check(token.STAGE) {
		stmt.From = splitStageRef(p.token.Literal)
		p.nextToken()
	} else {
		p.addError("COPY INTO source must be a @stage reference")
	}

	// Options: FILE_FORMAT = (TYPE = 'CSV' ...), ON_ERROR = 'CONTINUE', ...
	for p.check(token.IDENT) {
		key := identFromToken(p.token).Normalized()
		p.nextToken()
		p.expect(token.EQ)
		if p.match(token.LPAREN) {
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				subKey := identFromToken(p.token).Normalized()
				p.nextToken()
				p.expect(token.EQ)
				stmt.Options[key+"."+subKey] = p.token.Literal
				p.nextToken()
				p.match(token.COMMA)
			}
			p.expect(token.RPAREN)
		} else {
			stmt.Options[key] = p.token.Literal
			p.nextToken()
		}
	}
	return stmt
}

// ---------- Shared Helpers ----------

// parseQualifiedName parses [db.][schema.]name into a TableName.
func (p *Parser) parseQualifiedName() *ast.TableName {
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
	return t
}

// parseQualifiedNameWithAlias parses a qualified name plus optional alias.
func (p *Parser) parseQualifiedNameWithAlias() *ast.TableName {
	t := p.parseQualifiedName()
	if p.match(token.AS) {
		t.Alias = p.parseIdent()
	} else if p.check(token.IDENT) {
		t.Alias = identFromToken(p.token)
		p.nextToken()
	}
	return t
}
