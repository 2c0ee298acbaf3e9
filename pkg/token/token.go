// Package token defines the token types for Snowflake SQL lexing.
//
// The accepted surface is a single input dialect, so all tokens are
// defined as constants for switch performance.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals and references
	IDENT      // identifier (quoted or unquoted)
	NUMBER     // 123, 45.67, 1e10
	STRING     // 'hello'
	PARAM      // ? or %s or %(name)s bind placeholder
	SESSIONVAR // $name
	STAGE      // @stage_name/optional/path

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^
	DPIPE    // ||
	EQ       // =
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	DOT      // .
	COMMA    // ,
	COLON    // :
	DCOLON   // ::
	SEMI     // ;
	FATARROW // =>
	AMP      // & (render-only, bitwise AND)
	PIPE     // | (render-only, bitwise OR)
	TILDE    // ~ (render-only, bitwise NOT)
	LSHIFT   // << (render-only)
	RSHIFT   // >> (render-only)
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Keywords (alphabetical)
	ALL
	ALTER
	AND
	AS
	ASC
	AT
	BEFORE
	BEGIN
	BETWEEN
	BY
	CASE
	CAST
	COLUMN
	COMMIT
	COPY
	CREATE
	CROSS
	CURRENT
	DATABASE
	DATABASES
	DEFAULT
	DELETE
	DESC
	DESCRIBE
	DISTINCT
	DROP
	ELSE
	END
	EXCEPT
	EXISTS
	FALSE
	FILTER
	FIRST
	FOLLOWING
	FROM
	FULL
	GROUP
	HAVING
	IF
	ILIKE
	IN
	INNER
	INSERT
	INTERSECT
	INTERVAL
	INTO
	IS
	JOIN
	KEY
	LAST
	LATERAL
	LEFT
	LIKE
	LIMIT
	MATCHED
	MERGE
	NOT
	NULL
	NULLS
	OFFSET
	ON
	OR
	ORDER
	OUTER
	OVER
	OVERWRITE
	PARTITION
	PRECEDING
	PRIMARY
	PUT
	QUALIFY
	RANGE
	RECURSIVE
	RENAME
	REPLACE
	RIGHT
	ROLE
	ROLLBACK
	ROW
	ROWS
	SCHEMA
	SCHEMAS
	SELECT
	SESSION
	SET
	SHOW
	STAGEKW // the STAGE keyword, distinct from a @stage reference
	TABLE
	TABLES
	THEN
	TO
	TRANSIENT
	TRUE
	TRUNCATE
	UNBOUNDED
	UNION
	UNSET
	UPDATE
	USE
	USING
	VALUES
	VIEW
	VIEWS
	WAREHOUSE
	WHEN
	WHERE
	WITH
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:      "IDENT",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	PARAM:      "PARAM",
	SESSIONVAR: "SESSIONVAR",
	STAGE:      "STAGE",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	CARET:    "^",
	DPIPE:    "||",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	DOT:      ".",
	COMMA:    ",",
	COLON:    ":",
	DCOLON:   "::",
	SEMI:     ";",
	FATARROW: "=>",
	AMP:      "&",
	PIPE:     "|",
	TILDE:    "~",
	LSHIFT:   "<<",
	RSHIFT:   ">>",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",

	ALL:       "ALL",
	ALTER:     "ALTER",
	AND:       "AND",
	AS:        "AS",
	ASC:       "ASC",
	AT:        "AT",
	BEFORE:    "BEFORE",
	BEGIN:     "BEGIN",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	CASE:      "CASE",
	CAST:      "CAST",
	COLUMN:    "COLUMN",
	COMMIT:    "COMMIT",
	COPY:      "COPY",
	CREATE:    "CREATE",
	CROSS:     "CROSS",
	CURRENT:   "CURRENT",
	DATABASE:  "DATABASE",
	DATABASES: "DATABASES",
	DEFAULT:   "DEFAULT",
	DELETE:    "DELETE",
	DESC:      "DESC",
	DESCRIBE:  "DESCRIBE",
	DISTINCT:  "DISTINCT",
	DROP:      "DROP",
	ELSE:      "ELSE",
	END:       "END",
	EXCEPT:    "EXCEPT",
	EXISTS:    "EXISTS",
	FALSE:     "FALSE",
	FILTER:    "FILTER",
	FIRST:     "FIRST",
	FOLLOWING: "FOLLOWING",
	FROM:      "FROM",
	FULL:      "FULL",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	IF:        "IF",
	ILIKE:     "ILIKE",
	IN:        "IN",
	INNER:     "INNER",
	INSERT:    "INSERT",
	INTERSECT: "INTERSECT",
	INTERVAL:  "INTERVAL",
	INTO:      "INTO",
	IS:        "IS",
	JOIN:      "JOIN",
	KEY:       "KEY",
	LAST:      "LAST",
	LATERAL:   "LATERAL",
	LEFT:      "LEFT",
	LIKE:      "LIKE",
	LIMIT:     "LIMIT",
	MATCHED:   "MATCHED",
	MERGE:     "MERGE",
	NOT:       "NOT",
	NULL:      "NULL",
	NULLS:     "NULLS",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	OVER:      "OVER",
	OVERWRITE: "OVERWRITE",
	PARTITION: "PARTITION",
	PRECEDING: "PRECEDING",
	PRIMARY:   "PRIMARY",
	PUT:       "PUT",
	QUALIFY:   "QUALIFY",
	RANGE:     "RANGE",
	RECURSIVE: "RECURSIVE",
	RENAME:    "RENAME",
	REPLACE:   "REPLACE",
	RIGHT:     "RIGHT",
	ROLE:      "ROLE",
	ROLLBACK:  "ROLLBACK",
	ROW:       "ROW",
	ROWS:      "ROWS",
	SCHEMA:    "SCHEMA",
	SCHEMAS:   "SCHEMAS",
	SELECT:    "SELECT",
	SESSION:   "SESSION",
	SET:       "SET",
	SHOW:      "SHOW",
	STAGEKW:   "STAGE",
	TABLE:     "TABLE",
	TABLES:    "TABLES",
	THEN:      "THEN",
	TO:        "TO",
	TRANSIENT: "TRANSIENT",
	TRUE:      "TRUE",
	TRUNCATE:  "TRUNCATE",
	UNBOUNDED: "UNBOUNDED",
	UNION:     "UNION",
	UNSET:     "UNSET",
	UPDATE:    "UPDATE",
	USE:       "USE",
	USING:     "USING",
	VALUES:    "VALUES",
	VIEW:      "VIEW",
	VIEWS:     "VIEWS",
	WAREHOUSE: "WAREHOUSE",
	WHEN:      "WHEN",
	WHERE:     "WHERE",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":       ALL,
	"alter":     ALTER,
	"and":       AND,
	"as":        AS,
	"asc":       ASC,
	"at":        AT,
	"before":    BEFORE,
	"begin":     BEGIN,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"cast":      CAST,
	"column":    COLUMN,
	"commit":    COMMIT,
	"copy":      COPY,
	"create":    CREATE,
	"cross":     CROSS,
	"current":   CURRENT,
	"database":  DATABASE,
	"databases": DATABASES,
	"default":   DEFAULT,
	"delete":    DELETE,
	"desc":      DESC,
	"describe":  DESCRIBE,
	"distinct":  DISTINCT,
	"drop":      DROP,
	"else":      ELSE,
	"end":       END,
	"except":    EXCEPT,
	"exists":    EXISTS,
	"false":     FALSE,
	"filter":    FILTER,
	"first":     FIRST,
	"following": FOLLOWING,
	"from":      FROM,
	"full":      FULL,
	"group":     GROUP,
	"having":    HAVING,
	"if":        IF,
	"ilike":     ILIKE,
	"in":        IN,
	"inner":     INNER,
	"insert":    INSERT,
	"intersect": INTERSECT,
	"interval":  INTERVAL,
	"into":      INTO,
	"is":        IS,
	"join":      JOIN,
	"key":       KEY,
	"last":      LAST,
	"lateral":   LATERAL,
	"left":      LEFT,
	"like":      LIKE,
	"limit":     LIMIT,
	"matched":   MATCHED,
	"merge":     MERGE,
	"not":       NOT,
	"null":      NULL,
	"nulls":     NULLS,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"outer":     OUTER,
	"over":      OVER,
	"overwrite": OVERWRITE,
	"partition": PARTITION,
	"preceding": PRECEDING,
	"primary":   PRIMARY,
	"put":       PUT,
	"qualify":   QUALIFY,
	"range":     RANGE,
	"recursive": RECURSIVE,
	"rename":    RENAME,
	"replace":   REPLACE,
	"right":     RIGHT,
	"role":      ROLE,
	"rollback":  ROLLBACK,
	"row":       ROW,
	"rows":      ROWS,
	"schema":    SCHEMA,
	"schemas":   SCHEMAS,
	"select":    SELECT,
	"session":   SESSION,
	"set":       SET,
	"show":      SHOW,
	"stage":     STAGEKW,
	"table":     TABLE,
	"tables":    TABLES,
	"then":      THEN,
	"to":        TO,
	"transient": TRANSIENT,
	"true":      TRUE,
	"truncate":  TRUNCATE,
	"unbounded": UNBOUNDED,
	"union":     UNION,
	"unset":     UNSET,
	"update":    UPDATE,
	"use":       USE,
	"using":     USING,
	"values":    VALUES,
	"view":      VIEW,
	"views":     VIEWS,
	"warehouse": WAREHOUSE,
	"when":      WHEN,
	"where":     WHERE,
	"with":      WITH,
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WITH
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RBRACE
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
