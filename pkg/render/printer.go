// Package render generates DuckDB SQL from rewritten statements and
// memoizes the result per session shape.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// printer accumulates single-line SQL output.
type printer struct {
	output    *bytes.Buffer
	lastSpace bool
}

func newPrinter() *printer {
	return &printer{output: &bytes.Buffer{}, lastSpace: true}
}

// String returns the generated SQL.
func (p *printer) String() string {
	return strings.TrimSpace(p.output.String())
}

func (p *printer) write(s string) {
	if s == "" {
		return
	}
	// No space before closing delimiters or separators.
	if s[0] == ',' || s[0] == ')' || s[0] == ']' {
		b := p.output.Bytes()
		if len(b) > 0 && b[len(b)-1] == ' ' {
			p.output.Truncate(len(b) - 1)
		}
	}
	p.output.WriteString(s)
	p.lastSpace = s[len(s)-1] == ' ' || s[len(s)-1] == '('
}

func (p *printer) space() {
	if !p.lastSpace {
		p.output.WriteByte(' ')
		p.lastSpace = true
	}
}

func (p *printer) keyword(s string) {
	p.space()
	p.write(strings.ToUpper(s))
	p.space()
}

// plainIdent matches folded identifiers safe to emit unquoted. Lowercase
// names are quoted so their exact spelling survives, covering the internal
// catalog objects and databases created with quoted names.
var plainIdent = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// ident writes an identifier, quoting when the exact spelling matters or
// the name needs it.
func (p *printer) ident(id ast.Ident) {
	name := id.Normalized()
	if id.Quoted || !plainIdent.MatchString(name) {
		p.write(`"` + strings.ReplaceAll(name, `"`, `""`) + `"`)
		return
	}
	p.write(name)
}

// str writes a single-quoted string literal with doubled-quote escaping.
func (p *printer) str(s string) {
	p.write("'" + strings.ReplaceAll(s, "'", "''") + "'")
}

// list renders count items separated by ", ".
func (p *printer) list(count int, format func(i int)) {
	for i := 0; i < count; i++ {
		if i > 0 {
			p.write(", ")
		}
		format(i)
	}
}
