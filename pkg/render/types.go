package render

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/ast"
)

// typeAliases maps Snowflake type names to their DuckDB equivalents.
// Names absent from the table pass through unchanged.
var typeAliases = map[string]string{
	"NUMBER":        "DECIMAL",
	"NUMERIC":       "DECIMAL",
	"BYTEINT":       "TINYINT",
	"FLOAT":         "DOUBLE",
	"FLOAT4":        "DOUBLE",
	"FLOAT8":        "DOUBLE",
	"DOUBLE PRECISION": "DOUBLE",
	"STRING":        "VARCHAR",
	"TEXT":          "VARCHAR",
	"CHAR":          "VARCHAR",
	"CHARACTER":     "VARCHAR",
	"BINARY":        "BLOB",
	"VARBINARY":     "BLOB",
	"DATETIME":      "TIMESTAMP",
	"TIMESTAMP_NTZ": "TIMESTAMP",
	"TIMESTAMP_TZ":  "TIMESTAMPTZ",
	"TIMESTAMP_LTZ": "TIMESTAMPTZ",
	"VARIANT":       "JSON",
	"OBJECT":        "JSON",
	"ARRAY":         "JSON",
}

// decimalDefaults is applied when NUMBER appears without arguments, since
// Snowflake defaults to NUMBER(38,0) while DuckDB's DECIMAL defaults to (18,3).
var decimalDefaults = []int{38, 0}

func (p *printer) typeName(t ast.TypeName) {
	name := strings.ToUpper(t.Name)
	args := t.Args
	if mapped, ok := typeAliases[name]; ok {
		name = mapped
	}
	if name == "DECIMAL" && len(args) == 0 {
		args = decimalDefaults
	}
	// JSON and BLOB take no length arguments in DuckDB.
	if name == "JSON" || name == "BLOB" {
		args = nil
	}
	p.space()
	p.write(name)
	if len(args) > 0 {
		p.write("(")
		p.list(len(args), func(i int) {
			p.write(strconv.Itoa(args[i]))
		})
		p.write(")")
	}
	p.space()
}
