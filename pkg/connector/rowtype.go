package connector

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/infoschema"
)

// Snowflake type tags carried in cursor descriptions.
const (
	TypeFixed        = "fixed"
	TypeReal         = "real"
	TypeText         = "text"
	TypeBoolean      = "boolean"
	TypeDate         = "date"
	TypeTime         = "time"
	TypeTimestampNTZ = "timestamp_ntz"
	TypeTimestampTZ  = "timestamp_tz"
	TypeBinary       = "binary"
	TypeVariant      = "variant"
)

// Snowflake-side defaults for unbounded types.
const (
	maxTextLength   = 16_777_216
	maxBinaryLength = 8_388_608
)

// ColumnInfo is one entry of a Snowflake result description.
type ColumnInfo struct {
	Name      string
	Type      string
	Nullable  bool
	Length    int64
	ByteLen   int64
	Precision int64
	Scale     int64
}

// duckTypeTags maps DuckDB type names (arguments stripped) to type tags.
var duckTypeTags = map[string]string{
	"BIGINT":    TypeFixed,
	"DECIMAL":   TypeFixed,
	"INTEGER":   TypeFixed,
	"SMALLINT":  TypeFixed,
	"TINYINT":   TypeFixed,
	"HUGEINT":   TypeFixed,
	"UBIGINT":   TypeFixed,
	"UINTEGER":  TypeFixed,
	"USMALLINT": TypeFixed,
	"UTINYINT":  TypeFixed,

	"DOUBLE": TypeReal,
	"FLOAT":  TypeReal,
	"REAL":   TypeReal,

	"VARCHAR": TypeText,
	"BOOLEAN": TypeBoolean,
	"DATE":    TypeDate,
	"TIME":    TypeTime,
	"BLOB":    TypeBinary,
	"JSON":    TypeVariant,

	"TIMESTAMP":                TypeTimestampNTZ,
	"TIMESTAMP_S":              TypeTimestampNTZ,
	"TIMESTAMP_MS":             TypeTimestampNTZ,
	"TIMESTAMP_NS":             TypeTimestampNTZ,
	"TIMESTAMP WITH TIME ZONE": TypeTimestampTZ,
	"TIMESTAMPTZ":              TypeTimestampTZ,
}

var typeArgsRe = regexp.MustCompile(`^([^(]+)\((\d+)(?:,\s*(\d+))?\)$`)

// columnInfoFor translates one DuckDB column descriptor into the Snowflake
// shape. The duckType is the driver's DatabaseTypeName, e.g. DECIMAL(38,0).
func columnInfoFor(name, duckType string, nullable bool) (ColumnInfo, error) {
	base := strings.ToUpper(strings.TrimSpace(duckType))
	var precision, scale int64
	if m := typeArgsRe.FindStringSubmatch(base); m != nil {
		base = strings.TrimSpace(m[1])
		precision, _ = strconv.ParseInt(m[2], 10, 64)
		if m[3] != "" {
			scale, _ = strconv.ParseInt(m[3], 10, 64)
		}
	}
	tag, ok := duckTypeTags[base]
	if !ok {
		return ColumnInfo{}, fmt.Errorf("no Snowflake type mapping for DuckDB type %q", duckType)
	}

	info := ColumnInfo{Name: name, Type: tag, Nullable: nullable}
	switch tag {
	case TypeFixed:
		if precision == 0 {
			precision = 38
		}
		info.Precision = precision
		info.Scale = scale
	case TypeText:
		if precision == 0 {
			precision = maxTextLength
		}
		info.Length = precision
		info.ByteLen = precision
	case TypeBinary:
		info.Length = maxBinaryLength
		info.ByteLen = maxBinaryLength
	case TypeTime, TypeTimestampNTZ, TypeTimestampTZ:
		info.Precision = 0
		info.Scale = 9
	}
	return info, nil
}

// describeColumns builds a description from driver column types, applying
// catalog metadata overrides when available.
func describeColumns(types []*sql.ColumnType, meta []infoschema.Column) ([]ColumnInfo, error) {
	byName := make(map[string]infoschema.Column, len(meta))
	for _, c := range meta {
		byName[strings.ToUpper(c.Name)] = c
	}
	infos := make([]ColumnInfo, 0, len(types))
	for _, ct := range types {
		nullable := true
		if n, ok := ct.Nullable(); ok {
			nullable = n
		}
		info, err := columnInfoFor(ct.Name(), ct.DatabaseTypeName(), nullable)
		if err != nil {
			return nil, err
		}
		if c, ok := byName[strings.ToUpper(ct.Name())]; ok {
			info.Nullable = c.Nullable
			if c.CharLen.Valid && info.Type == TypeText {
				info.Length = c.CharLen.Int64
				info.ByteLen = c.CharLen.Int64
			}
			if c.Precision.Valid && info.Type == TypeFixed {
				info.Precision = c.Precision.Int64
			}
			if c.Scale.Valid && info.Type == TypeFixed {
				info.Scale = c.Scale.Int64
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
