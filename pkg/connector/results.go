package connector

import "fmt"

// Canned messages matching the Snowflake driver surface.
const msgSuccess = "Statement executed successfully."

// resultSet is a materialized cursor-visible result: either rows fetched
// from the engine or a fabricated single-row status.
type resultSet struct {
	columns []ColumnInfo
	rows    [][]any
	offset  int
}

func (r *resultSet) fetchOne() []any {
	if r == nil || r.offset >= len(r.rows) {
		return nil
	}
	row := r.rows[r.offset]
	r.offset++
	return row
}

func (r *resultSet) fetchMany(n int) [][]any {
	if r == nil || n <= 0 {
		return nil
	}
	end := r.offset + n
	if end > len(r.rows) {
		end = len(r.rows)
	}
	rows := r.rows[r.offset:end]
	r.offset = end
	return rows
}

func (r *resultSet) fetchAll() [][]any {
	if r == nil {
		return nil
	}
	rows := r.rows[r.offset:]
	r.offset = len(r.rows)
	return rows
}

// statusResult fabricates the single status row DDL and session statements
// return.
func statusResult(message string) *resultSet {
	return &resultSet{
		columns: []ColumnInfo{{
			Name:    "status",
			Type:    TypeText,
			Length:  maxTextLength,
			ByteLen: maxTextLength,
		}},
		rows: [][]any{{message}},
	}
}

// createdResult fabricates the "<Kind> <NAME> successfully created." row.
func createdResult(kind, name string) *resultSet {
	return statusResult(fmt.Sprintf("%s %s successfully created.", kind, name))
}

// droppedResult fabricates the "<NAME> successfully dropped." row.
func droppedResult(name string) *resultSet {
	return statusResult(fmt.Sprintf("%s successfully dropped.", name))
}

// dmlResult fabricates the affected-row-count result of INSERT, UPDATE and
// DELETE. UPDATE carries the extra constant multi-join column for shape
// compatibility.
func dmlResult(verb string, count int64) *resultSet {
	countCol := func(name string) ColumnInfo {
		return ColumnInfo{Name: name, Type: TypeFixed, Precision: 38}
	}
	switch verb {
	case "UPDATE":
		return &resultSet{
			columns: []ColumnInfo{
				countCol("number of rows updated"),
				countCol("number of multi-joined rows updated"),
			},
			rows: [][]any{{count, int64(0)}},
		}
	case "DELETE":
		return &resultSet{
			columns: []ColumnInfo{countCol("number of rows deleted")},
			rows:    [][]any{{count}},
		}
	default:
		return &resultSet{
			columns: []ColumnInfo{countCol("number of rows inserted")},
			rows:    [][]any{{count}},
		}
	}
}

// describeResult shapes DESCRIBE TABLE/VIEW output from catalog metadata.
func describeResult(cols []ColumnInfo) *resultSet {
	textCol := func(name string) ColumnInfo {
		return ColumnInfo{Name: name, Type: TypeText, Nullable: true, Length: maxTextLength, ByteLen: maxTextLength}
	}
	rs := &resultSet{
		columns: []ColumnInfo{
			textCol("name"), textCol("type"), textCol("kind"), textCol("null?"),
			textCol("default"), textCol("primary key"), textCol("unique key"),
			textCol("check"), textCol("expression"), textCol("comment"),
		},
	}
	for _, c := range cols {
		nullable := "Y"
		if !c.Nullable {
			nullable = "N"
		}
		rs.rows = append(rs.rows, []any{
			c.Name, describeTypeName(c), "COLUMN", nullable,
			nil, "N", "N", nil, nil, nil,
		})
	}
	return rs
}

// describeTypeName renders a ColumnInfo as Snowflake DDL type text.
func describeTypeName(c ColumnInfo) string {
	switch c.Type {
	case TypeFixed:
		return fmt.Sprintf("NUMBER(%d,%d)", c.Precision, c.Scale)
	case TypeReal:
		return "FLOAT"
	case TypeText:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME(9)"
	case TypeTimestampNTZ:
		return "TIMESTAMP_NTZ(9)"
	case TypeTimestampTZ:
		return "TIMESTAMP_TZ(9)"
	case TypeBinary:
		return fmt.Sprintf("BINARY(%d)", maxBinaryLength)
	case TypeVariant:
		return "VARIANT"
	}
	return c.Type
}
