// Package infoschema maintains the catalog views Snowflake clients expect
// and a memoized column cache over the DuckDB information schema.
package infoschema

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

// Column describes one column of a table as DuckDB reports it.
type Column struct {
	Name      string
	Type      string // DuckDB data type, e.g. VARCHAR, DECIMAL(38,0)
	Nullable  bool
	Default   sql.NullString
	CharLen   sql.NullInt64
	Precision sql.NullInt64
	Scale     sql.NullInt64
}

type colKey struct {
	database string
	schema   string
	table    string
}

// Manager owns the account catalog, the per-database internal schemas and
// a column cache keyed by (database, schema, table).
type Manager struct {
	db *sql.DB

	mu   sync.Mutex
	cols map[colKey][]Column
}

// NewManager wraps the shared DuckDB handle.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, cols: make(map[colKey][]Column)}
}

// Bootstrap attaches the account catalog and installs its views. Safe to
// call more than once.
func (m *Manager) Bootstrap(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("ATTACH IF NOT EXISTS ':memory:' AS %q", preprocess.AccountCatalogName),
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q.%q", preprocess.AccountCatalogName, preprocess.InfoSchemaName),
		databasesViewSQL(preprocess.AccountCatalogName),
	}
	for _, s := range stmts {
		if _, err := m.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("bootstrap account catalog: %w", err)
		}
	}
	return nil
}

// EnsureDatabase installs the internal information schema views inside an
// attached database. Called after CREATE DATABASE and for the startup
// database.
func (m *Manager) EnsureDatabase(ctx context.Context, name string) error {
	name = strings.ToUpper(name)
	stmts := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q.%q", name, preprocess.InfoSchemaName),
		databasesViewSQL(name),
		columnsViewSQL(name),
	}
	for _, s := range stmts {
		if _, err := m.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure database %s: %w", name, err)
		}
	}
	return nil
}

// Columns returns the columns of a table, memoized until invalidated.
// Lookups are case-insensitive; the result preserves stored spelling.
func (m *Manager) Columns(ctx context.Context, database, schema, table string) ([]Column, error) {
	key := colKey{
		database: strings.ToUpper(database),
		schema:   strings.ToUpper(schema),
		table:    strings.ToUpper(table),
	}
	m.mu.Lock()
	if cols, ok := m.cols[key]; ok {
		m.mu.Unlock()
		return cols, nil
	}
	m.mu.Unlock()

	cols, err := m.queryColumns(ctx, key)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.cols[key] = cols
	m.mu.Unlock()
	return cols, nil
}

func (m *Manager) queryColumns(ctx context.Context, key colKey) ([]Column, error) {
	query := fmt.Sprintf(`SELECT column_name, data_type, is_nullable, column_default,
	character_maximum_length, numeric_precision, numeric_scale
	FROM %q.information_schema.columns
	WHERE upper(table_schema) = ? AND upper(table_name) = ?
	ORDER BY ordinal_position`, key.database)
	cols, err := m.scanColumns(ctx, query, key.schema, key.table)
	if err != nil || len(cols) > 0 {
		return cols, err
	}
	// Tables outside the per-database catalog (temp tables, tables created
	// before the database was attached under its reported name) only show
	// up in the system-wide view.
	fallback := `SELECT column_name, data_type,
	CASE WHEN is_nullable THEN 'YES' ELSE 'NO' END, column_default,
	character_maximum_length, numeric_precision, numeric_scale
	FROM duckdb_columns()
	WHERE NOT internal AND upper(schema_name) = ? AND upper(table_name) = ?
	ORDER BY column_index`
	return m.scanColumns(ctx, fallback, key.schema, key.table)
}

func (m *Manager) scanColumns(ctx context.Context, query, schema, table string) ([]Column, error) {
	rows, err := m.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var nullable string
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &c.Default, &c.CharLen, &c.Precision, &c.Scale); err != nil {
			return nil, err
		}
		c.Nullable = strings.EqualFold(nullable, "YES")
		normalizeColumn(&c)
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// integerTypes are the DuckDB integer family, all reported to clients as
// NUMBER(38,0) regardless of native width.
var integerTypes = map[string]bool{
	"BIGINT": true, "INTEGER": true, "SMALLINT": true, "TINYINT": true,
	"HUGEINT": true, "UBIGINT": true, "UINTEGER": true, "USMALLINT": true,
	"UTINYINT": true,
}

var charLenRe = regexp.MustCompile(`^(?:VARCHAR|CHAR)\((\d+)\)$`)

// normalizeColumn maps DuckDB catalog metadata onto the Snowflake shape:
// integer types report precision (38, 0), not their binary width, and a
// missing character length is back-filled from the type name.
func normalizeColumn(c *Column) {
	typ := strings.ToUpper(strings.TrimSpace(c.Type))
	base := typ
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	if integerTypes[base] {
		c.Precision = sql.NullInt64{Int64: 38, Valid: true}
		c.Scale = sql.NullInt64{Int64: 0, Valid: true}
		return
	}
	if !c.CharLen.Valid {
		if m := charLenRe.FindStringSubmatch(typ); m != nil {
			n, _ := strconv.ParseInt(m[1], 10, 64)
			c.CharLen = sql.NullInt64{Int64: n, Valid: true}
		}
	}
}

// Invalidate drops the cached columns of one table. The schema may be
// empty when the statement did not qualify the table; every schema entry
// for the table name is dropped then.
func (m *Manager) Invalidate(database, schema, table string) {
	key := colKey{
		database: strings.ToUpper(database),
		schema:   strings.ToUpper(schema),
		table:    strings.ToUpper(table),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if key.schema != "" {
		delete(m.cols, key)
		return
	}
	for k := range m.cols {
		if k.database == key.database && k.table == key.table {
			delete(m.cols, k)
		}
	}
}

// ClearCache drops every memoized column set.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cols = make(map[colKey][]Column)
}
