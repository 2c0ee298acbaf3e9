package infoschema

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *sql.DB) {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "ATTACH DATABASE ':memory:' AS DB1")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "CREATE SCHEMA DB1.PUBLIC")
	require.NoError(t, err)

	m := NewManager(db)
	require.NoError(t, m.Bootstrap(ctx))
	require.NoError(t, m.EnsureDatabase(ctx, "DB1"))
	return m, db
}

func TestBootstrapIsIdempotent(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Bootstrap(context.Background()))
	require.NoError(t, m.EnsureDatabase(context.Background(), "DB1"))
}

func TestDatabasesViewHidesInternalCatalogs(t *testing.T) {
	m, db := newManager(t)
	_ = m

	rows, err := db.Query(`SELECT database_name FROM "_snowduck_account"."_information_schema"."_databases" ORDER BY 1`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, names, "DB1")
	assert.NotContains(t, names, "_snowduck_account")
	assert.NotContains(t, names, "system")
	assert.NotContains(t, names, "temp")
}

func TestColumnsViewReportsSnowflakeTypes(t *testing.T) {
	m, db := newManager(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx,
		"CREATE TABLE DB1.PUBLIC.T1 (ID INTEGER, NAME VARCHAR, PAYLOAD JSON, TS TIMESTAMP)")
	require.NoError(t, err)
	_ = m

	rows, err := db.QueryContext(ctx, `SELECT column_name, data_type, numeric_precision, numeric_scale, character_maximum_length
		FROM DB1."_information_schema"."_columns"
		WHERE table_name = 'T1' ORDER BY ordinal_position`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		name, typ string
		prec      sql.NullInt64
		scale     sql.NullInt64
		charLen   sql.NullInt64
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.name, &r.typ, &r.prec, &r.scale, &r.charLen))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 4)

	assert.Equal(t, "NUMBER", got[0].typ)
	assert.Equal(t, int64(38), got[0].prec.Int64)
	assert.Equal(t, int64(0), got[0].scale.Int64)

	assert.Equal(t, "TEXT", got[1].typ)
	assert.Equal(t, int64(16777216), got[1].charLen.Int64)

	assert.Equal(t, "VARIANT", got[2].typ)
	assert.Equal(t, "TIMESTAMP_NTZ", got[3].typ)
}

func TestColumnsNormalizeNumericMetadata(t *testing.T) {
	m, db := newManager(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx,
		"CREATE TABLE DB1.PUBLIC.T5 (ID INTEGER, BIG BIGINT, AMT DECIMAL(10,2))")
	require.NoError(t, err)

	cols, err := m.Columns(ctx, "DB1", "PUBLIC", "T5")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	// Integer columns report the NUMBER(38,0) shape, not DuckDB's
	// storage width.
	for _, c := range cols[:2] {
		require.True(t, c.Precision.Valid, c.Name)
		assert.Equal(t, int64(38), c.Precision.Int64, c.Name)
		require.True(t, c.Scale.Valid, c.Name)
		assert.Equal(t, int64(0), c.Scale.Int64, c.Name)
	}

	// Declared decimal precision survives untouched.
	assert.Equal(t, int64(10), cols[2].Precision.Int64)
	assert.Equal(t, int64(2), cols[2].Scale.Int64)
}

func TestColumnsFallBackToSystemView(t *testing.T) {
	m, db := newManager(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TEMP TABLE STAGE_LOAD (A INTEGER, B VARCHAR)")
	require.NoError(t, err)

	// Temp tables never show up in the attached database's catalog, only
	// in the system-wide view.
	cols, err := m.Columns(ctx, "DB1", "MAIN", "STAGE_LOAD")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "A", cols[0].Name)
	assert.Equal(t, int64(38), cols[0].Precision.Int64)
	assert.Equal(t, int64(0), cols[0].Scale.Int64)
	assert.Equal(t, "B", cols[1].Name)
}

func TestNormalizeColumn(t *testing.T) {
	c := Column{Type: "INTEGER", Precision: sql.NullInt64{Int64: 32, Valid: true}}
	normalizeColumn(&c)
	assert.Equal(t, sql.NullInt64{Int64: 38, Valid: true}, c.Precision)
	assert.Equal(t, sql.NullInt64{Int64: 0, Valid: true}, c.Scale)

	c = Column{Type: "VARCHAR(20)"}
	normalizeColumn(&c)
	assert.Equal(t, sql.NullInt64{Int64: 20, Valid: true}, c.CharLen)

	c = Column{Type: "DECIMAL(10,2)", Precision: sql.NullInt64{Int64: 10, Valid: true}, Scale: sql.NullInt64{Int64: 2, Valid: true}}
	normalizeColumn(&c)
	assert.Equal(t, int64(10), c.Precision.Int64)
	assert.Equal(t, int64(2), c.Scale.Int64)
}

func TestColumnsAreMemoized(t *testing.T) {
	m, db := newManager(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE DB1.PUBLIC.T2 (A INTEGER)")
	require.NoError(t, err)

	cols, err := m.Columns(ctx, "db1", "public", "t2")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "A", cols[0].Name)

	// A stale read after ALTER proves the memoization.
	_, err = db.ExecContext(ctx, "ALTER TABLE DB1.PUBLIC.T2 ADD COLUMN B VARCHAR")
	require.NoError(t, err)
	cols, err = m.Columns(ctx, "DB1", "PUBLIC", "T2")
	require.NoError(t, err)
	assert.Len(t, cols, 1)

	m.Invalidate("DB1", "PUBLIC", "T2")
	cols, err = m.Columns(ctx, "DB1", "PUBLIC", "T2")
	require.NoError(t, err)
	assert.Len(t, cols, 2)
}

func TestInvalidateWithoutSchemaDropsAllEntries(t *testing.T) {
	m, db := newManager(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE SCHEMA DB1.OTHER")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "CREATE TABLE DB1.PUBLIC.T3 (A INTEGER)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "CREATE TABLE DB1.OTHER.T3 (A INTEGER, B INTEGER)")
	require.NoError(t, err)

	_, err = m.Columns(ctx, "DB1", "PUBLIC", "T3")
	require.NoError(t, err)
	_, err = m.Columns(ctx, "DB1", "OTHER", "T3")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "ALTER TABLE DB1.PUBLIC.T3 ADD COLUMN C VARCHAR")
	require.NoError(t, err)
	m.Invalidate("DB1", "", "T3")

	cols, err := m.Columns(ctx, "DB1", "PUBLIC", "T3")
	require.NoError(t, err)
	assert.Len(t, cols, 2)
}

func TestClearCache(t *testing.T) {
	m, db := newManager(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE DB1.PUBLIC.T4 (A INTEGER)")
	require.NoError(t, err)

	_, err = m.Columns(ctx, "DB1", "PUBLIC", "T4")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "ALTER TABLE DB1.PUBLIC.T4 ADD COLUMN B VARCHAR")
	require.NoError(t, err)
	m.ClearCache()

	cols, err := m.Columns(ctx, "DB1", "PUBLIC", "T4")
	require.NoError(t, err)
	assert.Len(t, cols, 2)
}
