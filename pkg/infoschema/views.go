package infoschema

import (
	"fmt"

	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

// internalCatalogs are DuckDB-side databases hidden from clients.
const internalCatalogs = "'system', 'temp', 'memory', '" + preprocess.AccountCatalogName + "'"

// internalSchemas are schemas hidden from catalog views.
const internalSchemas = "'information_schema', 'pg_catalog', '" + preprocess.InfoSchemaName + "'"

// databasesViewSQL backs SELECT * FROM INFORMATION_SCHEMA.DATABASES and
// SHOW DATABASES.
func databasesViewSQL(catalog string) string {
	return fmt.Sprintf(`CREATE OR REPLACE VIEW %q.%q."_databases" AS
SELECT upper(database_name) AS database_name,
	'SYSADMIN' AS database_owner,
	'NO' AS is_transient,
	NULL AS comment
FROM duckdb_databases()
WHERE NOT internal AND database_name NOT IN (%s)`,
		catalog, preprocess.InfoSchemaName, internalCatalogs)
}

// columnsViewSQL backs SELECT * FROM INFORMATION_SCHEMA.COLUMNS with the
// Snowflake shape: uppercase catalog and schema names, NUMBER(38,0) for the
// integer family and the 16 MB VARCHAR default length.
func columnsViewSQL(catalog string) string {
	return fmt.Sprintf(`CREATE OR REPLACE VIEW %q.%q."_columns" AS
SELECT upper(table_catalog) AS table_catalog,
	upper(table_schema) AS table_schema,
	table_name,
	column_name,
	ordinal_position,
	column_default,
	is_nullable,
	CASE
		WHEN data_type IN ('BIGINT', 'INTEGER', 'SMALLINT', 'TINYINT', 'HUGEINT',
			'UBIGINT', 'UINTEGER', 'USMALLINT', 'UTINYINT') THEN 'NUMBER'
		WHEN data_type LIKE 'DECIMAL%%' THEN 'NUMBER'
		WHEN data_type IN ('DOUBLE', 'REAL', 'FLOAT') THEN 'FLOAT'
		WHEN data_type LIKE 'VARCHAR%%' THEN 'TEXT'
		WHEN data_type = 'BLOB' THEN 'BINARY'
		WHEN data_type = 'JSON' THEN 'VARIANT'
		WHEN data_type = 'TIMESTAMP' THEN 'TIMESTAMP_NTZ'
		WHEN data_type = 'TIMESTAMP WITH TIME ZONE' THEN 'TIMESTAMP_TZ'
		ELSE data_type
	END AS data_type,
	CASE WHEN data_type LIKE 'VARCHAR%%'
		THEN coalesce(character_maximum_length, 16777216)
		ELSE character_maximum_length
	END AS character_maximum_length,
	CASE
		WHEN data_type IN ('BIGINT', 'INTEGER', 'SMALLINT', 'TINYINT', 'HUGEINT',
			'UBIGINT', 'UINTEGER', 'USMALLINT', 'UTINYINT') THEN 38
		ELSE numeric_precision
	END AS numeric_precision,
	CASE
		WHEN data_type IN ('BIGINT', 'INTEGER', 'SMALLINT', 'TINYINT', 'HUGEINT',
			'UBIGINT', 'UINTEGER', 'USMALLINT', 'UTINYINT') THEN 0
		ELSE numeric_scale
	END AS numeric_scale
FROM %q.information_schema.columns
WHERE table_schema NOT IN (%s)`,
		catalog, preprocess.InfoSchemaName, catalog, internalSchemas)
}
