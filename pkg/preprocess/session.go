// Package preprocess rewrites parsed Snowflake statements into shapes the
// DuckDB renderer can express. Passes run in a fixed order and mutate the
// tree bottom-up.
package preprocess

import "fmt"

// Session defaults matching a fresh Snowflake connection.
const (
	DefaultRole      = "SYSADMIN"
	DefaultWarehouse = "DEFAULT_WAREHOUSE"
	DefaultSchema    = "PUBLIC"

	// AccountCatalogName is the attached catalog account-level views live in.
	AccountCatalogName = "_snowduck_account"
	// InfoSchemaName is the internal schema backing INFORMATION_SCHEMA views.
	InfoSchemaName = "_information_schema"

	// DefaultStageRoot is where PUT places staged files unless configured.
	DefaultStageRoot = "/tmp/snowduck_stage"
)

// NewSession returns a session with connection defaults applied.
func NewSession(database string) *Session {
	return &Session{
		Database:       database,
		Schema:         DefaultSchema,
		Role:           DefaultRole,
		Warehouse:      DefaultWarehouse,
		AccountCatalog: AccountCatalogName,
		InfoSchema:     InfoSchemaName,
		Variables:      make(map[string]any),
		StageRoot:      DefaultStageRoot,
	}
}

// Session is the immutable snapshot of session state a rewrite consumes.
// Connections build one per statement execution.
type Session struct {
	Database  string
	Schema    string
	Role      string
	Warehouse string

	// AccountCatalog is the attached catalog holding account-level views.
	AccountCatalog string
	// InfoSchema is the internal schema name information schema views live
	// in. Statements reference INFORMATION_SCHEMA; results report the same.
	InfoSchema string

	// Variables holds session variables set via SET, keyed by uppercase
	// name. Values are int64, float64 or string.
	Variables map[string]any

	// StageRoot is the directory staged files live under.
	StageRoot string
}

// UndefinedVariableError reports a $name reference with no session binding.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("session variable '$%s' does not exist", e.Name)
}
