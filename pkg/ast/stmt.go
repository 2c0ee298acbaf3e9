package ast

// ---------- Statement Types ----------

// Raw source text is kept on every statement for cache keying and error
// reporting; it is set by the parser and never synthesized.

// SelectStmt represents a complete SELECT statement with optional WITH clause.
type SelectStmt struct {
	NodeInfo
	Raw  string
	With *WithClause
	Body *SelectBody
}

func (*SelectStmt) stmtNode() {}

// WithClause represents a WITH clause with CTEs.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a Common Table Expression.
type CTE struct {
	Name    Ident
	Columns []Ident
	Select  *SelectStmt
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectBody represents the body of a SELECT with possible set operations.
type SelectBody struct {
	Left  *SelectCore
	Op    SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	All   bool        // UNION ALL
	Right *SelectBody // for chained set operations
}

// SelectCore represents the core SELECT clause.
type SelectCore struct {
	Distinct bool
	Columns  []SelectItem
	From     []TableRef // first entry plus joins folded left-to-right
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	Qualify  Expr // Snowflake window function filter
	OrderBy  []OrderByItem
	Limit    Expr
	Offset   Expr
}

// SelectItem is one projection of a SELECT list.
type SelectItem struct {
	Star      bool  // bare *
	TableStar Ident // t.* when set
	Expr      Expr
	Alias     Ident
}

// OrderByItem is one ORDER BY element. NullsFirst is nil when the input
// gave no explicit NULLS ordering.
type OrderByItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst *bool
}

// Assignment is a col = expr pair in UPDATE/MERGE SET lists.
type Assignment struct {
	Column Ident
	Value  Expr
}

// InsertStmt represents INSERT [OVERWRITE] INTO.
type InsertStmt struct {
	NodeInfo
	Raw       string
	Overwrite bool
	Table     *TableName
	Columns   []Ident
	Values    [][]Expr    // VALUES rows, or
	Query     *SelectStmt // INSERT ... SELECT
}

func (*InsertStmt) stmtNode() {}

// UpdateStmt represents UPDATE.
type UpdateStmt struct {
	NodeInfo
	Raw   string
	Table *TableName
	Set   []Assignment
	From  []TableRef
	Where Expr
}

func (*UpdateStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM.
type DeleteStmt struct {
	NodeInfo
	Raw   string
	Table *TableName
	Using []TableRef
	Where Expr
}

func (*DeleteStmt) stmtNode() {}

// MergeActionKind enumerates MERGE clause actions.
type MergeActionKind int

// Merge actions.
const (
	MergeUpdate MergeActionKind = iota
	MergeDelete
	MergeInsert
)

// MergeClause is one WHEN [NOT] MATCHED arm of a MERGE statement.
type MergeClause struct {
	Matched   bool
	Condition Expr // optional AND condition
	Action    MergeActionKind
	Set       []Assignment // for MergeUpdate
	Columns   []Ident      // for MergeInsert
	Values    []Expr       // for MergeInsert
}

// MergeStmt represents MERGE INTO.
type MergeStmt struct {
	NodeInfo
	Raw     string
	Target  *TableName
	Source  TableRef
	On      Expr
	Clauses []MergeClause
}

func (*MergeStmt) stmtNode() {}

// ColumnDef is a column definition in CREATE TABLE.
type ColumnDef struct {
	Name       Ident
	Type       *TypeName
	NotNull    bool
	PrimaryKey bool
	Default    Expr
}

// CreateDatabaseStmt represents CREATE DATABASE.
type CreateDatabaseStmt struct {
	NodeInfo
	Raw         string
	OrReplace   bool
	IfNotExists bool
	Name        Ident
}

func (*CreateDatabaseStmt) stmtNode() {}

// CreateSchemaStmt represents CREATE SCHEMA.
type CreateSchemaStmt struct {
	NodeInfo
	Raw         string
	OrReplace   bool
	IfNotExists bool
	Database    Ident // optional qualifier
	Name        Ident
}

func (*CreateSchemaStmt) stmtNode() {}

// CreateTableStmt represents CREATE [OR REPLACE] [TRANSIENT] TABLE.
type CreateTableStmt struct {
	NodeInfo
	Raw         string
	OrReplace   bool
	IfNotExists bool
	Transient   bool
	Name        *TableName
	Columns     []ColumnDef
	AsQuery     *SelectStmt // CREATE TABLE ... AS SELECT
}

func (*CreateTableStmt) stmtNode() {}

// CreateViewStmt represents CREATE [OR REPLACE] VIEW.
type CreateViewStmt struct {
	NodeInfo
	Raw         string
	OrReplace   bool
	IfNotExists bool
	Name        *TableName
	Query       *SelectStmt
}

func (*CreateViewStmt) stmtNode() {}

// CreateStageStmt represents CREATE [OR REPLACE] STAGE.
type CreateStageStmt struct {
	NodeInfo
	Raw         string
	OrReplace   bool
	IfNotExists bool
	Name        Ident
}

func (*CreateStageStmt) stmtNode() {}

// ObjectKind enumerates droppable/describable object kinds.
type ObjectKind string

// Object kinds.
const (
	ObjectDatabase  ObjectKind = "DATABASE"
	ObjectSchema    ObjectKind = "SCHEMA"
	ObjectTable     ObjectKind = "TABLE"
	ObjectView      ObjectKind = "VIEW"
	ObjectStage     ObjectKind = "STAGE"
	ObjectRole      ObjectKind = "ROLE"
	ObjectWarehouse ObjectKind = "WAREHOUSE"
)

// DropStmt represents DROP <kind>.
type DropStmt struct {
	NodeInfo
	Raw      string
	Kind     ObjectKind
	IfExists bool
	Name     *TableName
}

func (*DropStmt) stmtNode() {}

// TruncateStmt represents TRUNCATE [TABLE].
type TruncateStmt struct {
	NodeInfo
	Raw      string
	IfExists bool
	Table    *TableName
}

func (*TruncateStmt) stmtNode() {}

// AlterTableAction enumerates supported ALTER TABLE actions.
type AlterTableAction int

// Alter table actions.
const (
	AlterRenameTo AlterTableAction = iota
	AlterAddColumn
	AlterDropColumn
	AlterRenameColumn
)

// AlterTableStmt represents ALTER TABLE.
type AlterTableStmt struct {
	NodeInfo
	Raw      string
	IfExists bool
	Table    *TableName
	Action   AlterTableAction
	NewName  *TableName // for AlterRenameTo
	Column   ColumnDef  // for AlterAddColumn
	OldCol   Ident      // for AlterDropColumn / AlterRenameColumn
	NewCol   Ident      // for AlterRenameColumn
}

func (*AlterTableStmt) stmtNode() {}

// AlterSessionStmt represents ALTER SESSION SET/UNSET.
type AlterSessionStmt struct {
	NodeInfo
	Raw    string
	Unset  bool
	Params []Assignment // values nil for UNSET
}

func (*AlterSessionStmt) stmtNode() {}

// UseKind enumerates USE statement targets.
type UseKind string

// Use kinds.
const (
	UseDatabase  UseKind = "DATABASE"
	UseSchema    UseKind = "SCHEMA"
	UseRole      UseKind = "ROLE"
	UseWarehouse UseKind = "WAREHOUSE"
)

// UseStmt represents USE DATABASE/SCHEMA/ROLE/WAREHOUSE.
type UseStmt struct {
	NodeInfo
	Raw      string
	Kind     UseKind
	Database Ident // set for USE SCHEMA db.schema
	Name     Ident
}

func (*UseStmt) stmtNode() {}

// SetStmt represents SET <var> = <expr> (session variable).
type SetStmt struct {
	NodeInfo
	Raw   string
	Name  Ident
	Value Expr
}

func (*SetStmt) stmtNode() {}

// UnsetStmt represents UNSET <var>.
type UnsetStmt struct {
	NodeInfo
	Raw  string
	Name Ident
}

func (*UnsetStmt) stmtNode() {}

// ShowStmt represents SHOW <objects> [LIKE 'pattern'] [IN <scope>].
type ShowStmt struct {
	NodeInfo
	Raw     string
	Kind    ObjectKind // DATABASES/SCHEMAS/TABLES/VIEWS mapped to singular kinds
	Terse   bool
	Like    string // empty when absent
	InKind  string // DATABASE, SCHEMA, ACCOUNT or empty
	InName  *TableName
	Objects bool // SHOW OBJECTS
}

func (*ShowStmt) stmtNode() {}

// DescribeStmt represents DESC[RIBE] TABLE/VIEW.
type DescribeStmt struct {
	NodeInfo
	Raw  string
	Kind ObjectKind
	Name *TableName
}

func (*DescribeStmt) stmtNode() {}

// PutStmt represents PUT file://<path> @<stage>.
type PutStmt struct {
	NodeInfo
	Raw       string
	LocalPath string // path portion of the file:// URI
	Stage     StageRef
}

func (*PutStmt) stmtNode() {}

// StageRef is a @stage[/path] reference.
type StageRef struct {
	Name string
	Path string // optional path under the stage
}

// CopyIntoStmt represents COPY INTO <table> FROM @<stage>.
type CopyIntoStmt struct {
	NodeInfo
	Raw     string
	Target  *TableName
	Columns []Ident
	From    StageRef
	Options map[string]string // FILE_FORMAT and friends, normalized keys
}

func (*CopyIntoStmt) stmtNode() {}

// BeginStmt represents BEGIN [TRANSACTION].
type BeginStmt struct {
	NodeInfo
	Raw string
}

func (*BeginStmt) stmtNode() {}

// CommitStmt represents COMMIT.
type CommitStmt struct {
	NodeInfo
	Raw string
}

func (*CommitStmt) stmtNode() {}

// RollbackStmt represents ROLLBACK.
type RollbackStmt struct {
	NodeInfo
	Raw string
}

func (*RollbackStmt) stmtNode() {}
