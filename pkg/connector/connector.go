package connector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // registers the duckdb driver

	"github.com/leapstack-labs/snowduck/pkg/infoschema"
	"github.com/leapstack-labs/snowduck/pkg/preprocess"
	"github.com/leapstack-labs/snowduck/pkg/render"
)

// DefaultDatabase is the startup database when none is configured.
const DefaultDatabase = "SNOWDUCK"

// Config controls the engine a Connector wraps.
type Config struct {
	// Path is the DuckDB file backing the startup database. Empty runs
	// fully in memory.
	Path string
	// Database is the startup database name (default SNOWDUCK).
	Database string
	// Schema, Role and Warehouse seed new connections.
	Schema    string
	Role      string
	Warehouse string
	// StageRoot is the directory PUT and COPY INTO stage files under.
	StageRoot string
	// Timezone is applied to the engine when set, e.g. "UTC".
	Timezone string
	// CacheSize bounds the SQL translation cache (default 1024).
	CacheSize int
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	c.Database = strings.ToUpper(c.Database)
	if c.Schema == "" {
		c.Schema = preprocess.DefaultSchema
	}
	if c.Role == "" {
		c.Role = preprocess.DefaultRole
	}
	if c.Warehouse == "" {
		c.Warehouse = preprocess.DefaultWarehouse
	}
	if c.StageRoot == "" {
		c.StageRoot = preprocess.DefaultStageRoot
	}
	if env := os.Getenv("SNOWDUCK_STAGE_DIR"); env != "" {
		c.StageRoot = env
	}
}

// Connector is the connection factory. All connections it creates share
// one DuckDB handle, so catalog mutations from one connection are visible
// to the others, matching warehouse session semantics.
type Connector struct {
	cfg     Config
	db      *sql.DB
	schemas *infoschema.Manager
	trans   *render.Translator
}

// Open boots the engine: attaches the startup database, installs the
// account catalog and the compatibility macros.
func Open(ctx context.Context, cfg Config) (*Connector, error) {
	cfg.applyDefaults()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	c := &Connector{
		cfg:     cfg,
		db:      db,
		schemas: infoschema.NewManager(db),
		trans:   render.NewTranslator(cfg.CacheSize),
	}
	if err := c.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Connector) bootstrap(ctx context.Context) error {
	source := "':memory:'"
	if c.cfg.Path != "" {
		source = "'" + strings.ReplaceAll(c.cfg.Path, "'", "''") + "'"
	}
	stmts := []string{
		fmt.Sprintf("ATTACH DATABASE %s AS %q", source, c.cfg.Database),
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q.PUBLIC", c.cfg.Database),
	}
	if c.cfg.Timezone != "" {
		stmts = append(stmts, fmt.Sprintf("SET TimeZone = '%s'", strings.ReplaceAll(c.cfg.Timezone, "'", "''")))
	}
	stmts = append(stmts, engineMacros...)
	for _, s := range stmts {
		if _, err := c.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("bootstrap engine: %w", err)
		}
	}
	if err := c.schemas.Bootstrap(ctx); err != nil {
		return err
	}
	if err := c.schemas.EnsureDatabase(ctx, c.cfg.Database); err != nil {
		return err
	}
	if err := os.MkdirAll(c.cfg.StageRoot, 0o755); err != nil {
		return fmt.Errorf("create stage root: %w", err)
	}
	return nil
}

// Connect opens a new logical connection with its own pinned engine
// connection and fresh session defaults.
func (c *Connector) Connect(ctx context.Context) (*Connection, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, translateEngineError(err)
	}
	sess := preprocess.NewSession(c.cfg.Database)
	sess.Schema = strings.ToUpper(c.cfg.Schema)
	sess.Role = strings.ToUpper(c.cfg.Role)
	sess.Warehouse = strings.ToUpper(c.cfg.Warehouse)
	sess.StageRoot = c.cfg.StageRoot

	cn := &Connection{connector: c, conn: conn, sess: sess}
	if err := cn.syncSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return cn, nil
}

// ClearCaches drops the SQL translation cache and the column metadata
// cache. Intended for tests.
func (c *Connector) ClearCaches() {
	c.trans.ClearCache()
	c.schemas.ClearCache()
}

// Close shuts the shared engine handle down. Connections created from the
// connector become unusable.
func (c *Connector) Close() error {
	return c.db.Close()
}
