package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

// InfoSchemaName is the schema name reported while the internal catalog
// schema is the active one.
const InfoSchemaName = "INFORMATION_SCHEMA"

// Connection is one logical warehouse connection: a pinned engine
// connection plus mutable session state. Statements on one connection must
// not be interleaved; callers needing concurrency open more connections.
type Connection struct {
	connector *Connector
	conn      *sql.Conn
	sess      *preprocess.Session
	closed    bool
}

// Cursor returns a new cursor over this connection.
func (c *Connection) Cursor() *Cursor {
	return &Cursor{conn: c}
}

// Database reports the session's current database.
func (c *Connection) Database() string { return c.sess.Database }

// Schema reports the session's current schema.
func (c *Connection) Schema() string { return c.sess.Schema }

// Role reports the session's current role.
func (c *Connection) Role() string { return c.sess.Role }

// Warehouse reports the session's current warehouse.
func (c *Connection) Warehouse() string { return c.sess.Warehouse }

// UseDatabase switches the current database and resets the schema to PUBLIC.
func (c *Connection) UseDatabase(ctx context.Context, name string) error {
	return c.execUse(ctx, "USE DATABASE "+name)
}

// UseSchema switches the current schema within the current database.
func (c *Connection) UseSchema(ctx context.Context, name string) error {
	return c.execUse(ctx, "USE SCHEMA "+name)
}

// UseRole switches the session role.
func (c *Connection) UseRole(ctx context.Context, name string) error {
	return c.execUse(ctx, "USE ROLE "+name)
}

// UseWarehouse switches the session warehouse.
func (c *Connection) UseWarehouse(ctx context.Context, name string) error {
	return c.execUse(ctx, "USE WAREHOUSE "+name)
}

func (c *Connection) execUse(ctx context.Context, stmt string) error {
	cur := c.Cursor()
	defer cur.Close()
	return cur.Execute(ctx, stmt)
}

// GetColumnMetadata returns Snowflake-shaped column metadata for a table in
// the current database and schema.
func (c *Connection) GetColumnMetadata(ctx context.Context, table string) ([]ColumnInfo, error) {
	if c.closed {
		return nil, errClosed("connection")
	}
	cols, err := c.connector.schemas.Columns(ctx, c.sess.Database, c.actualSchema(), table)
	if err != nil {
		return nil, translateEngineError(err)
	}
	infos := make([]ColumnInfo, 0, len(cols))
	for _, col := range cols {
		info, err := columnInfoFor(col.Name, col.Type, col.Nullable)
		if err != nil {
			return nil, err
		}
		if col.CharLen.Valid && info.Type == TypeText {
			info.Length = col.CharLen.Int64
			info.ByteLen = col.CharLen.Int64
		}
		if col.Precision.Valid && info.Type == TypeFixed {
			info.Precision = col.Precision.Int64
		}
		if col.Scale.Valid && info.Type == TypeFixed {
			info.Scale = col.Scale.Int64
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Close releases the pinned engine connection. Further use fails with a
// connection-closed error.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// IsClosed reports whether Close was called.
func (c *Connection) IsClosed() bool { return c.closed }

// actualSchema resolves the engine-side schema name: the reported
// INFORMATION_SCHEMA binds to the internal catalog schema.
func (c *Connection) actualSchema() string {
	if strings.EqualFold(c.sess.Schema, InfoSchemaName) {
		return preprocess.InfoSchemaName
	}
	return c.sess.Schema
}

// syncSchema pushes the session's database.schema onto the pinned engine
// connection. Runs before every engine-bound statement because the handle
// does not inherit session state.
func (c *Connection) syncSchema(ctx context.Context) error {
	target := fmt.Sprintf("%s.%s", c.sess.Database, c.actualSchema())
	_, err := c.conn.ExecContext(ctx, fmt.Sprintf("SET schema = '%s'", strings.ReplaceAll(target, "'", "''")))
	return translateEngineError(err)
}
