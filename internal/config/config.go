// Package config loads snowduck configuration from file, environment and
// flags.
package config

import (
	"github.com/leapstack-labs/snowduck/pkg/connector"
	"github.com/leapstack-labs/snowduck/pkg/render"
)

// Config holds everything the CLI and the connector need to boot.
type Config struct {
	// Database is the DuckDB file backing the startup database. Empty or
	// ":memory:" runs fully in memory.
	Database string `koanf:"database"`
	// Name is the startup database name.
	Name string `koanf:"name"`
	// Schema, Role and Warehouse seed new connections.
	Schema    string `koanf:"schema"`
	Role      string `koanf:"role"`
	Warehouse string `koanf:"warehouse"`
	// StageDir is the directory PUT and COPY INTO stage files under.
	StageDir string `koanf:"stage_dir"`
	// Timezone is applied to the engine, e.g. "UTC".
	Timezone string `koanf:"timezone"`
	// CacheSize bounds the SQL translation cache.
	CacheSize int `koanf:"cache_size"`
	// Verbose switches debug logging on.
	Verbose bool `koanf:"verbose"`
}

// ToConnector maps the loaded configuration onto the connector's Config.
func (c *Config) ToConnector() connector.Config {
	path := c.Database
	if path == ":memory:" {
		path = ""
	}
	return connector.Config{
		Path:      path,
		Database:  c.Name,
		Schema:    c.Schema,
		Role:      c.Role,
		Warehouse: c.Warehouse,
		StageRoot: c.StageDir,
		Timezone:  c.Timezone,
		CacheSize: c.CacheSize,
	}
}

// defaults is the lowest-precedence configuration layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"database":   ":memory:",
		"name":       connector.DefaultDatabase,
		"timezone":   "UTC",
		"cache_size": render.DefaultCacheSize,
		"verbose":    false,
	}
}
