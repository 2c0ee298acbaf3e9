package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowduck/pkg/connector"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database)
	assert.Equal(t, connector.DefaultDatabase, cfg.Name)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.Verbose)
}

func TestConfigFile(t *testing.T) {
	path := writeConfig(t, `
database: /tmp/warehouse.db
name: analytics
schema: raw
stage_dir: /tmp/stage
cache_size: 16
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/warehouse.db", cfg.Database)
	assert.Equal(t, "analytics", cfg.Name)
	assert.Equal(t, "raw", cfg.Schema)
	assert.Equal(t, "/tmp/stage", cfg.StageDir)
	assert.Equal(t, 16, cfg.CacheSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "name: from_file\n")
	t.Setenv("SNOWDUCK_NAME", "from_env")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Name)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SNOWDUCK_NAME", "from_env")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("name", "", "database name")
	flags.String("stage-dir", "", "stage directory")
	require.NoError(t, flags.Parse([]string{"--name", "from_flag", "--stage-dir", "/var/stage"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.Name)
	assert.Equal(t, "/var/stage", cfg.StageDir)
}

func TestUnsetFlagsDoNotOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("name", "ignored-default", "database name")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, connector.DefaultDatabase, cfg.Name)
}

func TestToConnector(t *testing.T) {
	cfg := &Config{Database: ":memory:", Name: "db1", Timezone: "UTC", CacheSize: 8}
	cc := cfg.ToConnector()
	assert.Empty(t, cc.Path)
	assert.Equal(t, "db1", cc.Database)
	assert.Equal(t, 8, cc.CacheSize)

	cfg.Database = "/tmp/x.db"
	assert.Equal(t, "/tmp/x.db", cfg.ToConnector().Path)
}
