package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowduck/pkg/connector"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "snowduck v1.2.3")
	assert.Contains(t, buf.String(), "DuckDB")
}

func TestNewShellCommand(t *testing.T) {
	cmd := NewShellCommand()
	assert.Equal(t, "shell", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("format"), "flag format should exist")
}

func TestNewExecCommand(t *testing.T) {
	cmd := NewExecCommand()
	assert.Equal(t, "exec [SQL]", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	for _, flag := range []string{"format", "input"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestExecCommandRequiresSQL(t *testing.T) {
	cmd := NewExecCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(nil)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SQL given")
}

func executeCursor(t *testing.T, sql string) *connector.Cursor {
	t.Helper()
	ctx := context.Background()
	c, err := connector.Open(ctx, connector.Config{Database: "DB1", StageRoot: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	conn, err := c.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cur := conn.Cursor()
	require.NoError(t, cur.Execute(ctx, sql))
	return cur
}

func TestRenderTable(t *testing.T) {
	cur := executeCursor(t, "SELECT 1 AS A, 'x' AS B")
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, cur, "table"))

	out := buf.String()
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "B")
	assert.Contains(t, out, "(1 rows)")
}

func TestRenderJSON(t *testing.T) {
	cur := executeCursor(t, "SELECT 1 AS A")
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, cur, "json"))
	assert.Contains(t, buf.String(), `"A": 1`)
}

func TestRenderCSV(t *testing.T) {
	cur := executeCursor(t, "SELECT 'needs,quoting' AS A, 2 AS B")
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, cur, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "A,B", lines[0])
	assert.Equal(t, `"needs,quoting",2`, lines[1])
}

func TestRenderMarkdown(t *testing.T) {
	cur := executeCursor(t, "SELECT NULL AS A")
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, cur, "md"))

	assert.Contains(t, buf.String(), "| A |")
	assert.Contains(t, buf.String(), "| NULL |")
}

func TestRenderEmptyResult(t *testing.T) {
	cur := executeCursor(t, "SELECT 1 AS A WHERE FALSE")
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, cur, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())
}
