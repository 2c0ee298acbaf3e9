package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowduck/internal/config"
	"github.com/leapstack-labs/snowduck/pkg/connector"
)

// ExecOptions holds options for the exec command.
type ExecOptions struct {
	Format string
	Input  string
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Execute SQL statements",
		Long: `Execute one or more Snowflake SQL statements and print the results.

Multiple ;-separated statements run in order; the last statement's result
is rendered.`,
		Example: `  # Execute SQL directly
  snowduck exec "SELECT current_database()"

  # Run a script
  snowduck exec --input setup.sql

  # Output as JSON
  snowduck exec "SHOW DATABASES" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *ExecOptions) error {
	query := strings.Join(args, " ")
	if opts.Input != "" {
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		query = string(content)
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("no SQL given; pass a statement or --input <file>")
	}

	ctx := cmd.Context()
	cfg := config.Current()

	c, err := connector.Open(ctx, cfg.ToConnector())
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer func() { _ = c.Close() }()

	conn, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	return executeAndRender(ctx, cmd, conn, query, opts.Format)
}
