package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowduck/internal/config"
	"github.com/leapstack-labs/snowduck/pkg/connector"
)

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	Format string
}

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive SQL shell",
		Long: `Start an interactive shell speaking the Snowflake SQL dialect.

Statements are rewritten and executed against the embedded DuckDB engine.
Session statements (USE, SET, CREATE STAGE, PUT) behave as they do against
a warehouse.`,
		Example: `  # In-memory session
  snowduck shell

  # Against a database file
  snowduck shell --database warehouse.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
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

	historyFile := filepath.Join(cfg.StageDir, ".shell_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(conn),
		HistoryFile:     historyFile,
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "snowduck shell (database: %s)\n", conn.Database())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(prompt(conn))
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") && multiLineBuffer.Len() == 0 {
			if handled := handleDotCommand(ctx, cmd, conn, line, opts.Format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}

		query := multiLineBuffer.String()
		multiLineBuffer.Reset()

		if err := executeAndRender(ctx, cmd, conn, query, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		rl.SetPrompt(prompt(conn))
	}

	return nil
}

// prompt reflects the session context the way the warehouse clients do.
func prompt(conn *connector.Connection) string {
	return fmt.Sprintf("%s.%s> ", conn.Database(), conn.Schema())
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, conn *connector.Connection, query, format string) error {
	cur := conn.Cursor()
	defer cur.Close()

	if err := cur.Execute(ctx, query); err != nil {
		return err
	}
	return renderResult(cmd.OutOrStdout(), cur, format)
}

func handleDotCommand(ctx context.Context, cmd *cobra.Command, conn *connector.Connection, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(cmd.OutOrStdout())
		return true

	case ".databases":
		if err := executeAndRender(ctx, cmd, conn, "SHOW DATABASES", format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".tables":
		if err := executeAndRender(ctx, cmd, conn, "SHOW TABLES", format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		if err := executeAndRender(ctx, cmd, conn, "DESCRIBE TABLE "+parts[1], format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .databases      List databases
  .tables         List tables in the current schema
  .schema <name>  Describe a table
  .clear          Clear the screen
  .quit / .exit   Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - USE DATABASE/SCHEMA changes the prompt
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// shellCompleter completes dot-commands and leading SQL keywords.
func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("CREATE",
			readline.PcItem("DATABASE"),
			readline.PcItem("SCHEMA"),
			readline.PcItem("TABLE"),
			readline.PcItem("STAGE"),
		),
		readline.PcItem("USE",
			readline.PcItem("DATABASE"),
			readline.PcItem("SCHEMA"),
			readline.PcItem("ROLE"),
			readline.PcItem("WAREHOUSE"),
		),
		readline.PcItem("SHOW",
			readline.PcItem("DATABASES"),
			readline.PcItem("SCHEMAS"),
			readline.PcItem("TABLES"),
			readline.PcItem("VIEWS"),
		),
		readline.PcItem("DESCRIBE"),
		readline.PcItem("INSERT"),
		readline.PcItem("UPDATE"),
		readline.PcItem("DELETE"),
		readline.PcItem("MERGE"),
		readline.PcItem("COPY"),
		readline.PcItem("PUT"),
		readline.PcItem(".help"),
		readline.PcItem(".databases"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
