// Command docgen generates CLI reference documentation from the tkt command
// definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/commands"
	"github.com/colonyops/tkt/internal/workflow"
)

func main() {
	flags := &commands.Flags{}
	app := &workflow.App{}

	root := &cli.Command{
		Name:      "tkt",
		Usage:     "Track tickets through their lifecycle alongside git",
		UsageText: "tkt [global options] command [command options]",
		Description: `tkt keeps one YAML document per ticket under a tickets directory, split
into in_progress, paused, and completed. Each lifecycle step moves the
document and drives git: create branches, pause stashes or commits
uncommitted work, resume restores it, and complete records the final commit.

Run 'tkt verify <name>' or 'tkt doctor' when documents drift from their
directories, and 'tkt guard commit' from a pre-commit hook.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("TKT_LOG_LEVEL"),
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to stderr)",
				Sources: cli.EnvVars("TKT_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("TKT_CONFIG"),
				Value:   commands.DefaultConfigPath,
			},
			&cli.StringFlag{
				Name:    "tickets-dir",
				Usage:   "tickets directory, overriding tickets_dir from the config file",
				Sources: cli.EnvVars("TKT_TICKETS_DIR"),
			},
		},
	}

	root = commands.RegisterAll(root, flags, app)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
