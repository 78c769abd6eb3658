package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/commands"
	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/logging"
	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
	"github.com/colonyops/tkt/pkg/executil"
	"github.com/colonyops/tkt/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tktApp    = &workflow.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tkt",
		Usage:     "Track tickets through their lifecycle alongside git",
		UsageText: "tkt [global options] command [command options]",
		Description: `tkt keeps one YAML document per ticket under a tickets directory, split
into in_progress, paused, and completed. Each lifecycle step moves the
document and drives git: create branches, pause stashes or commits
uncommitted work, resume restores it, and complete records the final commit.

Run 'tkt verify <name>' or 'tkt doctor' when documents drift from their
directories, and 'tkt guard commit' from a pre-commit hook.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TKT_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("TKT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TKT_CONFIG"),
				Value:       commands.DefaultConfigPath,
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "tickets-dir",
				Usage:       "tickets directory, overriding tickets_dir from the config file",
				Sources:     cli.EnvVars("TKT_TICKETS_DIR"),
				Destination: &flags.TicketsDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.TicketsDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			gitExec := git.NewExecutor(
				cfg.GitPath,
				cfg.RepoDir,
				&executil.RealExecutor{},
				git.WithRetryMaxElapsed(cfg.Git.RetryMaxElapsed),
			)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*tktApp = *workflow.NewApp(cfg, gitExec, logging.Component("tkt"))

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))

			if sub := c.Args().First(); sub != "" && sub != "journal" {
				commands.NoticePending(ctx, tktApp)
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.RegisterAll(app, flags, tktApp)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		if commands.WantsJSON(os.Args[1:]) {
			commands.PrintErrorJSON(os.Stderr, runErr)
		} else {
			commands.PrintError(os.Stderr, runErr)
		}
		exitCode = 1
	}

	os.Exit(exitCode)
}
