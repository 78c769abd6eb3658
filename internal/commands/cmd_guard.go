package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/workflow"
)

type GuardCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	force         bool
	noInteractive bool
	jsonOutput    bool
}

// NewGuardCmd creates a new guard command
func NewGuardCmd(flags *Flags, app *workflow.App) *GuardCmd {
	return &GuardCmd{flags: flags, app: app}
}

// Register adds the guard command to the application
func (cmd *GuardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "guard",
		Usage:     "Check that work may proceed",
		UsageText: "tkt guard commit|start [--force] [--no-interactive] [--json]",
		Description: `Pre-flight gate for a commit or for starting work. Blocks on the main
branch, on detached HEAD, on branches that are not ticket/<name>, and when the
branch's ticket is not in progress. Other findings are warnings.

When the checks pass, a summary is shown and an explicit yes is required.
Without a terminal (or with --no-interactive) the guard fails unless --force
is given. --force never overrides blocking errors.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.force,
			},
			&cli.BoolFlag{
				Name:        "no-interactive",
				Usage:       "never prompt; fail unless --force",
				Destination: &cmd.noInteractive,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the check result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GuardCmd) run(ctx context.Context, c *cli.Command) error {
	action := c.Args().First()
	if action == "" {
		return fmt.Errorf("missing action; usage: tkt guard commit|start")
	}

	res, err := cmd.app.Guard.Check(ctx, action)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		if err := writeJSON(c.Root().Writer, res); err != nil {
			return err
		}
	} else {
		printGuard(os.Stderr, res)
	}

	interactive := !cmd.noInteractive && !cmd.jsonOutput && isInteractive()
	cmd.app.Guard.SetConfirmer(promptConfirmer{w: os.Stderr})

	return cmd.app.Guard.Authorize(ctx, res, workflow.AuthorizeOptions{
		Interactive: interactive,
		Force:       cmd.force,
	})
}

func printGuard(w io.Writer, r workflow.GuardResult) {
	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("guard "+r.Action)+" "+styles.MutedStyle.Render("on "+orDash(r.Branch)))

	for _, e := range r.Errors {
		_, _ = fmt.Fprintf(w, "  %s %s\n", styles.ErrorStyle.Render(styles.IconCross), e)
	}
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintf(w, "  %s %s\n", styles.WarningStyle.Render(styles.IconWarn), warn)
	}
	if r.Passed() {
		_, _ = fmt.Fprintf(w, "  %s %s\n", styles.SuccessStyle.Render(styles.IconCheck), "checks passed")
	}
}
