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

// IntegrityCmd registers check, verify, and fix.
type IntegrityCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	jsonOutput bool
}

// NewIntegrityCmd creates the integrity commands
func NewIntegrityCmd(flags *Flags, app *workflow.App) *IntegrityCmd {
	return &IntegrityCmd{flags: flags, app: app}
}

// Register adds check, verify, and fix to the application
func (cmd *IntegrityCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "output as JSON",
			Destination: &cmd.jsonOutput,
		}
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "check",
			Usage:     "Exit non-zero when a ticket has integrity errors",
			UsageText: "tkt check <name> [--json]",
			Description: `Quiet form of 'tkt verify' for scripts and hooks: prints only blocking
errors and exits 1 when there are any.`,
			Flags:         []cli.Flag{jsonFlag()},
			ShellComplete: TicketNameCompleter(cmd.app),
			Action:        cmd.runCheck,
		},
		&cli.Command{
			Name:      "verify",
			Usage:     "Verify a ticket's documents",
			UsageText: "tkt verify <name> [--json]",
			Description: `Checks that the ticket exists exactly once, that its document parses,
that its status matches its directory, and that required fields are present.
Warnings cover completion without a commit hash, leftover WIP snapshots, and
interrupted transitions. Exits 1 when there are blocking errors.`,
			Flags:         []cli.Flag{jsonFlag()},
			ShellComplete: TicketNameCompleter(cmd.app),
			Action:        cmd.runVerify,
		},
		&cli.Command{
			Name:      "fix",
			Usage:     "Repair common ticket problems",
			UsageText: "tkt fix <name> [--json]",
			Description: `Resolves duplicate documents (the most recently modified copy is kept;
the others are deleted or quarantined per integrity.duplicate_policy),
backfills status, name, and created_at from the file location, then
verifies again.`,
			Flags:         []cli.Flag{jsonFlag()},
			ShellComplete: TicketNameCompleter(cmd.app),
			Action:        cmd.runFix,
		},
	)

	return app
}

func ticketArg(c *cli.Command) (string, error) {
	name := c.Args().First()
	if name == "" {
		return "", fmt.Errorf("missing ticket name; usage: tkt %s <name>", c.Name)
	}
	return name, nil
}

func (cmd *IntegrityCmd) runCheck(ctx context.Context, c *cli.Command) error {
	name, err := ticketArg(c)
	if err != nil {
		return err
	}

	res, err := cmd.app.Integrity.Verify(ctx, name)
	if err != nil {
		return fmt.Errorf("verify %q: %w", name, err)
	}

	if cmd.jsonOutput {
		if err := writeJSON(c.Root().Writer, res); err != nil {
			return err
		}
	} else {
		for _, e := range res.Errors {
			_, _ = fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render(styles.IconCross+" "+e))
		}
	}

	if !res.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *IntegrityCmd) runVerify(ctx context.Context, c *cli.Command) error {
	name, err := ticketArg(c)
	if err != nil {
		return err
	}

	res, err := cmd.app.Integrity.Verify(ctx, name)
	if err != nil {
		return fmt.Errorf("verify %q: %w", name, err)
	}

	if cmd.jsonOutput {
		if err := writeJSON(c.Root().Writer, res); err != nil {
			return err
		}
	} else {
		printIntegrity(os.Stderr, res)
	}

	if !res.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *IntegrityCmd) runFix(ctx context.Context, c *cli.Command) error {
	name, err := ticketArg(c)
	if err != nil {
		return err
	}

	report, err := cmd.app.Integrity.FixCommonIssues(ctx, name)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		if err := writeJSON(c.Root().Writer, report); err != nil {
			return err
		}
	} else {
		w := os.Stderr
		if len(report.Actions) == 0 {
			_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("Nothing to repair"))
		}
		for _, a := range report.Actions {
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.SuccessStyle.Render(styles.IconCheck), a)
		}
		_, _ = fmt.Fprintln(w)
		printIntegrity(w, report.Result)
	}

	if !report.Result.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func printIntegrity(w io.Writer, res workflow.IntegrityResult) {
	title := styles.HeaderStyle.Render(res.Name)
	if res.Status != "" {
		title += " " + styles.StatusBadge(string(res.Status))
	}
	_, _ = fmt.Fprintln(w, title)

	for _, path := range res.Locations.Paths() {
		_, _ = fmt.Fprintln(w, "  "+styles.MutedStyle.Render(path))
	}

	for _, e := range res.Errors {
		_, _ = fmt.Fprintf(w, "  %s %s\n", styles.ErrorStyle.Render(styles.IconCross), e)
	}
	for _, warn := range res.Warnings {
		_, _ = fmt.Fprintf(w, "  %s %s\n", styles.WarningStyle.Render(styles.IconWarn), warn)
	}
	for _, s := range res.Suggestions {
		_, _ = fmt.Fprintf(w, "  %s %s\n", styles.MutedStyle.Render(styles.IconArrow), styles.CommandStyle.Render(s))
	}

	if res.Valid {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render(styles.IconCheck+" valid"))
		if res.CommitHash != "" {
			_, _ = fmt.Fprintln(w, "  "+styles.LabelStyle.Render("commit")+res.CommitHash)
		}
	}
}
