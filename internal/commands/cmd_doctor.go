package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/doctor"
	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type DoctorCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	format  string
	autofix bool
	verbose bool
}

// NewDoctorCmd creates a new doctor command
func NewDoctorCmd(flags *Flags, app *workflow.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

// Register adds the doctor command to the application
func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Run health checks on the ticket tree",
		UsageText: "tkt doctor [--autofix] [--verbose] [--format json]",
		Description: `Checks configuration, the git executable, the tickets directories, every
ticket document, the active index, the transition journal, and completed
tickets waiting for a commit hash.

Passing checks print one line; use --verbose to list every item. --autofix
repairs duplicates, status mismatches, missing fields, and a stale index.
Exits 1 when any check fails.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "repair fixable problems before reporting",
				Destination: &cmd.autofix,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "list passing items too",
				Destination: &cmd.verbose,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := cmd.app.Doctor.RunChecks(ctx, cmd.flags.ConfigPath, cmd.autofix)
	_, _, failed := doctor.Summary(results)

	if cmd.format == "json" {
		if err := cmd.outputJSON(c.Root().Writer, results); err != nil {
			return err
		}
	} else {
		cmd.outputText(printer.Ctx(ctx), results)
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

type doctorJSON struct {
	Healthy bool            `json:"healthy"`
	Passed  int             `json:"passed"`
	Warned  int             `json:"warned"`
	Failed  int             `json:"failed"`
	Fixable int             `json:"fixable"`
	Checks  []doctor.Result `json:"checks"`
}

func (cmd *DoctorCmd) outputJSON(w io.Writer, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)
	return writeJSON(w, doctorJSON{
		Healthy: failed == 0,
		Passed:  passed,
		Warned:  warned,
		Failed:  failed,
		Fixable: doctor.CountFixable(results),
		Checks:  results,
	})
}

func (cmd *DoctorCmd) outputText(p *printer.Printer, results []doctor.Result) {
	w := p.Writer()

	for _, r := range results {
		items := r.Problems()
		if cmd.verbose {
			items = r.Items
		}

		_, _ = fmt.Fprintf(w, "%s %s\n", statusIcon(r.Status()), styles.ValueStyle.Bold(true).Render(r.Name))
		for _, item := range items {
			line := "    " + statusIcon(item.Status) + " " + item.Label
			if item.Detail != "" {
				line += " " + styles.MutedStyle.Render(item.Detail)
			}
			if item.Fixable && item.Status != doctor.StatusPass {
				line += " " + styles.MutedStyle.Render("(fixable)")
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}

	passed, warned, failed := doctor.Summary(results)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s, %s, %s\n",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
	)

	if fixable := doctor.CountFixable(results); fixable > 0 && !cmd.autofix {
		p.Hint(fmt.Sprintf("tkt doctor --autofix  (repairs %d issue(s))", fixable))
	}
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusWarn:
		return styles.WarningStyle.Render(styles.IconWarn)
	case doctor.StatusFail:
		return styles.ErrorStyle.Render(styles.IconCross)
	default:
		return styles.SuccessStyle.Render(styles.IconCheck)
	}
}
