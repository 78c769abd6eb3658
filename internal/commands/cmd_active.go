package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type ActiveCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	jsonOutput bool
}

// NewActiveCmd creates a new active command
func NewActiveCmd(flags *Flags, app *workflow.App) *ActiveCmd {
	return &ActiveCmd{flags: flags, app: app}
}

// Register adds the active command to the application
func (cmd *ActiveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "active",
		Usage:     "Print the active ticket",
		UsageText: "tkt active [--json]",
		Description: `Prints the name of the ticket currently being worked on, or "none".

The ticket implied by the current ticket/<name> branch wins, then the ticket
recorded by the last create or resume, then the only in-progress ticket.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ActiveCmd) run(ctx context.Context, c *cli.Command) error {
	res, err := cmd.app.Integrity.ActiveTicket(ctx)
	if err != nil {
		return fmt.Errorf("resolve active ticket: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return writeJSON(out, res)
	}

	if res.Name == "" {
		_, _ = fmt.Fprintln(out, "none")
		if len(res.Ambiguous) > 0 {
			p := printer.Ctx(ctx)
			p.Warnf("%d tickets are in progress: %s", len(res.Ambiguous), strings.Join(res.Ambiguous, ", "))
			p.Hint("pause all but one, or check out a ticket branch")
		}
		return nil
	}

	_, _ = fmt.Fprintln(out, res.Name)
	return nil
}
