package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type ResumeCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	pauseActive bool
}

// NewResumeCmd creates a new resume command
func NewResumeCmd(flags *Flags, app *workflow.App) *ResumeCmd {
	return &ResumeCmd{flags: flags, app: app}
}

// Register adds the resume command to the application
func (cmd *ResumeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "resume",
		Usage:     "Resume a paused ticket",
		UsageText: "tkt resume <name> [--pause-active]",
		Description: `Checks out the ticket branch, restores the work saved by 'tkt pause',
and moves the ticket back to in_progress.

Resume refuses while another ticket is in progress unless --pause-active is
given (or lifecycle.cascade_pause is set), in which case the other ticket is
paused first.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "pause-active",
				Usage:       "pause any other in-progress ticket first",
				Destination: &cmd.pauseActive,
			},
		},
		ShellComplete: TicketNameCompleter(cmd.app, ticket.StatusPaused),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ResumeCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("missing ticket name; usage: tkt resume <name>")
	}

	res, err := cmd.app.Lifecycle.Resume(ctx, name, workflow.ResumeOptions{PauseActive: cmd.pauseActive})
	if err != nil {
		return err
	}

	for _, paused := range res.Paused {
		p.Success("Ticket paused", paused.Ticket.Name)
		p.Notes(nil, paused.Guidance)
	}

	p.Success("Ticket resumed", res.Ticket.Name)
	p.Field("branch", res.Ticket.Branch)
	if res.PausedFor != "" {
		p.Field("paused for", res.PausedFor)
	}
	p.Notes(res.Warnings, res.Guidance)
	return nil
}
