package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type CompleteCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	head bool
}

// NewCompleteCmd creates a new complete command
func NewCompleteCmd(flags *Flags, app *workflow.App) *CompleteCmd {
	return &CompleteCmd{flags: flags, app: app}
}

// Register adds the complete command to the application
func (cmd *CompleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "complete",
		Usage:     "Complete an in-progress ticket",
		UsageText: "tkt complete [name] [commit_hash] [--head]",
		Description: `Records the completion time and duration and moves the ticket to
completed/<date>/.

The commit hash may be given now, taken from HEAD with --head, or attached
later with 'tkt attach'. Without a name, the active ticket is completed.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "head",
				Usage:       "record the current HEAD as the commit hash",
				Destination: &cmd.head,
			},
		},
		ShellComplete: TicketNameCompleter(cmd.app, ticket.StatusInProgress),
		Action:        cmd.run,
	})

	return app
}

func (cmd *CompleteCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name, hash := c.Args().Get(0), c.Args().Get(1)
	if cmd.head {
		if hash != "" {
			return fmt.Errorf("--head cannot be combined with a commit hash")
		}
		var err error
		if hash, err = cmd.app.Git.Head(ctx); err != nil {
			return fmt.Errorf("resolve HEAD: %w", err)
		}
	}

	res, err := cmd.app.Lifecycle.Complete(ctx, name, hash)
	if err != nil {
		return err
	}

	p.Success("Ticket completed", res.Ticket.Name)
	p.Field("duration", humanize.Comma(int64(res.Ticket.DurationMinutes))+" min")
	if res.Ticket.CommitHash != "" {
		p.Field("commit", res.Ticket.CommitHash)
	}
	p.Field("path", relPath(cmd.app, res.Path))
	p.Notes(res.Warnings, res.Guidance)
	return nil
}
