package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type AttachCmd struct {
	flags *Flags
	app   *workflow.App
}

// NewAttachCmd creates a new attach command
func NewAttachCmd(flags *Flags, app *workflow.App) *AttachCmd {
	return &AttachCmd{flags: flags, app: app}
}

// Register adds the attach command to the application
func (cmd *AttachCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "attach",
		Usage:     "Attach the final commit to a completed ticket",
		UsageText: "tkt attach <name> [commit_hash]",
		Description: `Second phase of completion: records the commit hash of a completed
ticket. Without a hash, the current HEAD is used.`,
		ShellComplete: TicketNameCompleter(cmd.app, ticket.StatusCompleted),
		Action:        cmd.run,
	})

	return app
}

func (cmd *AttachCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("missing ticket name; usage: tkt attach <name> [commit_hash]")
	}

	res, err := cmd.app.Lifecycle.AttachCommit(ctx, name, c.Args().Get(1))
	if err != nil {
		return err
	}

	p.Success("Commit attached", res.Ticket.Name)
	p.Field("commit", res.Ticket.CommitHash)
	p.Notes(res.Warnings, res.Guidance)
	return nil
}
