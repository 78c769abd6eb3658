package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type PauseCmd struct {
	flags *Flags
	app   *workflow.App
}

// NewPauseCmd creates a new pause command
func NewPauseCmd(flags *Flags, app *workflow.App) *PauseCmd {
	return &PauseCmd{flags: flags, app: app}
}

// Register adds the pause command to the application
func (cmd *PauseCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "pause",
		Usage:     "Pause a ticket and preserve uncommitted work",
		UsageText: "tkt pause [name]",
		Description: `Preserves uncommitted changes and moves the ticket to paused.

Up to lifecycle.stash_threshold changed files (default 5) are stashed; larger
change sets are saved as a WIP commit on the ticket branch. The snapshot is
restored by 'tkt resume'.

Without a name, the active ticket is paused.`,
		ShellComplete: TicketNameCompleter(cmd.app, ticket.StatusInProgress),
		Action:        cmd.run,
	})

	return app
}

func (cmd *PauseCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	res, err := cmd.app.Lifecycle.Pause(ctx, c.Args().First())
	if err != nil {
		return err
	}

	p.Success("Ticket paused", res.Ticket.Name)
	if snap := res.Snapshot; snap != nil {
		p.Field("snapshot", snapshotLabel(snap))
	}
	p.Field("path", relPath(cmd.app, res.Path))
	p.Notes(res.Warnings, res.Guidance)
	return nil
}

func snapshotLabel(snap *ticket.WipSnapshot) string {
	return fmt.Sprintf("%s %s (%d file(s))", snap.Method, shortRef(snap.Ref), snap.FileCount)
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
