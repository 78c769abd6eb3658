package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/core/validate"
	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type CreateCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	goal string
}

// NewCreateCmd creates a new create command
func NewCreateCmd(flags *Flags, app *workflow.App) *CreateCmd {
	return &CreateCmd{flags: flags, app: app}
}

// Register adds the create command to the application
func (cmd *CreateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "create",
		Usage:     "Create a ticket and its branch",
		UsageText: "tkt create <name> <type> [description] [--goal text]",
		Description: `Writes a new in-progress ticket document and checks out ticket/<name>
from the main branch (pulling first unless pull_on_create is false).

Names are lowercase slugs such as add-login. Types: feature, bug, refactor, docs.
Git failures are reported as warnings; the ticket document is still written.

When run in a terminal without arguments, an interactive form prompts for input.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "goal",
				Aliases:     []string{"g"},
				Usage:       "goal recorded in the ticket spec",
				Destination: &cmd.goal,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CreateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	opts := workflow.CreateOptions{
		Name:        c.Args().Get(0),
		Type:        ticket.Type(c.Args().Get(1)),
		Description: c.Args().Get(2),
		Goal:        cmd.goal,
	}

	if opts.Name == "" {
		if !isInteractive() {
			return fmt.Errorf("missing ticket name; usage: tkt create <name> <type> [description]")
		}
		if err := cmd.runForm(&opts); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	res, err := cmd.app.Lifecycle.Create(ctx, opts)
	if err != nil {
		return err
	}

	p.Success("Ticket created", res.Ticket.Name)
	p.Field("type", string(res.Ticket.Type))
	p.Field("branch", res.Ticket.Branch)
	p.Field("path", relPath(cmd.app, res.Path))
	p.Notes(res.Warnings, res.Guidance)
	return nil
}

func (cmd *CreateCmd) runForm(opts *workflow.CreateOptions) error {
	types := make([]huh.Option[ticket.Type], len(ticket.Types))
	for i, t := range ticket.Types {
		types[i] = huh.NewOption(string(t), t)
	}
	if opts.Type == "" {
		opts.Type = ticket.TypeFeature
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ticket name").
				Description("Lowercase slug, e.g. add-login").
				Validate(validate.TicketName).
				Value(&opts.Name),
			huh.NewSelect[ticket.Type]().
				Title("Type").
				Options(types...).
				Value(&opts.Type),
			huh.NewInput().
				Title("Description").
				Value(&opts.Description),
			huh.NewText().
				Title("Goal").
				Description("What done looks like").
				Value(&opts.Goal),
		),
	).Run()
}
