package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/printer"
	"github.com/colonyops/tkt/internal/workflow"
)

type JournalCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	clear      string
	jsonOutput bool
}

// NewJournalCmd creates a new journal command
func NewJournalCmd(flags *Flags, app *workflow.App) *JournalCmd {
	return &JournalCmd{flags: flags, app: app}
}

// Register adds the journal command to the application
func (cmd *JournalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "journal",
		Usage:     "List interrupted transitions",
		UsageText: "tkt journal [--clear id] [--json]",
		Description: `Every create, pause, resume, and complete records its progress in the
journal and removes the entry when it finishes. Entries left behind mark
transitions that stopped partway; the last completed step shows where.

Inspect the ticket (tkt verify <name>) and git state, repair by hand or with
'tkt fix', then remove the entry with --clear.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "clear",
				Usage:       "remove the entry with this id",
				Destination: &cmd.clear,
			},
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

// journalInfo is the JSON output format for tkt journal --json.
type journalInfo struct {
	ID         string    `json:"id"`
	Transition string    `json:"transition"`
	Ticket     string    `json:"ticket"`
	StartedAt  time.Time `json:"started_at"`
	Steps      []string  `json:"steps"`
}

func (cmd *JournalCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear != "" {
		if err := cmd.app.Journal.Discard(ctx, cmd.clear); err != nil {
			return fmt.Errorf("clear journal entry %s: %w", cmd.clear, err)
		}
		p.Success("Journal entry cleared", cmd.clear)
		return nil
	}

	pending, err := cmd.app.Journal.Pending(ctx)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		infos := make([]journalInfo, 0, len(pending))
		for _, e := range pending {
			steps := e.Steps
			if steps == nil {
				steps = []string{}
			}
			infos = append(infos, journalInfo{
				ID:         e.ID,
				Transition: e.Transition,
				Ticket:     e.Ticket,
				StartedAt:  e.StartedAt,
				Steps:      steps,
			})
		}
		return writeJSON(out, infos)
	}

	if len(pending) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No interrupted transitions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTRANSITION\tTICKET\tSTARTED\tSTEPS")
	for _, e := range pending {
		steps := "none"
		if len(e.Steps) > 0 {
			steps = strings.Join(e.Steps, ",")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Transition, e.Ticket, humanize.Time(e.StartedAt), steps)
	}
	return w.Flush()
}

// NoticePending warns on stderr about interrupted transitions. It is called
// before every command except journal itself.
func NoticePending(ctx context.Context, app *workflow.App) {
	pending, err := app.Journal.Pending(ctx)
	if err != nil || len(pending) == 0 {
		return
	}

	p := printer.Ctx(ctx)
	for _, e := range pending {
		p.Warnf("interrupted %s of %q (last step: %s)", e.Transition, e.Ticket, orDash(e.LastStep()))
	}
	p.Hint("tkt journal")
}
