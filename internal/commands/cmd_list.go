package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/workflow"
)

type ListCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	status     string
	jsonOutput bool
}

// NewListCmd creates a new list command
func NewListCmd(flags *Flags, app *workflow.App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

// Register adds the list command to the application
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tickets",
		UsageText: "tkt list [--status in_progress|paused|completed] [--json]",
		Description: `Displays a table of ticket documents with their status, type, branch,
and age. Unreadable documents are listed separately.

Use --json for one JSON object per ticket.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "only list tickets with this status",
				Destination: &cmd.status,
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

// ticketInfo is the JSON output format for tkt list --json.
type ticketInfo struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	Branch     string `json:"branch"`
	CommitHash string `json:"commit_hash,omitempty"`
	Path       string `json:"path"`
	Error      string `json:"error,omitempty"`
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	var statuses []ticket.Status
	if cmd.status != "" {
		s := ticket.Status(cmd.status)
		if !s.IsValid() {
			return fmt.Errorf("unknown status %q", cmd.status)
		}
		statuses = append(statuses, s)
	}

	entries, err := cmd.app.Store.List(ctx, statuses...)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}

	slices.SortStableFunc(entries, func(a, b ticket.Entry) int {
		if c := strings.Compare(string(a.Dir), string(b.Dir)); c != 0 {
			return c
		}
		return strings.Compare(a.Name(), b.Name())
	})

	out := c.Root().Writer

	if cmd.jsonOutput {
		infos := make([]ticketInfo, 0, len(entries))
		for _, e := range entries {
			info := ticketInfo{
				Name:       e.Name(),
				Status:     string(e.Dir),
				Type:       string(e.Ticket.Type),
				Branch:     e.Ticket.Branch,
				CommitHash: e.Ticket.CommitHash,
				Path:       relPath(cmd.app, e.Path),
			}
			if e.Err != nil {
				info.Error = e.Err.Error()
			}
			infos = append(infos, info)
		}
		return writeJSON(out, infos)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No tickets found")
		return nil
	}

	var broken []ticket.Entry
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tTYPE\tBRANCH\tAGE")

	for _, e := range entries {
		if e.Err != nil {
			broken = append(broken, e)
			continue
		}
		age := "-"
		if e.Ticket.CreatedAt != nil {
			age = humanize.Time(*e.Ticket.CreatedAt)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name(), e.Dir, e.Ticket.Type, e.Ticket.Branch, age)
	}
	_ = w.Flush()

	if len(broken) > 0 {
		_, _ = fmt.Fprintln(os.Stderr)
		_, _ = fmt.Fprintln(os.Stderr, styles.WarningStyle.Render(fmt.Sprintf("Found %d unreadable document(s):", len(broken))))
		for _, e := range broken {
			_, _ = fmt.Fprintf(os.Stderr, "  %s: %v\n", relPath(cmd.app, e.Path), e.Err)
		}
		_, _ = fmt.Fprintln(os.Stderr, styles.MutedStyle.Render("Run 'tkt doctor' for details"))
	}

	return nil
}
