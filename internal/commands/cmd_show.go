package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/workflow"
)

type ShowCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	raw bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *workflow.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show a ticket summary",
		UsageText: "tkt show <name> [--raw]",
		Description: `Renders a summary of the ticket: status, timeline, goal, checklist,
changed files, and work sessions.

Output is rendered markdown in a terminal and plain markdown otherwise.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
		},
		ShellComplete: TicketNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("missing ticket name; usage: tkt show <name>")
	}

	e, err := cmd.app.Store.Find(ctx, name)
	if err != nil {
		return err
	}
	if e.Err != nil {
		return e.Err
	}

	md := ticketMarkdown(e, relPath(cmd.app, e.Path), time.Now())
	out := c.Root().Writer

	fd := int(os.Stdout.Fd())
	if cmd.raw || !term.IsTerminal(fd) {
		_, _ = fmt.Fprint(out, md)
		return nil
	}

	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = min(w, 120)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		_, _ = fmt.Fprint(out, md)
		return nil
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		rendered = md
	}

	_, _ = fmt.Fprint(out, rendered)
	return nil
}

// ticketMarkdown builds the markdown summary of a ticket document.
func ticketMarkdown(e ticket.Entry, path string, now time.Time) string {
	t := e.Ticket
	var b strings.Builder

	line := func(format string, args ...any) {
		_, _ = fmt.Fprintf(&b, format+"\n", args...)
	}

	line("# %s", t.Name)
	line("")
	if t.Description != "" {
		line("%s", t.Description)
		line("")
	}

	line("| | |")
	line("|---|---|")
	line("| Status | %s |", e.Dir)
	line("| Type | %s |", orDash(string(t.Type)))
	line("| Branch | `%s` |", orDash(t.Branch))
	if t.CommitHash != "" {
		line("| Commit | `%s` |", t.CommitHash)
	}
	line("| Path | `%s` |", path)
	line("")

	line("## Timeline")
	line("")
	for _, ev := range []struct {
		label string
		at    *time.Time
	}{
		{"Created", t.CreatedAt},
		{"Started", t.StartedAt},
		{"Paused", t.PausedAt},
		{"Resumed", t.ResumedAt},
		{"Completed", t.CompletedAt},
	} {
		if ev.at != nil {
			line("- **%s** %s (%s)", ev.label, ev.at.UTC().Format(time.RFC3339), humanize.RelTime(*ev.at, now, "ago", "from now"))
		}
	}
	if e.Dir == ticket.StatusCompleted {
		line("- **Duration** %d min", t.DurationMinutes)
	}
	tt := t.TimeTracking
	if tt.ActiveMinutes > 0 || tt.PausedMinutes > 0 {
		line("- **Active** %d min, **paused** %d min", tt.ActiveMinutes, tt.PausedMinutes)
	}
	line("")

	if t.WIP != nil {
		line("## Work in progress")
		line("")
		line("Saved by %s `%s` on `%s` with %d file(s).", t.WIP.Method, shortRef(t.WIP.Ref), t.WIP.Branch, t.WIP.FileCount)
		line("")
	}

	if t.Spec.Goal != "" || len(t.Spec.AcceptanceCriteria) > 0 {
		line("## Goal")
		line("")
		if t.Spec.Goal != "" {
			line("%s", t.Spec.Goal)
			line("")
		}
		for _, ac := range t.Spec.AcceptanceCriteria {
			line("- %s", ac)
		}
		if len(t.Spec.AcceptanceCriteria) > 0 {
			line("")
		}
	}

	if len(t.CompletionChecklist) > 0 {
		line("## Checklist")
		line("")
		items := make([]string, 0, len(t.CompletionChecklist))
		for item := range t.CompletionChecklist {
			items = append(items, item)
		}
		slices.Sort(items)
		for _, item := range items {
			mark := " "
			if t.CompletionChecklist[item] {
				mark = "x"
			}
			line("- [%s] %s", mark, item)
		}
		line("")
	}

	if len(t.FilesChanged) > 0 {
		line("## Files changed")
		line("")
		for _, f := range t.FilesChanged {
			line("- `%s`", f)
		}
		line("")
	}

	if n := len(t.DevLog.Sessions); n > 0 {
		line("## Sessions")
		line("")
		for _, s := range t.DevLog.Sessions {
			end := "open"
			if s.EndedAt != nil {
				end = humanize.RelTime(s.StartedAt, *s.EndedAt, "", "")
				end = strings.TrimSpace(end)
			}
			line("- %s on `%s`: %s", s.StartedAt.UTC().Format(time.RFC3339), orDash(s.Branch), end)
		}
		line("")
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
