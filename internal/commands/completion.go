package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/workflow"
)

// TicketNameCompleter returns a ShellCompleteFunc that suggests ticket names
// with one of the given statuses (all when none) as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TicketNameCompleter(app *workflow.App, statuses ...ticket.Status) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		entries, err := app.Store.List(ctx, statuses...)
		if err != nil {
			return
		}

		var names []string
		for _, e := range entries {
			if n := e.Name(); !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
		slices.Sort(names)

		w := cmd.Root().Writer
		for _, n := range names {
			_, _ = fmt.Fprintln(w, n)
		}
	}
}
