package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/workflow"
)

// promptConfirmer asks for guard approval with a huh confirm field that
// defaults to No.
type promptConfirmer struct {
	w io.Writer
}

func (p promptConfirmer) Confirm(ctx context.Context, r workflow.GuardResult) (bool, error) {
	_, _ = fmt.Fprintln(p.w, styles.SummaryBoxStyle.Render(guardSummary(r)))

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Proceed with %s?", r.Action)).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

func guardSummary(r workflow.GuardResult) string {
	active := "none"
	if len(r.Active) > 0 {
		active = strings.Join(r.Active, ", ")
	}

	lines := []string{
		styles.LabelStyle.Render("action") + r.Action,
		styles.LabelStyle.Render("branch") + r.Branch,
		styles.LabelStyle.Render("active") + active,
	}
	if r.Action == workflow.ActionCommit {
		lines = append(lines, styles.LabelStyle.Render("staged")+fmt.Sprintf("%d file(s)", r.StagedCount))
	}
	for _, w := range r.Warnings {
		lines = append(lines, styles.WarningStyle.Render(styles.IconWarn+" "+w))
	}
	return strings.Join(lines, "\n")
}
