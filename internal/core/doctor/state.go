package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// IndexCheck verifies that the active-ticket pointer names an in-progress
// ticket.
type IndexCheck struct {
	store   ticket.Store
	index   *yamlfile.Index
	autofix bool
}

// NewIndexCheck creates a new active index check. With autofix a stale
// pointer is removed.
func NewIndexCheck(store ticket.Store, index *yamlfile.Index, autofix bool) *IndexCheck {
	return &IndexCheck{store: store, index: index, autofix: autofix}
}

func (c *IndexCheck) Name() string {
	return "Active Index"
}

func (c *IndexCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	p, ok, err := c.index.Get(ctx)
	if err != nil {
		result.Items = append(result.Items, c.stale(ctx, "unreadable: "+err.Error()))
		return result
	}
	if !ok {
		result.Items = append(result.Items, CheckItem{
			Label:  "pointer",
			Status: StatusPass,
			Detail: "not set",
		})
		return result
	}

	entries, err := c.store.List(ctx, ticket.StatusInProgress)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "pointer", Status: StatusFail, Detail: err.Error()})
		return result
	}
	for _, e := range entries {
		if e.Name() == p.Ticket {
			result.Items = append(result.Items, CheckItem{
				Label:  "pointer",
				Status: StatusPass,
				Detail: p.Ticket,
			})
			return result
		}
	}

	result.Items = append(result.Items, c.stale(ctx, fmt.Sprintf("points at %q which is not in progress", p.Ticket)))
	return result
}

func (c *IndexCheck) stale(ctx context.Context, detail string) CheckItem {
	item := CheckItem{
		Label:   "pointer",
		Status:  StatusWarn,
		Detail:  detail,
		Fixable: true,
	}

	if c.autofix {
		if err := c.index.Reset(ctx); err != nil {
			item.Detail += fmt.Sprintf(" (reset failed: %v)", err)
			return item
		}
		item.Status = StatusPass
		item.Detail += " (reset)"
	}
	return item
}

// JournalCheck reports transitions that stopped partway.
type JournalCheck struct {
	journal *yamlfile.Journal
}

// NewJournalCheck creates a new journal check.
func NewJournalCheck(journal *yamlfile.Journal) *JournalCheck {
	return &JournalCheck{journal: journal}
}

func (c *JournalCheck) Name() string {
	return "Transition Journal"
}

func (c *JournalCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	pending, err := c.journal.Pending(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "journal", Status: StatusFail, Detail: err.Error()})
		return result
	}

	if len(pending) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "journal",
			Status: StatusPass,
			Detail: "no unfinished transitions",
		})
		return result
	}

	for _, p := range pending {
		last := p.LastStep()
		if last == "" {
			last = "none"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  p.ID,
			Status: StatusWarn,
			Detail: fmt.Sprintf("%s of %q started %s, last step %s; inspect the ticket, then tkt journal --clear %s",
				p.Transition, p.Ticket, p.StartedAt.Format(time.RFC3339), last, p.ID),
		})
	}

	return result
}

// TwoPhaseCheck reports completed tickets still waiting for their commit
// hash.
type TwoPhaseCheck struct {
	store ticket.Store
}

// NewTwoPhaseCheck creates a new two-phase completion check.
func NewTwoPhaseCheck(store ticket.Store) *TwoPhaseCheck {
	return &TwoPhaseCheck{store: store}
}

func (c *TwoPhaseCheck) Name() string {
	return "Commit Attachment"
}

func (c *TwoPhaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	entries, err := c.store.List(ctx, ticket.StatusCompleted)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "completed", Status: StatusFail, Detail: err.Error()})
		return result
	}

	for _, e := range entries {
		if e.Err != nil || e.Ticket.CommitHash != "" {
			continue
		}
		result.Items = append(result.Items, CheckItem{
			Label:  e.Name(),
			Status: StatusWarn,
			Detail: "completed without a commit hash; run tkt attach " + e.Name(),
		})
	}

	if len(result.Items) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "completed",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d ticket(s), all with commits", len(entries)),
		})
	}

	return result
}
