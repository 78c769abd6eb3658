package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// Guarded actions.
const (
	ActionCommit = "commit"
	ActionStart  = "start"
)

// ErrConfirmationRequired is returned when the guard needs a confirmation
// but cannot prompt and was not forced.
var ErrConfirmationRequired = errors.New("confirmation required: run interactively or pass --force")

// GuardResult is the read-only assessment of whether an action may proceed.
type GuardResult struct {
	Action        string   `json:"action"`
	Branch        string   `json:"branch"`
	ImpliedTicket string   `json:"implied_ticket,omitempty"`
	Active        []string `json:"active"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	StagedCount   int      `json:"staged_count"`
}

// Passed reports whether no blocking problem was found.
func (r GuardResult) Passed() bool { return len(r.Errors) == 0 }

func (r *GuardResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *GuardResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// BlockedError is returned by Authorize when the guard found blocking
// problems.
type BlockedError struct {
	Result GuardResult
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s blocked: %s", e.Result.Action, strings.Join(e.Result.Errors, "; "))
}

// Confirmer asks the user to approve an action that passed the guard.
type Confirmer interface {
	Confirm(ctx context.Context, result GuardResult) (bool, error)
}

// AuthorizeOptions controls how Authorize obtains approval.
type AuthorizeOptions struct {
	Interactive bool // a terminal is available for prompting
	Force       bool // skip confirmation; never bypasses blocking errors
}

// Guard checks that the working state is fit for a commit or for starting
// work. It never modifies tickets or git state.
type Guard struct {
	store     Store
	git       git.Git
	index     *yamlfile.Index
	journal   *yamlfile.Journal
	config    *config.Config
	confirmer Confirmer
}

// NewGuard creates a new Guard. A Confirmer must be set with SetConfirmer
// before interactive authorization.
func NewGuard(store Store, g git.Git, index *yamlfile.Index, journal *yamlfile.Journal, cfg *config.Config) *Guard {
	return &Guard{store: store, git: g, index: index, journal: journal, config: cfg}
}

// SetConfirmer sets the prompt used by Authorize.
func (g *Guard) SetConfirmer(c Confirmer) { g.confirmer = c }

// Check evaluates the working state for action.
func (g *Guard) Check(ctx context.Context, action string) (GuardResult, error) {
	if action != ActionCommit && action != ActionStart {
		return GuardResult{}, fmt.Errorf("unknown guard action %q (want %s or %s)", action, ActionCommit, ActionStart)
	}

	res := GuardResult{
		Action:   action,
		Active:   []string{},
		Errors:   []string{},
		Warnings: []string{},
	}

	entries, err := g.store.List(ctx, ticket.StatusInProgress)
	if err != nil {
		return res, err
	}
	for _, e := range entries {
		if n := e.Name(); !slices.Contains(res.Active, n) {
			res.Active = append(res.Active, n)
		}
	}
	slices.Sort(res.Active)

	branch, err := g.git.CurrentBranch(ctx)
	res.Branch = branch
	prefix := g.config.BranchPrefix()

	switch {
	case err != nil:
		res.fail("cannot determine current branch: %v", err)
	case branch == "":
		res.fail("HEAD is detached; check out a ticket branch")
	case branch == g.config.MainBranch:
		res.fail("on %s; create or resume a ticket to get a %s<name> branch", branch, prefix)
	default:
		name, ok := git.TicketFromBranch(branch, prefix)
		if !ok {
			res.fail("branch %q is not a ticket branch (%s<name>)", branch, prefix)
		} else {
			res.ImpliedTicket = name
		}
	}

	switch {
	case len(res.Active) == 0:
		res.fail("no ticket is in progress")
	case res.ImpliedTicket != "" && !slices.Contains(res.Active, res.ImpliedTicket):
		res.fail("ticket %q for branch %s is not in progress", res.ImpliedTicket, branch)
	}

	if len(res.Active) > 1 {
		res.warn("%d tickets are in progress: %s", len(res.Active), strings.Join(res.Active, ", "))
	}

	if action == ActionCommit && err == nil {
		changes, serr := g.git.Status(ctx)
		if serr != nil {
			res.warn("cannot read working tree status: %v", serr)
		} else {
			res.StagedCount = git.StagedCount(changes)
			if res.StagedCount == 0 {
				res.warn("no staged changes")
			}
		}
	}

	pending, perr := g.journal.Pending(ctx)
	if perr != nil {
		res.warn("read journal: %v", perr)
	}
	for _, p := range pending {
		res.warn("unfinished %s of %q started %s; see tkt journal", p.Transition, p.Ticket, p.StartedAt.Format(time.RFC3339))
	}

	if p, ok, ierr := g.index.Get(ctx); ierr == nil && ok && res.ImpliedTicket != "" && p.Ticket != res.ImpliedTicket {
		res.warn("active index points at %q but branch implies %q", p.Ticket, res.ImpliedTicket)
	}

	return res, nil
}

// Authorize turns a check result into a decision. Blocking errors always
// fail. Otherwise Force approves, an interactive session asks the Confirmer,
// and a non-interactive session fails closed.
func (g *Guard) Authorize(ctx context.Context, result GuardResult, opts AuthorizeOptions) error {
	if !result.Passed() {
		return &BlockedError{Result: result}
	}

	if opts.Force {
		return nil
	}

	if !opts.Interactive || g.confirmer == nil {
		return ErrConfirmationRequired
	}

	ok, err := g.confirmer.Confirm(ctx, result)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", result.Action, err)
	}
	if !ok {
		return ticket.ErrDeclined
	}
	return nil
}
