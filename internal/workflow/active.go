package workflow

import (
	"context"
	"slices"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// How an active ticket was identified.
const (
	SourceBranch = "branch"
	SourceIndex  = "index"
	SourceScan   = "scan"
)

// ActiveResult describes the active ticket. Name is empty when no ticket is
// in progress or when several are and nothing singles one out; in the latter
// case Ambiguous lists the candidates.
type ActiveResult struct {
	Name       string   `json:"name,omitempty"`
	Path       string   `json:"path,omitempty"`
	Source     string   `json:"source,omitempty"`
	Branch     string   `json:"branch,omitempty"`
	InProgress []string `json:"in_progress"`
	Ambiguous  []string `json:"ambiguous,omitempty"`
}

// Err converts an unresolved result into the matching typed error.
func (r ActiveResult) Err() error {
	switch {
	case r.Name != "":
		return nil
	case len(r.InProgress) == 0:
		return &ticket.NoActiveTicketError{}
	default:
		return &ticket.AmbiguousActiveTicketError{Names: r.Ambiguous}
	}
}

// activeResolver identifies the active ticket. The current branch wins, then
// the index pointer, then a lone in-progress document. Only documents under
// in_progress/ are candidates.
type activeResolver struct {
	store Store
	git   git.Git
	index *yamlfile.Index
	cfg   *config.Config
}

func (r activeResolver) resolve(ctx context.Context) (ActiveResult, error) {
	entries, err := r.store.List(ctx, ticket.StatusInProgress)
	if err != nil {
		return ActiveResult{}, err
	}

	res := ActiveResult{InProgress: []string{}}
	paths := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if _, seen := paths[name]; !seen {
			res.InProgress = append(res.InProgress, name)
		}
		paths[name] = e.Path
	}
	slices.Sort(res.InProgress)

	if len(res.InProgress) == 0 {
		return res, nil
	}

	pick := func(name, source string) (ActiveResult, error) {
		res.Name = name
		res.Path = paths[name]
		res.Source = source
		return res, nil
	}

	if branch, err := r.git.CurrentBranch(ctx); err == nil {
		res.Branch = branch
		if name, ok := git.TicketFromBranch(branch, r.cfg.BranchPrefix()); ok && slices.Contains(res.InProgress, name) {
			return pick(name, SourceBranch)
		}
	}

	if p, ok, err := r.index.Get(ctx); err == nil && ok && slices.Contains(res.InProgress, p.Ticket) {
		return pick(p.Ticket, SourceIndex)
	}

	if len(res.InProgress) == 1 {
		return pick(res.InProgress[0], SourceScan)
	}

	res.Ambiguous = res.InProgress
	return res, nil
}
