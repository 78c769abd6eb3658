package doctor

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/colonyops/tkt/internal/core/ticket"
)

// FixFunc repairs the documents of one ticket name and returns the actions
// taken.
type FixFunc func(ctx context.Context, name string) ([]string, error)

// TreeCheck scans the ticket tree for unreadable documents, duplicated
// names, status/directory mismatches, and missing required fields.
type TreeCheck struct {
	store   ticket.Store
	fix     FixFunc
	autofix bool
}

// NewTreeCheck creates a new ticket tree check. When autofix is set, fix is
// called for every name with a repairable problem before reporting.
func NewTreeCheck(store ticket.Store, fix FixFunc, autofix bool) *TreeCheck {
	return &TreeCheck{store: store, fix: fix, autofix: autofix}
}

func (c *TreeCheck) Name() string {
	return "Ticket Tree"
}

type treeIssue struct {
	item CheckItem
	name string // ticket name the issue belongs to, for autofix
}

func (c *TreeCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	issues, total, err := c.scan(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "scan",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if c.autofix && c.fix != nil {
		var names []string
		for _, is := range issues {
			if is.item.Fixable && !slices.Contains(names, is.name) {
				names = append(names, is.name)
			}
		}

		for _, name := range names {
			actions, err := c.fix(ctx, name)
			if err != nil {
				result.Items = append(result.Items, CheckItem{
					Label:  name,
					Status: StatusFail,
					Detail: fmt.Sprintf("repair failed: %v", err),
				})
				continue
			}
			result.Items = append(result.Items, CheckItem{
				Label:  name,
				Status: StatusPass,
				Detail: "repaired: " + strings.Join(actions, "; "),
			})
		}

		if len(names) > 0 {
			issues, total, err = c.scan(ctx)
			if err != nil {
				result.Items = append(result.Items, CheckItem{Label: "scan", Status: StatusFail, Detail: err.Error()})
				return result
			}
		}
	}

	for _, is := range issues {
		result.Items = append(result.Items, is.item)
	}

	if len(issues) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "documents",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d document(s) consistent", total),
		})
	}

	return result
}

func (c *TreeCheck) scan(ctx context.Context) ([]treeIssue, int, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	var issues []treeIssue
	byName := map[string][]ticket.Entry{}
	inProgress := 0

	for _, e := range entries {
		name := e.Name()
		byName[ticket.Normalize(name)] = append(byName[ticket.Normalize(name)], e)
		rel := c.rel(e.Path)

		if e.Dir == ticket.StatusInProgress {
			inProgress++
		}

		if e.Err != nil {
			issues = append(issues, treeIssue{name: name, item: CheckItem{
				Label:  rel,
				Status: StatusFail,
				Detail: fmt.Sprintf("unreadable: %v", e.Err),
			}})
			continue
		}

		if e.Ticket.Status != e.Dir {
			issues = append(issues, treeIssue{name: name, item: CheckItem{
				Label:   rel,
				Status:  StatusFail,
				Detail:  fmt.Sprintf("status %q does not match directory %q", e.Ticket.Status, e.Dir),
				Fixable: true,
			}})
		}

		if e.Ticket.Name == "" || e.Ticket.CreatedAt == nil {
			issues = append(issues, treeIssue{name: name, item: CheckItem{
				Label:   rel,
				Status:  StatusWarn,
				Detail:  "missing name or created_at",
				Fixable: true,
			}})
		}
	}

	dupNames := make([]string, 0, len(byName))
	for n, group := range byName {
		if len(group) > 1 {
			dupNames = append(dupNames, n)
		}
	}
	sort.Strings(dupNames)

	for _, n := range dupNames {
		var rels []string
		for _, e := range byName[n] {
			rels = append(rels, c.rel(e.Path))
		}
		issues = append(issues, treeIssue{name: n, item: CheckItem{
			Label:   n,
			Status:  StatusFail,
			Detail:  fmt.Sprintf("%d copies: %s", len(rels), strings.Join(rels, ", ")),
			Fixable: true,
		}})
	}

	if inProgress > 1 {
		issues = append(issues, treeIssue{item: CheckItem{
			Label:  "in_progress",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d tickets in progress; pause all but one", inProgress),
		}})
	}

	return issues, len(entries), nil
}

func (c *TreeCheck) rel(path string) string {
	if r, err := filepath.Rel(c.store.Root(), path); err == nil {
		return r
	}
	return path
}
