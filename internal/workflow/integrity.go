package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/logging"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// IntegrityResult is the outcome of verifying one ticket name. It is never
// persisted.
type IntegrityResult struct {
	Name        string           `json:"name"`
	Valid       bool             `json:"valid"`
	Errors      []string         `json:"errors"`
	Warnings    []string         `json:"warnings"`
	Suggestions []string         `json:"suggestions"`
	Locations   ticket.Locations `json:"locations"`
	Status      ticket.Status    `json:"status,omitempty"`
	CommitHash  string           `json:"commit_hash,omitempty"`
}

func (r *IntegrityResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *IntegrityResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *IntegrityResult) suggest(s string) {
	if !slices.Contains(r.Suggestions, s) {
		r.Suggestions = append(r.Suggestions, s)
	}
}

// FixReport lists the repairs made for a ticket and the state afterwards.
type FixReport struct {
	Name    string          `json:"name"`
	Actions []string        `json:"actions"`
	Result  IntegrityResult `json:"result"`
}

func (r *FixReport) act(format string, args ...any) {
	r.Actions = append(r.Actions, fmt.Sprintf(format, args...))
}

// Checker verifies and repairs ticket documents.
type Checker struct {
	store   Store
	journal *yamlfile.Journal
	config  *config.Config
	log     zerolog.Logger
	active  activeResolver
}

// NewChecker creates a new Checker.
func NewChecker(store Store, g git.Git, index *yamlfile.Index, journal *yamlfile.Journal, cfg *config.Config, log zerolog.Logger) *Checker {
	return &Checker{
		store:   store,
		journal: journal,
		config:  cfg,
		log:     log,
		active:  activeResolver{store: store, git: g, index: index, cfg: cfg},
	}
}

// Verify checks that name resolves to exactly one well-formed document whose
// status matches its directory. Problems are accumulated in the result; the
// error is reserved for failures to read the tree.
func (c *Checker) Verify(ctx context.Context, name string) (IntegrityResult, error) {
	res := IntegrityResult{
		Name:        name,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	locs, err := c.store.Exists(ctx, name)
	if err != nil {
		return res, err
	}
	res.Locations = locs

	if locs.Count() == 0 {
		res.fail("ticket %q not found", name)
		res.suggest(fmt.Sprintf("tkt create %s <type>", name))
		if similar := c.store.Suggest(ctx, name); len(similar) > 0 {
			res.suggest("did you mean: " + strings.Join(similar, ", "))
		}
		return res, nil
	}

	paths := locs.Paths()
	if len(paths) > 1 {
		res.fail("ticket %q exists in %d locations: %s", name, len(paths), strings.Join(c.relAll(paths), ", "))
		res.suggest("tkt fix " + name)
	}

	for _, path := range paths {
		c.verifyDocument(ctx, &res, path, len(paths) > 1)
	}

	pending, err := c.journal.PendingFor(ctx, name)
	if err != nil {
		res.warn("read journal: %v", err)
	}
	for _, p := range pending {
		res.warn("unfinished %s started %s (last step: %s)", p.Transition, p.StartedAt.Format(time.RFC3339), orNone(p.LastStep()))
		res.suggest("tkt journal")
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}

func (c *Checker) verifyDocument(ctx context.Context, res *IntegrityResult, path string, prefixed bool) {
	label := ""
	if prefixed {
		label = c.rel(path) + ": "
	}

	dir, err := ticket.StatusFromPath(c.rel(path))
	if err != nil {
		res.fail("%s%v", label, err)
		return
	}
	if res.Status == "" {
		res.Status = dir
	}

	t, err := c.store.Load(ctx, path)
	if err != nil {
		res.fail("%s%v", label, err)
		res.suggest(fmt.Sprintf("repair or remove %s", c.rel(path)))
		return
	}

	if t.Status != "" && t.Status != dir {
		res.fail("%sdocument status %q does not match directory %q", label, t.Status, dir)
		res.suggest("tkt fix " + res.Name)
	}

	for _, missing := range missingFields(path, t) {
		res.fail("%s%v", label, missing)
		res.suggest("tkt fix " + res.Name)
	}

	if res.CommitHash == "" {
		res.CommitHash = t.CommitHash
	}

	if dir == ticket.StatusCompleted {
		if t.CompletedAt != nil && t.CreatedAt != nil && t.CompletedAt.Before(*t.CreatedAt) {
			res.warn("%scompleted_at %s is before created_at %s", label,
				t.CompletedAt.Format(time.RFC3339), t.CreatedAt.Format(time.RFC3339))
		}
		if t.CommitHash == "" {
			res.warn("%scompleted without a commit hash", label)
			res.suggest("tkt attach " + res.Name)
		}
	}

	if dir == ticket.StatusInProgress && t.WIP != nil {
		res.warn("%sin-progress ticket still carries a %s snapshot %s", label, t.WIP.Method, short(t.WIP.Ref))
	}
}

func missingFields(path string, t ticket.Ticket) []error {
	var out []error
	if t.Name == "" {
		out = append(out, &ticket.MissingFieldError{Path: path, Field: "name"})
	}
	if t.Status == "" {
		out = append(out, &ticket.MissingFieldError{Path: path, Field: "status"})
	}
	if t.CreatedAt == nil {
		out = append(out, &ticket.MissingFieldError{Path: path, Field: "created_at"})
	}
	return out
}

// FixCommonIssues resolves duplicates, backfills missing or inconsistent
// fields from the storage location, and re-verifies.
//
// Duplicates keep the most recently modified document. The others are
// deleted or quarantined according to integrity.duplicate_policy.
func (c *Checker) FixCommonIssues(ctx context.Context, name string) (FixReport, error) {
	ctx = logging.WithOperation(logging.WithTicket(ctx, name), "fix")
	report := FixReport{Name: name, Actions: []string{}}

	locs, err := c.store.Exists(ctx, name)
	if err != nil {
		return report, err
	}
	if locs.Count() == 0 {
		return report, &ticket.NotFoundError{Name: name, Suggestions: c.store.Suggest(ctx, name)}
	}

	keep := locs.Paths()[0]
	if locs.Count() > 1 {
		keep, err = c.resolveDuplicates(ctx, &report, locs)
		if err != nil {
			return report, err
		}
	}

	if err := c.backfill(ctx, &report, keep); err != nil {
		return report, err
	}

	report.Result, err = c.Verify(ctx, name)
	if err != nil {
		return report, err
	}

	c.log.Info().Ctx(ctx).Int("actions", len(report.Actions)).Bool("valid", report.Result.Valid).Msg("integrity repair finished")
	return report, nil
}

type candidate struct {
	path    string
	status  ticket.Status
	modTime time.Time
}

func (c *Checker) resolveDuplicates(ctx context.Context, report *FixReport, locs ticket.Locations) (string, error) {
	var cands []candidate
	for _, status := range ticket.Statuses {
		for _, path := range locs[status] {
			info, err := os.Stat(path)
			if err != nil {
				return "", err
			}
			cands = append(cands, candidate{path: path, status: status, modTime: info.ModTime()})
		}
	}

	// newest first; ties go to the earlier lifecycle state
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].modTime.After(cands[j].modTime)
	})

	keep := cands[0]
	report.act("kept %s (newest)", c.rel(keep.path))

	for _, loser := range cands[1:] {
		switch c.config.Integrity.DuplicatePolicy {
		case config.PolicyQuarantine:
			dest, err := c.store.Quarantine(ctx, loser.path, "duplicate of "+c.rel(keep.path))
			if err != nil {
				return "", err
			}
			report.act("quarantined %s to %s", c.rel(loser.path), c.rel(dest))
		default:
			if err := c.store.Delete(ctx, loser.path); err != nil {
				return "", err
			}
			report.act("deleted duplicate %s", c.rel(loser.path))
		}
	}

	return keep.path, nil
}

// backfill repairs the fields of the document at path that can be recovered
// from its location: status from the directory, name and created_at from the
// filename, created_at from the file's modification time as a last resort.
func (c *Checker) backfill(ctx context.Context, report *FixReport, path string) error {
	t, err := c.store.Load(ctx, path)
	if err != nil {
		report.act("cannot repair %s: %v", c.rel(path), err)
		return nil
	}

	dir, err := ticket.StatusFromPath(c.rel(path))
	if err != nil {
		return err
	}

	changed := false

	if t.Status != dir {
		if t.Status == "" {
			report.act("set status to %s from directory", dir)
		} else {
			report.act("changed status %s to %s to match directory", t.Status, dir)
		}
		t.Status = dir
		changed = true
	}

	parsed, canonical := ticket.ParseFilename(path)

	if t.Name == "" {
		if canonical {
			t.Name = parsed.Name
		} else {
			base := filepath.Base(path)
			t.Name = ticket.Normalize(strings.TrimSuffix(base, filepath.Ext(base)))
		}
		report.act("set name to %q from filename", t.Name)
		changed = true
	}

	if t.CreatedAt == nil {
		if canonical {
			t.CreatedAt = ticket.TimePtr(parsed.CreatedAt)
			report.act("set created_at from filename")
		} else {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			t.CreatedAt = ticket.TimePtr(ticket.Stamp(info.ModTime()))
			report.act("set created_at from file modification time")
		}
		changed = true
	}

	if !changed {
		return nil
	}

	return c.store.Update(ctx, path, t)
}

// ActiveTicket identifies the ticket currently being worked on.
func (c *Checker) ActiveTicket(ctx context.Context) (ActiveResult, error) {
	return c.active.resolve(ctx)
}

func (c *Checker) rel(path string) string {
	if r, err := filepath.Rel(c.store.Root(), path); err == nil {
		return r
	}
	return path
}

func (c *Checker) relAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.rel(p)
	}
	return out
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
