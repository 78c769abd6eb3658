package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/logging"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/core/validate"
	"github.com/colonyops/tkt/internal/store/yamlfile"
	"github.com/colonyops/tkt/pkg/tmpl"
)

// Journal step names.
const (
	stepDocument = "document"
	stepBranch   = "branch"
	stepSnapshot = "snapshot"
	stepCheckout = "checkout"
	stepIndex    = "index"
)

// CreateOptions configures ticket creation.
type CreateOptions struct {
	Name        string
	Type        ticket.Type
	Description string
	Goal        string
}

// ResumeOptions configures resume.
type ResumeOptions struct {
	// PauseActive pauses any other in-progress ticket before resuming.
	PauseActive bool
}

// Result is returned by every lifecycle transition.
type Result struct {
	Ticket   ticket.Ticket
	Path     string
	Warnings []string
	Guidance []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) guide(format string, args ...any) {
	r.Guidance = append(r.Guidance, fmt.Sprintf(format, args...))
}

// PauseResult is returned by Pause.
type PauseResult struct {
	Result
	Snapshot *ticket.WipSnapshot
}

// ResumeResult is returned by Resume.
type ResumeResult struct {
	Result
	Paused    []PauseResult // tickets paused to make room
	PausedFor string        // human readable paused interval
}

// CompleteResult is returned by Complete.
type CompleteResult struct {
	Result
	Unchecked []string
}

// AttachResult is returned by AttachCommit.
type AttachResult struct {
	Result
	Previous string
}

// Controller drives ticket state transitions. Each transition validates its
// preconditions before the first side effect, records its progress in the
// journal, and leaves git effects in place when a later step fails.
type Controller struct {
	store   Store
	git     git.Git
	index   *yamlfile.Index
	journal *yamlfile.Journal
	config  *config.Config
	log     zerolog.Logger
	active  activeResolver
	now     func() time.Time
}

// NewController creates a new Controller.
func NewController(store Store, g git.Git, index *yamlfile.Index, journal *yamlfile.Journal, cfg *config.Config, log zerolog.Logger) *Controller {
	return &Controller{
		store:   store,
		git:     g,
		index:   index,
		journal: journal,
		config:  cfg,
		log:     log,
		active:  activeResolver{store: store, git: g, index: index, cfg: cfg},
		now:     ticket.Now,
	}
}

// Create writes a new in-progress ticket and puts its branch in place. Git
// failures are reported as warnings; the document stands.
func (c *Controller) Create(ctx context.Context, opts CreateOptions) (*Result, error) {
	ctx = logging.WithOperation(logging.WithTicket(ctx, opts.Name), "create")

	if err := validateCreate(opts); err != nil {
		return nil, err
	}

	locs, err := c.store.Exists(ctx, opts.Name)
	if err != nil {
		return nil, err
	}
	if locs.Count() > 0 {
		return nil, &ticket.DuplicateTicketError{Name: opts.Name, Locations: locs}
	}

	branch, err := tmpl.Render(c.config.BranchTemplate, config.BranchTemplateData{Name: opts.Name, Type: string(opts.Type)})
	if err != nil {
		return nil, fmt.Errorf("render branch name: %w", err)
	}

	res := &Result{}

	others, err := c.store.List(ctx, ticket.StatusInProgress)
	if err != nil {
		return nil, err
	}
	for _, e := range others {
		res.warn("ticket %q is already in progress", e.Name())
	}

	entry, err := c.journal.Begin(ctx, "create", opts.Name)
	if err != nil {
		return nil, err
	}

	now := c.now()
	t := ticket.Ticket{
		ID:                  newTicketID(),
		Name:                opts.Name,
		Type:                opts.Type,
		Description:         opts.Description,
		Status:              ticket.StatusInProgress,
		CreatedAt:           ticket.TimePtr(now),
		StartedAt:           ticket.TimePtr(now),
		Branch:              branch,
		Spec:                ticket.Spec{Goal: opts.Goal},
		CompletionChecklist: ticket.DefaultChecklist(),
	}
	t.OpenSession(now, branch)

	path, err := c.store.Save(ctx, t)
	if err != nil {
		return nil, err
	}
	c.step(ctx, entry, stepDocument)

	c.prepareBranch(ctx, res, branch)
	c.step(ctx, entry, stepBranch)

	if err := c.index.Set(ctx, t.Name, branch); err != nil {
		res.warn("update active index: %v", err)
	}
	c.done(ctx, entry)

	c.log.Info().Ctx(ctx).Str("path", path).Str("branch", branch).Msg("ticket created")

	res.Ticket = t
	res.Path = path
	return res, nil
}

// prepareBranch refreshes the main branch when pulling is enabled, then
// creates or checks out the ticket branch.
func (c *Controller) prepareBranch(ctx context.Context, res *Result, branch string) {
	base := c.config.MainBranch

	if c.config.ShouldPull() {
		if err := c.git.Checkout(ctx, base); err != nil {
			res.warn("checkout %s: %v", base, err)
		} else if err := c.git.Pull(ctx); err != nil {
			res.warn("pull %s: %v", base, err)
		}
	}

	exists, err := c.git.BranchExists(ctx, branch)
	switch {
	case err != nil:
		res.warn("check branch %s: %v", branch, err)
		res.guide("create the branch yourself: git checkout -b %s %s", branch, base)
	case exists:
		if err := c.git.Checkout(ctx, branch); err != nil {
			res.warn("checkout %s: %v", branch, err)
		}
	default:
		if err := c.git.CreateBranch(ctx, branch, base); err != nil {
			res.warn("create branch %s: %v", branch, err)
			res.guide("create the branch yourself: git checkout -b %s %s", branch, base)
		}
	}
}

// Pause snapshots uncommitted work and moves the ticket to paused. An empty
// name pauses the active ticket.
func (c *Controller) Pause(ctx context.Context, name string) (*PauseResult, error) {
	if name == "" {
		active, err := c.active.resolve(ctx)
		if err != nil {
			return nil, err
		}
		if err := active.Err(); err != nil {
			return nil, err
		}
		name = active.Name
	}

	ctx = logging.WithOperation(logging.WithTicket(ctx, name), "pause")

	e, err := c.load(ctx, name, "pause", ticket.StatusInProgress)
	if err != nil {
		return nil, err
	}

	entry, err := c.journal.Begin(ctx, "pause", name)
	if err != nil {
		return nil, err
	}

	branch, err := c.git.CurrentBranch(ctx)
	if err != nil {
		c.done(ctx, entry)
		return nil, fmt.Errorf("pause %q: %w", name, err)
	}

	changes, err := c.git.Status(ctx, c.config.TicketsRoot())
	if err != nil {
		c.done(ctx, entry)
		return nil, fmt.Errorf("pause %q: %w", name, err)
	}

	res := &PauseResult{}
	t := e.Ticket
	now := c.now()

	snap, err := c.snapshot(ctx, t, branch, changes, now)
	if err != nil {
		// A failed stash push or WIP commit may have partly applied, so the
		// journal entry stays pending for doctor and verify to surface.
		return nil, fmt.Errorf("pause %q: %w", name, err)
	}
	c.step(ctx, entry, stepSnapshot)

	t.Status = ticket.StatusPaused
	t.PausedAt = ticket.TimePtr(now)
	t.WIP = snap
	t.MergeFiles(git.Paths(changes))
	if t.Branch == "" {
		t.Branch = branch
	}
	t.TimeTracking.ActiveMinutes += minutes(t.CloseSession(now))

	path, err := c.store.Move(ctx, e.Path, t)
	if err != nil {
		return nil, err
	}
	c.step(ctx, entry, stepDocument)

	if err := c.index.Clear(ctx, name); err != nil {
		res.warn("update active index: %v", err)
	}
	c.done(ctx, entry)

	switch {
	case snap == nil:
		res.guide("working tree was clean; nothing to restore on resume")
	case snap.Method == ticket.WipStash:
		res.guide("%d changed file(s) stashed as %s", snap.FileCount, short(snap.Ref))
	default:
		res.guide("%d changed file(s) saved in WIP commit %s on %s", snap.FileCount, short(snap.Ref), snap.Branch)
	}

	c.log.Info().Ctx(ctx).Str("path", path).Int("files", len(changes)).Msg("ticket paused")

	res.Ticket = t
	res.Path = path
	res.Snapshot = snap
	return res, nil
}

// snapshot preserves changes with git stash when there are at most
// stash_threshold of them and with a WIP commit otherwise. The tickets tree
// is never part of a snapshot.
func (c *Controller) snapshot(ctx context.Context, t ticket.Ticket, branch string, changes []git.FileChange, now time.Time) (*ticket.WipSnapshot, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	files := git.Paths(changes)
	msg, err := tmpl.Render(c.config.Lifecycle.WipMessageTemplate, config.WipTemplateData{
		Name:      t.Name,
		Branch:    branch,
		FileCount: len(files),
		Files:     files,
	})
	if err != nil {
		return nil, fmt.Errorf("render wip message: %w", err)
	}

	snap := &ticket.WipSnapshot{
		Branch:    branch,
		FileCount: len(files),
		Files:     files,
		CreatedAt: now,
	}

	if len(changes) <= c.config.StashLimit() {
		snap.Method = ticket.WipStash
		snap.Ref, err = c.git.StashPush(ctx, msg, c.config.TicketsRoot())
	} else {
		snap.Method = ticket.WipCommit
		snap.Ref, err = c.git.CommitAll(ctx, msg, c.config.TicketsRoot())
	}
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// Resume restores a paused ticket: its branch is checked out, its snapshot
// replayed, and the document moved back to in_progress.
func (c *Controller) Resume(ctx context.Context, name string, opts ResumeOptions) (*ResumeResult, error) {
	ctx = logging.WithOperation(logging.WithTicket(ctx, name), "resume")

	e, err := c.load(ctx, name, "resume", ticket.StatusPaused)
	if err != nil {
		return nil, err
	}

	res := &ResumeResult{}

	others, err := c.store.List(ctx, ticket.StatusInProgress)
	if err != nil {
		return nil, err
	}
	if len(others) > 0 {
		var blockers []string
		for _, o := range others {
			if n := o.Name(); !slices.Contains(blockers, n) {
				blockers = append(blockers, n)
			}
		}

		if !opts.PauseActive && !c.config.Lifecycle.CascadePause {
			return nil, &ticket.InvalidStateError{
				Name:   name,
				Op:     "resume",
				Status: ticket.StatusPaused,
				Reason: fmt.Sprintf("ticket %s is in progress; pause it first or pass --pause-active", quoteAll(blockers)),
			}
		}

		for _, other := range blockers {
			pr, err := c.Pause(ctx, other)
			if err != nil {
				return nil, fmt.Errorf("pause %q before resuming %q: %w", other, name, err)
			}
			res.Paused = append(res.Paused, *pr)
			res.warn("paused %q to resume %q", other, name)
		}
	}

	entry, err := c.journal.Begin(ctx, "resume", name)
	if err != nil {
		return nil, err
	}

	t := e.Ticket
	branch := t.Branch
	if branch == "" {
		branch, err = tmpl.Render(c.config.BranchTemplate, config.BranchTemplateData{Name: t.Name, Type: string(t.Type)})
		if err != nil {
			c.done(ctx, entry)
			return nil, fmt.Errorf("render branch name: %w", err)
		}
	}
	if t.WIP != nil && t.WIP.Branch != "" {
		branch = t.WIP.Branch
	}

	if err := c.git.Checkout(ctx, branch); err != nil {
		c.done(ctx, entry)
		return nil, fmt.Errorf("resume %q: %w", name, err)
	}
	c.step(ctx, entry, stepCheckout)

	if snap := t.WIP; snap != nil {
		switch snap.Method {
		case ticket.WipStash:
			err := c.git.StashPop(ctx, snap.Ref)
			switch {
			case errors.Is(err, git.ErrStashNotFound):
				res.warn("stash %s is no longer present; %d file(s) were not restored", short(snap.Ref), snap.FileCount)
			case err != nil:
				return nil, fmt.Errorf("resume %q: restore stash %s: %w", name, short(snap.Ref), err)
			}
		case ticket.WipCommit:
			res.guide("work in progress is in commit %s; amend or squash it before completing (git commit --amend)", short(snap.Ref))
		}
	}
	c.step(ctx, entry, stepSnapshot)

	now := c.now()
	if t.PausedAt != nil {
		paused := max(now.Sub(*t.PausedAt), 0)
		t.TimeTracking.PausedMinutes += minutes(paused)
		res.PausedFor = strings.TrimSpace(humanize.RelTime(*t.PausedAt, now, "", ""))
	}

	t.Status = ticket.StatusInProgress
	t.ResumedAt = ticket.TimePtr(now)
	t.WIP = nil
	t.Branch = branch
	t.OpenSession(now, branch)

	path, err := c.store.Move(ctx, e.Path, t)
	if err != nil {
		return nil, err
	}
	c.step(ctx, entry, stepDocument)

	if err := c.index.Set(ctx, name, branch); err != nil {
		res.warn("update active index: %v", err)
	}
	c.done(ctx, entry)

	c.log.Info().Ctx(ctx).Str("path", path).Str("paused_for", res.PausedFor).Msg("ticket resumed")

	res.Ticket = t
	res.Path = path
	return res, nil
}

// Complete closes an in-progress ticket. commitHash may be empty and attached
// later with AttachCommit. An empty name completes the active ticket.
func (c *Controller) Complete(ctx context.Context, name, commitHash string) (*CompleteResult, error) {
	if name == "" {
		active, err := c.active.resolve(ctx)
		if err != nil {
			return nil, err
		}
		if err := active.Err(); err != nil {
			return nil, err
		}
		name = active.Name
	}

	ctx = logging.WithOperation(logging.WithTicket(ctx, name), "complete")

	e, err := c.load(ctx, name, "complete", ticket.StatusInProgress)
	if err != nil {
		return nil, err
	}

	entry, err := c.journal.Begin(ctx, "complete", name)
	if err != nil {
		return nil, err
	}

	res := &CompleteResult{}
	t := e.Ticket
	now := c.now()

	start := t.StartedAt
	if start == nil {
		start = t.CreatedAt
	}

	duration := 0
	if start != nil {
		duration = int(math.Floor(now.Sub(*start).Minutes()))
		if duration < 0 {
			res.warn("completion time %s is before start time %s; duration clamped to 0",
				now.Format(time.RFC3339), start.Format(time.RFC3339))
			duration = 0
		}
	} else {
		res.warn("ticket has no start time; duration recorded as 0")
	}

	t.Status = ticket.StatusCompleted
	t.CompletedAt = ticket.TimePtr(now)
	t.DurationMinutes = duration
	t.CommitHash = commitHash
	t.TimeTracking.ActiveMinutes += minutes(t.CloseSession(now))
	t.TimeTracking.TotalMinutes = duration
	if t.TimeTracking.AIMinutes <= duration {
		t.TimeTracking.HumanMinutes = duration - t.TimeTracking.AIMinutes
	}

	res.Unchecked = t.UncheckedItems()
	if len(res.Unchecked) > 0 {
		res.warn("completion checklist items not done: %s", strings.Join(res.Unchecked, ", "))
	}

	path, err := c.store.Move(ctx, e.Path, t)
	if err != nil {
		return nil, err
	}
	c.step(ctx, entry, stepDocument)

	if err := c.index.Clear(ctx, name); err != nil {
		res.warn("update active index: %v", err)
	}
	c.done(ctx, entry)

	if commitHash == "" {
		res.guide("attach the final commit once it exists: tkt attach %s", name)
	}

	c.log.Info().Ctx(ctx).Str("path", path).Int("duration_minutes", duration).Msg("ticket completed")

	res.Ticket = t
	res.Path = path
	return res, nil
}

// AttachCommit records the commit hash of a completed ticket. An empty hash
// uses the current HEAD.
func (c *Controller) AttachCommit(ctx context.Context, name, hash string) (*AttachResult, error) {
	ctx = logging.WithOperation(logging.WithTicket(ctx, name), "attach")

	e, err := c.load(ctx, name, "attach a commit to", ticket.StatusCompleted)
	if err != nil {
		return nil, err
	}

	if hash == "" {
		hash, err = c.git.Head(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve HEAD: %w", err)
		}
	}

	res := &AttachResult{Previous: e.Ticket.CommitHash}
	if res.Previous != "" && res.Previous != hash {
		res.warn("replacing commit %s with %s", short(res.Previous), short(hash))
	}

	t := e.Ticket
	t.CommitHash = hash
	if err := c.store.Update(ctx, e.Path, t); err != nil {
		return nil, err
	}

	c.log.Info().Ctx(ctx).Str("commit", hash).Msg("commit attached")

	res.Ticket = t
	res.Path = e.Path
	return res, nil
}

// load resolves name to a single decoded document in the wanted state.
func (c *Controller) load(ctx context.Context, name, op string, want ticket.Status) (ticket.Entry, error) {
	e, err := c.store.Find(ctx, name)
	if err != nil {
		return ticket.Entry{}, err
	}
	if e.Err != nil {
		return ticket.Entry{}, e.Err
	}

	if e.Ticket.Status != e.Dir {
		return ticket.Entry{}, &ticket.InvalidStateError{
			Name:   name,
			Op:     op,
			Status: e.Dir,
			Want:   want,
			Reason: fmt.Sprintf("document status %q disagrees with directory %q; run tkt fix %s", e.Ticket.Status, e.Dir, name),
		}
	}
	if e.Dir != want {
		return ticket.Entry{}, &ticket.InvalidStateError{Name: name, Op: op, Status: e.Dir, Want: want}
	}

	return e, nil
}

func (c *Controller) step(ctx context.Context, entry *yamlfile.JournalEntry, name string) {
	if err := entry.Step(name); err != nil {
		c.log.Warn().Ctx(ctx).Err(err).Str("step", name).Msg("journal step not recorded")
	}
}

func (c *Controller) done(ctx context.Context, entry *yamlfile.JournalEntry) {
	if err := entry.Done(); err != nil {
		c.log.Warn().Ctx(ctx).Err(err).Str("entry", entry.ID).Msg("journal entry not cleared")
	}
}

func validateCreate(opts CreateOptions) error {
	return criterio.ValidateStruct(
		validate.TicketNameField("name", opts.Name),
		validate.TicketTypeField("type", string(opts.Type)),
	)
}

// newTicketID returns a time-ordered UUID, falling back to a random one.
func newTicketID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func minutes(d time.Duration) int {
	return int(math.Floor(d.Minutes()))
}

func short(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, ", ")
}
