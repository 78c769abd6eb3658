package workflow

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// fakeGit is an in-memory git.Git. Stashed and committed changes are removed
// from the working tree; popping a stash restores them.
type fakeGit struct {
	branch   string
	branches map[string]bool
	changes  []git.FileChange
	stashes  []string // top of the stack first
	stashed  map[string][]git.FileChange
	commits  []string
	head     string
	fail     map[string]error
	calls    []string
	excluded []string // exclude arguments of the last snapshot call
	seq      int
}

var _ git.Git = (*fakeGit)(nil)

func newFakeGit() *fakeGit {
	return &fakeGit{
		branch:   "main",
		branches: map[string]bool{"main": true},
		stashed:  map[string][]git.FileChange{},
		fail:     map[string]error{},
		head:     "0000000",
	}
}

func (g *fakeGit) call(op string) error {
	g.calls = append(g.calls, op)
	return g.fail[op]
}

func (g *fakeGit) sha() string {
	g.seq++
	return fmt.Sprintf("%040x", g.seq)
}

func (g *fakeGit) dirty(paths ...string) {
	for _, p := range paths {
		g.changes = append(g.changes, git.FileChange{Index: ' ', Worktree: 'M', Path: p})
	}
}

func (g *fakeGit) stage(paths ...string) {
	for _, p := range paths {
		g.changes = append(g.changes, git.FileChange{Index: 'M', Worktree: ' ', Path: p})
	}
}

func (g *fakeGit) CurrentBranch(ctx context.Context) (string, error) {
	if err := g.call("CurrentBranch"); err != nil {
		return "", err
	}
	return g.branch, nil
}

func (g *fakeGit) BranchExists(ctx context.Context, branch string) (bool, error) {
	if err := g.call("BranchExists"); err != nil {
		return false, err
	}
	return g.branches[branch], nil
}

func (g *fakeGit) Checkout(ctx context.Context, branch string) error {
	if err := g.call("Checkout"); err != nil {
		return err
	}
	if !g.branches[branch] {
		return &git.GitOperationError{Args: []string{"checkout", branch}, ExitCode: 1, Stderr: "pathspec did not match"}
	}
	g.branch = branch
	return nil
}

func (g *fakeGit) CreateBranch(ctx context.Context, branch, base string) error {
	if err := g.call("CreateBranch"); err != nil {
		return err
	}
	g.branches[branch] = true
	g.branch = branch
	return nil
}

func (g *fakeGit) Pull(ctx context.Context) error {
	return g.call("Pull")
}

func (g *fakeGit) Status(ctx context.Context, exclude ...string) ([]git.FileChange, error) {
	if err := g.call("Status"); err != nil {
		return nil, err
	}
	return slices.Clone(g.changes), nil
}

func (g *fakeGit) StashPush(ctx context.Context, message string, exclude ...string) (string, error) {
	if err := g.call("StashPush"); err != nil {
		return "", err
	}
	g.excluded = exclude
	sha := g.sha()
	g.stashes = append([]string{sha}, g.stashes...)
	g.stashed[sha] = g.changes
	g.changes = nil
	return sha, nil
}

func (g *fakeGit) StashPop(ctx context.Context, ref string) error {
	if err := g.call("StashPop"); err != nil {
		return err
	}
	i := slices.Index(g.stashes, ref)
	if i < 0 {
		return git.ErrStashNotFound
	}
	g.stashes = slices.Delete(g.stashes, i, i+1)
	g.changes = append(g.changes, g.stashed[ref]...)
	delete(g.stashed, ref)
	return nil
}

func (g *fakeGit) CommitAll(ctx context.Context, message string, exclude ...string) (string, error) {
	if err := g.call("CommitAll"); err != nil {
		return "", err
	}
	g.excluded = exclude
	g.head = g.sha()
	g.commits = append(g.commits, message)
	g.changes = nil
	return g.head, nil
}

func (g *fakeGit) Head(ctx context.Context) (string, error) {
	if err := g.call("Head"); err != nil {
		return "", err
	}
	return g.head, nil
}

// fakeConfirmer answers every confirmation with a fixed reply.
type fakeConfirmer struct {
	answer bool
	err    error
	asked  []GuardResult
}

func (c *fakeConfirmer) Confirm(ctx context.Context, r GuardResult) (bool, error) {
	c.asked = append(c.asked, r)
	return c.answer, c.err
}

var epoch = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

// fixture wires the workflow against a temporary tickets tree, a fake git,
// and a controllable clock.
type fixture struct {
	ctx     context.Context
	cfg     *config.Config
	git     *fakeGit
	store   *yamlfile.Store
	index   *yamlfile.Index
	journal *yamlfile.Journal
	ctl     *Controller
	checker *Checker
	guard   *Guard
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.RepoDir = t.TempDir()

	root := cfg.TicketsRoot()
	f := &fixture{
		ctx:     context.Background(),
		cfg:     &cfg,
		git:     newFakeGit(),
		store:   yamlfile.New(root, zerolog.Nop()),
		index:   yamlfile.NewIndex(root),
		journal: yamlfile.NewJournal(root),
		clock:   epoch,
	}

	f.ctl = NewController(f.store, f.git, f.index, f.journal, f.cfg, zerolog.Nop())
	f.ctl.now = func() time.Time { return f.clock }
	f.checker = NewChecker(f.store, f.git, f.index, f.journal, f.cfg, zerolog.Nop())
	f.guard = NewGuard(f.store, f.git, f.index, f.journal, f.cfg)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}
