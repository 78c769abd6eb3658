package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/colonyops/tkt/pkg/executil"
)

// DefaultRetryMaxElapsed bounds retries of git commands that fail because
// another git process holds the index lock.
const DefaultRetryMaxElapsed = 3 * time.Second

// Executor implements Git using the git command-line tool.
type Executor struct {
	gitPath    string
	dir        string
	exec       executil.Executor
	newBackOff func() backoff.BackOff
}

// Option configures an Executor.
type Option func(*Executor)

// WithBackOff sets the retry policy used for lock contention. The factory is
// called once per command since BackOff implementations are stateful.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(e *Executor) { e.newBackOff = fn }
}

// WithRetryMaxElapsed retries lock contention with exponential backoff for at
// most d. Zero disables retries.
func WithRetryMaxElapsed(d time.Duration) Option {
	return WithBackOff(func() backoff.BackOff {
		if d <= 0 {
			return &backoff.StopBackOff{}
		}
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 50 * time.Millisecond
		bo.MaxElapsedTime = d
		return bo
	})
}

// NewExecutor creates a git executor for the working tree at dir.
func NewExecutor(gitPath, dir string, exec executil.Executor, opts ...Option) *Executor {
	e := &Executor{gitPath: gitPath, dir: dir, exec: exec}
	WithRetryMaxElapsed(DefaultRetryMaxElapsed)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) CurrentBranch(ctx context.Context) (string, error) {
	out, err := e.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Executor) BranchExists(ctx context.Context, branch string) (bool, error) {
	_, err := e.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err == nil {
		return true, nil
	}

	var gerr *GitOperationError
	if errors.As(err, &gerr) && gerr.ExitCode == 1 {
		return false, nil
	}
	return false, err
}

func (e *Executor) Checkout(ctx context.Context, branch string) error {
	_, err := e.run(ctx, "checkout", branch)
	return err
}

func (e *Executor) CreateBranch(ctx context.Context, branch, base string) error {
	args := []string{"checkout", "-b", branch}
	if base != "" {
		args = append(args, base)
	}
	_, err := e.run(ctx, args...)
	return err
}

func (e *Executor) Pull(ctx context.Context) error {
	_, err := e.run(ctx, "pull", "--ff-only")
	return err
}

func (e *Executor) Status(ctx context.Context, exclude ...string) ([]FileChange, error) {
	args := append([]string{"status", "--porcelain"}, e.pathspec(exclude)...)
	out, err := e.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParsePorcelain(string(out)), nil
}

func (e *Executor) StashPush(ctx context.Context, message string, exclude ...string) (string, error) {
	args := append([]string{"stash", "push", "--include-untracked", "-m", message}, e.pathspec(exclude)...)
	if _, err := e.run(ctx, args...); err != nil {
		return "", err
	}

	out, err := e.run(ctx, "rev-parse", "stash@{0}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Executor) StashPop(ctx context.Context, ref string) error {
	out, err := e.run(ctx, "stash", "list", "--format=%H")
	if err != nil {
		return err
	}

	idx := -1
	for i, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if strings.TrimSpace(line) == ref {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("pop %s: %w", ref, ErrStashNotFound)
	}

	_, err = e.run(ctx, "stash", "pop", "stash@{"+strconv.Itoa(idx)+"}")
	return err
}

func (e *Executor) CommitAll(ctx context.Context, message string, exclude ...string) (string, error) {
	args := append([]string{"add", "--all"}, e.pathspec(exclude)...)
	if _, err := e.run(ctx, args...); err != nil {
		return "", err
	}
	// WIP commits must not trigger the guard's own pre-commit hook.
	if _, err := e.run(ctx, "commit", "--no-verify", "-m", message); err != nil {
		return "", err
	}
	return e.Head(ctx)
}

func (e *Executor) Head(ctx context.Context) (string, error) {
	out, err := e.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// pathspec limits a command to the working directory minus the exclude
// directories. Excludes outside the working directory are already out of
// scope and are dropped, as is one naming the working directory itself.
//
//	dir=/repo, exclude=[/repo/tickets] -> ["--", ".", ":(exclude,literal)tickets"]
func (e *Executor) pathspec(exclude []string) []string {
	base := e.dir
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}

	var specs []string
	for _, x := range exclude {
		if x == "" {
			continue
		}
		if !filepath.IsAbs(x) {
			x = filepath.Join(base, x)
		}
		rel, err := filepath.Rel(base, x)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		specs = append(specs, ":(exclude,literal)"+filepath.ToSlash(rel))
	}

	if len(specs) == 0 {
		return nil
	}
	return append([]string{"--", "."}, specs...)
}

// run executes git with args, retrying while another process holds the
// index lock.
func (e *Executor) run(ctx context.Context, args ...string) ([]byte, error) {
	var out []byte
	op := func() error {
		var err error
		out, err = e.exec.RunDir(ctx, e.dir, e.gitPath, args...)
		if err == nil {
			return nil
		}

		gerr := wrapError(args, err)
		if isLockContention(gerr) {
			return gerr
		}
		return backoff.Permanent(gerr)
	}

	if err := backoff.Retry(op, backoff.WithContext(e.newBackOff(), ctx)); err != nil {
		return out, err
	}
	return out, nil
}

func wrapError(args []string, err error) *GitOperationError {
	gerr := &GitOperationError{Args: args, ExitCode: -1, Err: err}

	var exitErr *executil.ExitError
	if errors.As(err, &exitErr) {
		gerr.ExitCode = exitErr.ExitCode
		gerr.Stderr = exitErr.Stderr
	}
	return gerr
}

func isLockContention(err *GitOperationError) bool {
	msg := strings.ToLower(err.Stderr)
	if msg == "" && err.Err != nil {
		msg = strings.ToLower(err.Err.Error())
	}
	return strings.Contains(msg, "index.lock") ||
		strings.Contains(msg, "another git process seems to be running")
}
