// Package git provides an abstraction for the git operations the ticket
// lifecycle depends on.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStashNotFound is returned when a stash recorded in a WIP snapshot is no
// longer present in the stash list.
var ErrStashNotFound = errors.New("stash not found")

// Git defines the branch and working-tree operations used by the lifecycle
// controller and the workflow guard. Implementations operate on a single
// working tree.
type Git interface {
	// CurrentBranch returns the checked out branch, or an empty string when
	// HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)
	// BranchExists reports whether a local branch exists.
	BranchExists(ctx context.Context, branch string) (bool, error)
	// Checkout switches to an existing branch.
	Checkout(ctx context.Context, branch string) error
	// CreateBranch creates branch from base and checks it out.
	CreateBranch(ctx context.Context, branch, base string) error
	// Pull fast-forwards the current branch from its upstream.
	Pull(ctx context.Context) error
	// Status returns uncommitted changes, including untracked files. Paths
	// under any exclude directory are left out.
	Status(ctx context.Context, exclude ...string) ([]FileChange, error)
	// StashPush stashes all changes including untracked files, except those
	// under exclude, and returns the stash commit hash.
	StashPush(ctx context.Context, message string, exclude ...string) (string, error)
	// StashPop applies and drops the stash whose commit hash is ref.
	StashPop(ctx context.Context, ref string) error
	// CommitAll stages every change outside exclude and commits it,
	// returning the new HEAD.
	CommitAll(ctx context.Context, message string, exclude ...string) (string, error)
	// Head returns the commit hash of HEAD.
	Head(ctx context.Context) (string, error)
}

// GitOperationError wraps a git invocation that exited non-zero.
type GitOperationError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *GitOperationError) Error() string {
	msg := fmt.Sprintf("git %s", strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *GitOperationError) Unwrap() error { return e.Err }

// TicketFromBranch returns the ticket name implied by branch under prefix.
// ok is false when the branch does not follow the convention.
//
//	TicketFromBranch("ticket/add-login", "ticket/") -> "add-login", true
func TicketFromBranch(branch, prefix string) (string, bool) {
	name, ok := strings.CutPrefix(branch, prefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
