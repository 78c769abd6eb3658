package git

import "strings"

// FileChange is one entry of `git status --porcelain`.
type FileChange struct {
	Index    byte   // staged state (X column)
	Worktree byte   // unstaged state (Y column)
	Path     string // destination path for renames
}

// Staged reports whether the change is in the index.
func (f FileChange) Staged() bool {
	switch f.Index {
	case ' ', '?', '!':
		return false
	default:
		return true
	}
}

// Untracked reports whether the file is unknown to git.
func (f FileChange) Untracked() bool {
	return f.Index == '?'
}

// ParsePorcelain parses `git status --porcelain` (v1) output.
// Example lines: " M a.go", "A  b.go", "?? c.go", "R  old.go -> new.go".
func ParsePorcelain(output string) []FileChange {
	var changes []FileChange
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}

		path := line[3:]
		if _, after, ok := strings.Cut(path, " -> "); ok {
			path = after
		}
		path = strings.Trim(path, `"`)

		changes = append(changes, FileChange{
			Index:    line[0],
			Worktree: line[1],
			Path:     path,
		})
	}
	return changes
}

// Paths returns the paths of changes in order.
func Paths(changes []FileChange) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Path)
	}
	return out
}

// StagedCount returns the number of staged changes.
func StagedCount(changes []FileChange) int {
	n := 0
	for _, c := range changes {
		if c.Staged() {
			n++
		}
	}
	return n
}
