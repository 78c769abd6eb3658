// Package ticket defines the ticket document model, lifecycle states, and the
// storage contract shared by the lifecycle, integrity, and guard components.
package ticket

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a ticket. The status also names the
// directory a ticket document is stored under.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Statuses lists every lifecycle state in lookup order.
var Statuses = []Status{StatusInProgress, StatusPaused, StatusCompleted}

// IsValid reports whether s is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusPaused, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// Type classifies the work a ticket tracks.
type Type string

const (
	TypeFeature  Type = "feature"
	TypeBug      Type = "bug"
	TypeRefactor Type = "refactor"
	TypeDocs     Type = "docs"
)

// Types lists all supported ticket types.
var Types = []Type{TypeFeature, TypeBug, TypeRefactor, TypeDocs}

// IsValid reports whether t is a supported ticket type.
func (t Type) IsValid() bool {
	switch t {
	case TypeFeature, TypeBug, TypeRefactor, TypeDocs:
		return true
	default:
		return false
	}
}

// WipMethod is how uncommitted changes were preserved on pause.
type WipMethod string

const (
	WipStash  WipMethod = "stash"
	WipCommit WipMethod = "commit"
)

// WipSnapshot records preserved uncommitted work. It is owned by the ticket
// that produced it and is consumed exactly once by resume.
type WipSnapshot struct {
	Method    WipMethod `yaml:"method"`
	Ref       string    `yaml:"ref"`
	Branch    string    `yaml:"branch"`
	FileCount int       `yaml:"file_count"`
	Files     []string  `yaml:"files,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Spec is the embedded requirements section of a ticket.
type Spec struct {
	Goal               string   `yaml:"goal,omitempty"`
	AcceptanceCriteria []string `yaml:"acceptance_criteria,omitempty"`
	Notes              string   `yaml:"notes,omitempty"`
}

// DevSession is one contiguous stretch of work on a ticket.
type DevSession struct {
	StartedAt time.Time  `yaml:"started_at"`
	EndedAt   *time.Time `yaml:"ended_at"`
	Branch    string     `yaml:"branch,omitempty"`
	Notes     string     `yaml:"notes,omitempty"`
}

// DevLog holds the work sessions of a ticket, oldest first.
type DevLog struct {
	Sessions []DevSession `yaml:"sessions"`
}

// TestReport is the latest test summary recorded against a ticket.
type TestReport struct {
	Passed    int        `yaml:"passed"`
	Failed    int        `yaml:"failed"`
	Skipped   int        `yaml:"skipped"`
	UpdatedAt *time.Time `yaml:"updated_at"`
}

// AIUsage describes assistant involvement in a ticket.
type AIUsage struct {
	Tool     string `yaml:"tool,omitempty"`
	Sessions int    `yaml:"sessions"`
	Notes    string `yaml:"notes,omitempty"`
}

// TimeTracking aggregates durations in whole minutes.
type TimeTracking struct {
	TotalMinutes  int `yaml:"total_minutes"`
	ActiveMinutes int `yaml:"active_minutes"`
	PausedMinutes int `yaml:"paused_minutes"`
	AIMinutes     int `yaml:"ai_minutes"`
	HumanMinutes  int `yaml:"human_minutes"`
}

// DefaultChecklist returns the completion checklist every new ticket starts with.
func DefaultChecklist() map[string]bool {
	return map[string]bool{
		"tests_passing": false,
		"docs_updated":  false,
		"reviewed":      false,
	}
}

// Ticket is the persisted ticket document.
type Ticket struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        Type   `yaml:"type"`
	Description string `yaml:"description"`
	Status      Status `yaml:"status"`

	CreatedAt   *time.Time `yaml:"created_at"`
	StartedAt   *time.Time `yaml:"started_at"`
	PausedAt    *time.Time `yaml:"paused_at"`
	ResumedAt   *time.Time `yaml:"resumed_at"`
	CompletedAt *time.Time `yaml:"completed_at"`

	DurationMinutes int      `yaml:"duration_minutes"`
	CommitHash      string   `yaml:"commit_hash"`
	FilesChanged    []string `yaml:"files_changed"`
	Branch          string   `yaml:"branch"`

	WIP *WipSnapshot `yaml:"wip,omitempty"`

	Spec                Spec            `yaml:"spec"`
	DevLog              DevLog          `yaml:"dev_log"`
	TestReport          TestReport      `yaml:"test_report"`
	AIUsage             AIUsage         `yaml:"ai_usage"`
	TimeTracking        TimeTracking    `yaml:"time_tracking"`
	CompletionChecklist map[string]bool `yaml:"completion_checklist"`
}

// OpenSession starts a dev-log session at now on branch.
func (t *Ticket) OpenSession(now time.Time, branch string) {
	t.DevLog.Sessions = append(t.DevLog.Sessions, DevSession{StartedAt: now, Branch: branch})
}

// CloseSession ends the most recent open dev-log session, if any, and
// returns its length.
func (t *Ticket) CloseSession(now time.Time) time.Duration {
	for i := len(t.DevLog.Sessions) - 1; i >= 0; i-- {
		sess := &t.DevLog.Sessions[i]
		if sess.EndedAt == nil {
			end := now
			sess.EndedAt = &end
			return max(end.Sub(sess.StartedAt), 0)
		}
	}
	return 0
}

// MergeFiles adds paths to FilesChanged, keeping the list free of duplicates.
func (t *Ticket) MergeFiles(paths []string) {
	seen := make(map[string]bool, len(t.FilesChanged))
	for _, p := range t.FilesChanged {
		seen[p] = true
	}
	for _, p := range paths {
		if !seen[p] {
			t.FilesChanged = append(t.FilesChanged, p)
			seen[p] = true
		}
	}
}

// UncheckedItems returns checklist items that are still false, sorted.
func (t *Ticket) UncheckedItems() []string {
	var out []string
	for item, done := range t.CompletionChecklist {
		if !done {
			out = append(out, item)
		}
	}
	slices.Sort(out)
	return out
}

var nameRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidName reports whether name can be used as a ticket name. Names are
// embedded in filenames and branch names, so only lowercase slugs are allowed.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// Normalize folds a ticket name for fuzzy comparison.
// "Add_Login" -> "add-login"
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(s, "_", "-")
}

// Now returns the current time in the form stored in ticket documents.
func Now() time.Time {
	return Stamp(time.Now())
}

// Stamp normalizes t to UTC with whole-second precision.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
