package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/ticket"
)

// writeDoc places a raw document in the tree, relative to the tickets root.
func (f *fixture) writeDoc(t *testing.T, rel, body string) string {
	t.Helper()
	path := filepath.Join(f.store.Root(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// duplicate writes a paused copy of an in-progress ticket and makes the copy
// the most recently modified.
func (f *fixture) duplicate(t *testing.T, name string) (older, newer string) {
	t.Helper()
	res := f.create(t, name)

	dup := res.Ticket
	dup.Status = ticket.StatusPaused
	newer, err := f.store.Save(f.ctx, dup)
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(res.Path, old, old))
	return res.Path, newer
}

func TestChecker_Verify_Valid(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a")

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, ticket.StatusInProgress, res.Status)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Locations.Count())
}

func TestChecker_Verify_NotFound(t *testing.T) {
	f := newFixture(t)
	f.create(t, "add-login")

	res, err := f.checker.Verify(f.ctx, "login")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{`ticket "login" not found`}, res.Errors)
	assert.Contains(t, res.Suggestions, "tkt create login <type>")
	assert.Contains(t, res.Suggestions, "did you mean: add-login")
}

func TestChecker_Verify_Duplicates(t *testing.T) {
	f := newFixture(t)
	older, newer := f.duplicate(t, "a")

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)

	assert.False(t, res.Valid)
	assert.ElementsMatch(t, []string{older, newer}, res.Locations.Paths())
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "exists in 2 locations")
	assert.Contains(t, res.Suggestions, "tkt fix a")
}

func TestChecker_Verify_StatusMismatch(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "paused/2026-10-18-09-00-00-ticket-a.yaml",
		"name: a\nstatus: in_progress\ncreated_at: 2026-10-18T09:00:00Z\n")

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{`document status "in_progress" does not match directory "paused"`}, res.Errors)
	assert.Equal(t, []string{"tkt fix a"}, res.Suggestions)
}

func TestChecker_Verify_Unparseable(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "in_progress/2026-10-18-09-00-00-ticket-a.yaml", "name: [unclosed\n")

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "parse")
}

func TestChecker_Verify_CompletedWarnings(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "completed/2026-10-17/2026-10-18-09-00-00-ticket-a.yaml",
		"name: a\nstatus: completed\ncreated_at: 2026-10-18T09:00:00Z\ncompleted_at: 2026-10-17T09:00:00Z\n")

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "is before created_at")
	assert.Contains(t, res.Warnings[1], "without a commit hash")
	assert.Contains(t, res.Suggestions, "tkt attach a")
}

func TestChecker_Verify_PendingJournal(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a")

	entry, err := f.journal.Begin(f.ctx, "pause", "a")
	require.NoError(t, err)
	require.NoError(t, entry.Step(stepSnapshot))

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Valid, "journal entries warn only")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "unfinished pause")
	assert.Contains(t, res.Warnings[0], "last step: snapshot")
	assert.Contains(t, res.Suggestions, "tkt journal")
}

func TestChecker_Fix_Duplicates(t *testing.T) {
	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		older, newer := f.duplicate(t, "a")

		report, err := f.checker.FixCommonIssues(f.ctx, "a")
		require.NoError(t, err)

		assert.True(t, report.Result.Valid, "errors: %v", report.Result.Errors)
		assert.Equal(t, []string{newer}, report.Result.Locations.Paths())
		assert.NoFileExists(t, older)
		assert.Len(t, report.Actions, 2)
		assert.Contains(t, report.Actions[0], "kept paused/")
		assert.Contains(t, report.Actions[1], "deleted duplicate in_progress/")
	})

	t.Run("quarantine", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Integrity.DuplicatePolicy = config.PolicyQuarantine
		older, newer := f.duplicate(t, "a")

		report, err := f.checker.FixCommonIssues(f.ctx, "a")
		require.NoError(t, err)

		assert.True(t, report.Result.Valid)
		assert.Equal(t, []string{newer}, report.Result.Locations.Paths())
		assert.NoFileExists(t, older)

		moved, err := os.ReadDir(f.store.ConflictsDir())
		require.NoError(t, err)
		var names []string
		for _, m := range moved {
			names = append(names, m.Name())
		}
		assert.Contains(t, names, "conflicts.log")
		assert.Len(t, names, 2)
	})
}

func TestChecker_Fix_StatusMismatch(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "paused/2026-10-18-09-00-00-ticket-a.yaml",
		"name: a\nstatus: in_progress\ncreated_at: 2026-10-18T09:00:00Z\n")

	report, err := f.checker.FixCommonIssues(f.ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"changed status in_progress to paused to match directory"}, report.Actions)
	assert.True(t, report.Result.Valid)

	got, err := f.store.Load(f.ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusPaused, got.Status)
}

func TestChecker_Fix_BackfillsFromFilename(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "in_progress/2026-10-18-09-00-00-ticket-a.yaml", "type: bug\n")

	report, err := f.checker.FixCommonIssues(f.ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"set status to in_progress from directory",
		`set name to "a" from filename`,
		"set created_at from filename",
	}, report.Actions)
	assert.True(t, report.Result.Valid, "errors: %v", report.Result.Errors)

	got, err := f.store.Load(f.ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, ticket.TypeBug, got.Type)
	require.NotNil(t, got.CreatedAt)
	assert.True(t, epoch.Equal(*got.CreatedAt))
}

func TestChecker_Fix_BackfillsFromModTime(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "in_progress/notes-cleanup.yaml", "type: docs\n")
	mtime := time.Date(2026, 10, 1, 12, 30, 15, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	report, err := f.checker.FixCommonIssues(f.ctx, "notes-cleanup")
	require.NoError(t, err)

	assert.Contains(t, report.Actions, "set created_at from file modification time")
	assert.True(t, report.Result.Valid, "errors: %v", report.Result.Errors)

	got, err := f.store.Load(f.ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "notes-cleanup", got.Name)
	require.NotNil(t, got.CreatedAt)
	assert.True(t, mtime.Equal(*got.CreatedAt))
}

func TestChecker_Fix_NothingToDo(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a")

	report, err := f.checker.FixCommonIssues(f.ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, report.Actions)
	assert.True(t, report.Result.Valid)
}

func TestChecker_NameEmbeddingMarkerIsNotADuplicate(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a")
	f.create(t, "b-ticket-a")

	res, err := f.checker.Verify(f.ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Equal(t, 1, res.Locations.Count())

	report, err := f.checker.FixCommonIssues(f.ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, report.Actions)

	f.find(t, "a")
	f.find(t, "b-ticket-a")
}

func TestChecker_Fix_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.checker.FixCommonIssues(f.ctx, "ghost")

	var nf *ticket.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestChecker_ActiveTicket(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		f := newFixture(t)

		res, err := f.checker.ActiveTicket(f.ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Name)
		assert.Empty(t, res.InProgress)

		var none *ticket.NoActiveTicketError
		assert.ErrorAs(t, res.Err(), &none)
	})

	t.Run("from branch", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, "a")
		f.create(t, "b")
		f.git.branch = "ticket/a"

		res, err := f.checker.ActiveTicket(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", res.Name)
		assert.Equal(t, SourceBranch, res.Source)
		assert.Equal(t, []string{"a", "b"}, res.InProgress)
		assert.NoError(t, res.Err())
	})

	t.Run("from index", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, "a")
		f.create(t, "b")
		f.git.branch = "main"

		res, err := f.checker.ActiveTicket(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, "b", res.Name)
		assert.Equal(t, SourceIndex, res.Source)
	})

	t.Run("single in progress", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, "a")
		f.git.branch = "main"
		require.NoError(t, f.index.Reset(f.ctx))

		res, err := f.checker.ActiveTicket(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", res.Name)
		assert.Equal(t, SourceScan, res.Source)
	})

	t.Run("ambiguous", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, "a")
		f.create(t, "b")
		f.git.branch = "main"
		require.NoError(t, f.index.Reset(f.ctx))

		res, err := f.checker.ActiveTicket(f.ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Name)
		assert.Equal(t, []string{"a", "b"}, res.Ambiguous)

		var amb *ticket.AmbiguousActiveTicketError
		require.ErrorAs(t, res.Err(), &amb)
		assert.Equal(t, []string{"a", "b"}, amb.Names)
	})

	t.Run("paused tickets are not candidates", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, "a")
		_, err := f.ctl.Pause(f.ctx, "a")
		require.NoError(t, err)
		require.NoError(t, f.index.Set(f.ctx, "a", "ticket/a"))

		res, err := f.checker.ActiveTicket(f.ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Name)
	})
}
