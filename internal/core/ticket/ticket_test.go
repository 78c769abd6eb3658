package ticket

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename_RoundTrip(t *testing.T) {
	created := time.Date(2026, 10, 18, 14, 3, 9, 0, time.UTC)

	name := Filename(created, "add-login")
	assert.Equal(t, "2026-10-18-14-03-09-ticket-add-login.yaml", name)

	parsed, ok := ParseFilename(filepath.Join("tickets", "in_progress", name))
	require.True(t, ok)
	assert.Equal(t, "add-login", parsed.Name)
	assert.True(t, created.Equal(parsed.CreatedAt))
}

func TestParseFilename_NonCanonical(t *testing.T) {
	tests := []string{
		"add-login.yaml",
		"ticket-add-login.yaml",
		"2026-10-18-ticket-add-login.yaml",
		"2026-10-18-14-03-09-ticket-add-login.json",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := ParseFilename(name)
			assert.False(t, ok)
		})
	}
}

func TestParseFilename_AcceptsYml(t *testing.T) {
	parsed, ok := ParseFilename("2026-01-02-03-04-05-ticket-fix-bug.yml")
	require.True(t, ok)
	assert.Equal(t, "fix-bug", parsed.Name)
}

func TestDir(t *testing.T) {
	done := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "in_progress", Dir(StatusInProgress, nil))
	assert.Equal(t, "paused", Dir(StatusPaused, &done))
	assert.Equal(t, filepath.Join("completed", "2026-03-09"), Dir(StatusCompleted, &done))
}

func TestStatusFromPath(t *testing.T) {
	tests := []struct {
		rel     string
		want    Status
		wantErr bool
	}{
		{rel: "in_progress/x.yaml", want: StatusInProgress},
		{rel: "paused/x.yaml", want: StatusPaused},
		{rel: "completed/2026-01-01/x.yaml", want: StatusCompleted},
		{rel: "archive/x.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := StatusFromPath(filepath.FromSlash(tt.rel))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("add-login"))
	assert.True(t, ValidName("a"))
	assert.True(t, ValidName("fix-42"))
	assert.False(t, ValidName("Add-Login"))
	assert.False(t, ValidName("add_login"))
	assert.False(t, ValidName("-leading"))
	assert.False(t, ValidName("two words"))
	assert.False(t, ValidName(""))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "add-login", Normalize(" Add_Login "))
}

func TestLocations(t *testing.T) {
	locs := Locations{}
	locs.Add(StatusPaused, "/p/a.yaml")
	locs.Add(StatusInProgress, "/i/a.yaml")
	locs.Add(StatusInProgress, "/i/a.yaml")

	assert.Equal(t, 2, locs.Count())
	assert.Equal(t, []string{"/i/a.yaml", "/p/a.yaml"}, locs.Paths())
}

func TestTicket_Sessions(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	var tk Ticket
	tk.OpenSession(start, "ticket/a")
	assert.Equal(t, time.Hour, tk.CloseSession(end))
	assert.Zero(t, tk.CloseSession(end.Add(time.Hour)), "no open session left")

	require.Len(t, tk.DevLog.Sessions, 1)
	require.NotNil(t, tk.DevLog.Sessions[0].EndedAt)
	assert.True(t, end.Equal(*tk.DevLog.Sessions[0].EndedAt))
}

func TestTicket_MergeFiles(t *testing.T) {
	tk := Ticket{FilesChanged: []string{"a.go"}}
	tk.MergeFiles([]string{"b.go", "a.go", "b.go"})
	assert.Equal(t, []string{"a.go", "b.go"}, tk.FilesChanged)
}

func TestTicket_UncheckedItems(t *testing.T) {
	tk := Ticket{CompletionChecklist: DefaultChecklist()}
	tk.CompletionChecklist["reviewed"] = true
	assert.Equal(t, []string{"docs_updated", "tests_passing"}, tk.UncheckedItems())
}

func TestErrors_As(t *testing.T) {
	var err error = &WriteError{Path: "x", Err: ErrStatusConflict}
	assert.True(t, errors.Is(err, ErrStatusConflict))

	var inv *InvalidStateError
	err = &InvalidStateError{Name: "a", Op: "complete", Status: StatusPaused, Want: StatusInProgress}
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, `cannot complete "a": status is paused, want in_progress`, err.Error())

	nf := &NotFoundError{Name: "ad-login", Suggestions: []string{"add-login"}}
	assert.Contains(t, nf.Error(), "did you mean add-login")
}

func TestEntry_Name(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"decoded", Entry{Path: "/t/in_progress/x.yaml", Ticket: Ticket{Name: "add-login"}}, "add-login"},
		{"canonical filename", Entry{Path: "/t/paused/2026-10-18-14-03-09-ticket-fix-crash.yaml", Err: errors.New("bad")}, "fix-crash"},
		{"other filename", Entry{Path: "/t/paused/notes.yml"}, "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Name())
		})
	}
}
