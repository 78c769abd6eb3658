package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

var created = time.Date(2026, 10, 18, 14, 3, 9, 0, time.UTC)

func saveTicket(t *testing.T, s *yamlfile.Store, name string, status ticket.Status, mutate func(*ticket.Ticket)) string {
	t.Helper()
	tk := ticket.Ticket{
		Name:      name,
		Type:      ticket.TypeFeature,
		Status:    status,
		CreatedAt: ticket.TimePtr(created),
	}
	if status == ticket.StatusCompleted {
		tk.CompletedAt = ticket.TimePtr(created.Add(time.Hour))
	}
	if mutate != nil {
		mutate(&tk)
	}
	path, err := s.Save(context.Background(), tk)
	require.NoError(t, err)
	return path
}

func TestTreeCheck_Clean(t *testing.T) {
	s := yamlfile.New(t.TempDir(), zerolog.Nop())
	saveTicket(t, s, "a", ticket.StatusInProgress, nil)
	saveTicket(t, s, "b", ticket.StatusPaused, nil)

	result := NewTreeCheck(s, nil, false).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "2 document(s)")
}

func TestTreeCheck_Problems(t *testing.T) {
	s := yamlfile.New(t.TempDir(), zerolog.Nop())
	saveTicket(t, s, "a", ticket.StatusInProgress, nil)
	saveTicket(t, s, "a", ticket.StatusPaused, nil)
	saveTicket(t, s, "b", ticket.StatusInProgress, nil)

	broken := filepath.Join(s.Root(), "paused", "2026-10-18-14-03-09-ticket-c.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: [\n"), 0o644))

	result := NewTreeCheck(s, nil, false).Run(context.Background())

	var labels []string
	for _, item := range result.Items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "a", "duplicate reported by name")
	assert.Contains(t, labels, filepath.Join("paused", "2026-10-18-14-03-09-ticket-c.yaml"))
	assert.Contains(t, labels, "in_progress")

	_, _, failed := Summary([]Result{result})
	assert.Equal(t, 2, failed)
}

func TestTreeCheck_Autofix(t *testing.T) {
	s := yamlfile.New(t.TempDir(), zerolog.Nop())
	keep := saveTicket(t, s, "a", ticket.StatusInProgress, nil)
	dup := saveTicket(t, s, "a", ticket.StatusPaused, nil)

	var fixed []string
	fix := func(ctx context.Context, name string) ([]string, error) {
		fixed = append(fixed, name)
		return []string{"deleted duplicate"}, s.Delete(ctx, dup)
	}

	result := NewTreeCheck(s, fix, true).Run(context.Background())

	assert.Equal(t, []string{"a"}, fixed)
	assert.FileExists(t, keep)

	_, _, failed := Summary([]Result{result})
	assert.Zero(t, failed)
	assert.Contains(t, result.Items[0].Detail, "repaired")
}

func TestIndexCheck(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := yamlfile.New(root, zerolog.Nop())
	idx := yamlfile.NewIndex(root)
	saveTicket(t, s, "a", ticket.StatusInProgress, nil)

	result := NewIndexCheck(s, idx, false).Run(ctx)
	assert.Equal(t, "not set", result.Items[0].Detail)

	require.NoError(t, idx.Set(ctx, "a", "ticket/a"))
	result = NewIndexCheck(s, idx, false).Run(ctx)
	assert.Equal(t, StatusPass, result.Items[0].Status)

	require.NoError(t, idx.Set(ctx, "gone", "ticket/gone"))
	result = NewIndexCheck(s, idx, false).Run(ctx)
	assert.Equal(t, StatusWarn, result.Items[0].Status)
	assert.True(t, result.Items[0].Fixable)

	result = NewIndexCheck(s, idx, true).Run(ctx)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	_, ok, err := idx.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournalCheck(t *testing.T) {
	ctx := context.Background()
	j := yamlfile.NewJournal(t.TempDir())

	result := NewJournalCheck(j).Run(ctx)
	assert.Equal(t, StatusPass, result.Items[0].Status)

	e, err := j.Begin(ctx, "pause", "a")
	require.NoError(t, err)

	result = NewJournalCheck(j).Run(ctx)
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusWarn, result.Items[0].Status)
	assert.Equal(t, e.ID, result.Items[0].Label)
	assert.Contains(t, result.Items[0].Detail, "tkt journal --clear "+e.ID)
}

func TestTwoPhaseCheck(t *testing.T) {
	s := yamlfile.New(t.TempDir(), zerolog.Nop())
	saveTicket(t, s, "done", ticket.StatusCompleted, func(tk *ticket.Ticket) { tk.CommitHash = "abc" })
	saveTicket(t, s, "pending", ticket.StatusCompleted, nil)

	result := NewTwoPhaseCheck(s).Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, "pending", result.Items[0].Label)
	assert.Equal(t, StatusWarn, result.Items[0].Status)
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()

	result := NewConfigCheck(&cfg, "").Run(context.Background())
	require.Len(t, result.Items, 2)
	assert.Contains(t, result.Items[0].Detail, "using defaults")
	assert.Equal(t, StatusPass, result.Items[1].Status)

	cfg.Integrity.DuplicatePolicy = "shred"
	result = NewConfigCheck(&cfg, "").Run(context.Background())
	require.Len(t, result.Items, 2)
	assert.Equal(t, "integrity.duplicate_policy", result.Items[1].Label)
	assert.Equal(t, StatusFail, result.Items[1].Status)
}
