package yamlfile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(t.TempDir())

	pending, err := j.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pause, err := j.Begin(ctx, "pause", "add-login")
	require.NoError(t, err)
	require.NoError(t, pause.Step("git-snapshot"))

	resume, err := j.Begin(ctx, "resume", "fix-crash")
	require.NoError(t, err)

	pending, err = j.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	forLogin, err := j.PendingFor(ctx, "add-login")
	require.NoError(t, err)
	require.Len(t, forLogin, 1)
	assert.Equal(t, "pause", forLogin[0].Transition)
	assert.Equal(t, "git-snapshot", forLogin[0].LastStep())

	require.NoError(t, resume.Done())
	require.NoError(t, j.Discard(ctx, pause.ID))

	pending, err = j.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Error(t, j.Discard(ctx, "missing"))
}
