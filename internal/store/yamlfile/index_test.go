package yamlfile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(t.TempDir())

	_, ok, err := idx.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, idx.Set(ctx, "add-login", "ticket/add-login"))

	p, ok, err := idx.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "add-login", p.Ticket)
	assert.Equal(t, "ticket/add-login", p.Branch)
	assert.False(t, p.UpdatedAt.IsZero())

	// clearing another name leaves the pointer alone
	require.NoError(t, idx.Clear(ctx, "other"))
	_, ok, err = idx.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, idx.Clear(ctx, "add-login"))
	_, ok, err = idx.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, idx.Reset(ctx), "reset without pointer is a no-op")
}
