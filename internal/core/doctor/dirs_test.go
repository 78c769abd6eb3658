package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirsCheck_AllExist(t *testing.T) {
	check := NewDirsCheck(
		Dir{Label: "repo_dir", Path: t.TempDir()},
		Dir{Label: "tickets_dir", Path: t.TempDir(), Optional: true},
	)
	result := check.Run(context.Background())

	assert.Equal(t, "Directories", result.Name)
	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, StatusPass, result.Items[1].Status)
}

func TestDirsCheck_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	result := NewDirsCheck(
		Dir{Label: "repo_dir", Path: missing},
		Dir{Label: "tickets_dir", Path: missing, Optional: true},
	).Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "does not exist")
	assert.Equal(t, StatusPass, result.Items[1].Status)
	assert.Contains(t, result.Items[1].Detail, "created on first write")
}

func TestDirsCheck_NotADirectory(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "notadir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	result := NewDirsCheck(Dir{Label: "tickets_dir", Path: filePath, Optional: true}).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "not a directory")
}
