package logutils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	closer()
}

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "tkt.log")

	l, closer, err := New("info", file)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("ticket", "add-login").Msg("paused")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"ticket":"add-login"`)
	assert.Contains(t, string(data), `"time"`)
}

func TestNew_FileAppends(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tkt.log")
	require.NoError(t, os.WriteFile(file, []byte("previous\n"), 0o644))

	l, closer, err := New("warn", file)
	require.NoError(t, err)
	l.Warn().Msg("next")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "previous\n")
	assert.Contains(t, string(data), "next")
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.ErrorLevel)

	l.Warn().Msg("dropped")
	assert.Empty(t, buf.String())

	l.Error().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
