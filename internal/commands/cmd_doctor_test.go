package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tkt/internal/core/doctor"
	"github.com/colonyops/tkt/internal/printer"
)

func doctorResults() []doctor.Result {
	return []doctor.Result{
		{Name: "Tools", Items: []doctor.CheckItem{
			{Label: "git", Status: doctor.StatusPass, Detail: "/usr/bin/git"},
		}},
		{Name: "Ticket Tree", Items: []doctor.CheckItem{
			{Label: "paused/x.yaml", Status: doctor.StatusPass},
			{Label: "add-login", Status: doctor.StatusFail, Detail: "2 copies", Fixable: true},
		}},
	}
}

func TestDoctorCmd_OutputText(t *testing.T) {
	t.Run("problems only", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := &DoctorCmd{}
		cmd.outputText(printer.New(&buf), doctorResults())

		out := buf.String()
		assert.Contains(t, out, "Tools")
		assert.NotContains(t, out, "/usr/bin/git")
		assert.Contains(t, out, "add-login")
		assert.Contains(t, out, "(fixable)")
		assert.Contains(t, out, "2 passed")
		assert.Contains(t, out, "1 failed")
		assert.Contains(t, out, "tkt doctor --autofix")
	})

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := &DoctorCmd{verbose: true, autofix: true}
		cmd.outputText(printer.New(&buf), doctorResults())

		out := buf.String()
		assert.Contains(t, out, "/usr/bin/git")
		assert.Contains(t, out, "paused/x.yaml")
		assert.NotContains(t, out, "tkt doctor --autofix")
	})
}

func TestDoctorCmd_OutputJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &DoctorCmd{}
	require.NoError(t, cmd.outputJSON(&buf, doctorResults()))

	var got doctorJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.False(t, got.Healthy)
	assert.Equal(t, 2, got.Passed)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Fixable)
	assert.Len(t, got.Checks, 2)
}
