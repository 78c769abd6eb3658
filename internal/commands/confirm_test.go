package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tkt/internal/workflow"
)

func TestGuardSummary(t *testing.T) {
	t.Run("commit lists staged files and warnings", func(t *testing.T) {
		out := guardSummary(workflow.GuardResult{
			Action:      workflow.ActionCommit,
			Branch:      "ticket/add-login",
			Active:      []string{"add-login", "fix-typo"},
			Warnings:    []string{"2 tickets in progress"},
			StagedCount: 3,
		})

		assert.Contains(t, out, "ticket/add-login")
		assert.Contains(t, out, "add-login, fix-typo")
		assert.Contains(t, out, "3 file(s)")
		assert.Contains(t, out, "2 tickets in progress")
	})

	t.Run("start omits staging", func(t *testing.T) {
		out := guardSummary(workflow.GuardResult{
			Action: workflow.ActionStart,
			Branch: "ticket/add-login",
		})

		assert.Contains(t, out, "none")
		assert.NotContains(t, out, "file(s)")
	})
}
