package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tkt/internal/core/doctor"
)

func resultNamed(t *testing.T, results []doctor.Result, name string) doctor.Result {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "missing check", "no result named %q", name)
	return doctor.Result{}
}

func TestDoctorService_RunChecks(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a")
	svc := NewDoctorService(f.store, f.index, f.journal, f.checker, f.cfg)

	results := svc.RunChecks(f.ctx, "", false)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"Configuration",
		"Tools",
		"Directories",
		"Ticket Tree",
		"Active Index",
		"Transition Journal",
		"Commit Attachment",
	}, names)

	for _, name := range []string{"Ticket Tree", "Active Index", "Transition Journal"} {
		for _, item := range resultNamed(t, results, name).Items {
			assert.Equal(t, doctor.StatusPass, item.Status, "%s: %s", name, item.Label)
		}
	}
}

func TestDoctorService_AutofixDuplicates(t *testing.T) {
	f := newFixture(t)
	_, newer := f.duplicate(t, "a")
	svc := NewDoctorService(f.store, f.index, f.journal, f.checker, f.cfg)

	before := resultNamed(t, svc.RunChecks(f.ctx, "", false), "Ticket Tree")
	var fixable int
	for _, item := range before.Items {
		if item.Fixable {
			fixable++
		}
	}
	assert.Positive(t, fixable)

	svc.RunChecks(f.ctx, "", true)

	locs, err := f.store.Exists(f.ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{newer}, locs.Paths())
}
