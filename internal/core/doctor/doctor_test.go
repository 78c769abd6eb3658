package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCheck struct {
	name  string
	items []CheckItem
}

func (c staticCheck) Name() string { return c.name }

func (c staticCheck) Run(context.Context) Result {
	return Result{Name: c.name, Items: append([]CheckItem(nil), c.items...)}
}

func TestRunAllAndSummary(t *testing.T) {
	checks := []Check{
		staticCheck{name: "a", items: []CheckItem{
			{Label: "one", Status: StatusPass},
			{Label: "two", Status: StatusWarn, Fixable: true},
		}},
		staticCheck{name: "b", items: []CheckItem{
			{Label: "three", Status: StatusFail, Fixable: true},
			{Label: "four", Status: StatusPass, Fixable: true},
		}},
	}

	results := RunAll(context.Background(), checks)
	require.Len(t, results, 2)
	assert.Equal(t, "warn", results[0].Items[1].StatusStr)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, CountFixable(results))
}

func TestResult_StatusAndProblems(t *testing.T) {
	tests := []struct {
		name     string
		items    []CheckItem
		want     Status
		problems int
	}{
		{"empty", nil, StatusPass, 0},
		{"all pass", []CheckItem{{Status: StatusPass}, {Status: StatusPass}}, StatusPass, 0},
		{"warn wins over pass", []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}, StatusWarn, 1},
		{"fail wins over warn", []CheckItem{{Status: StatusWarn}, {Status: StatusFail}, {Status: StatusPass}}, StatusFail, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{Name: "x", Items: tt.items}
			assert.Equal(t, tt.want, r.Status())
			assert.Len(t, r.Problems(), tt.problems)
		})
	}
}
