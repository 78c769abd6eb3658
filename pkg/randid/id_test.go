package randid

import (
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]*$`)

	for _, n := range []int{-1, 0, 1, 8, 16} {
		id := Generate(n)
		assert.Len(t, id, max(n, 0), "Generate(%d)", n)
		assert.Regexp(t, valid, id)
	}
}

func TestGenerate_Distinct(t *testing.T) {
	seen := map[string]struct{}{}
	for range 200 {
		seen[Generate(10)] = struct{}{}
	}

	assert.Len(t, seen, 200)
}

func TestSortable(t *testing.T) {
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	id := Sortable(base, 4)
	assert.Len(t, id, 11)
	assert.Regexp(t, `^[0-9a-hjkmnp-tv-z]{7}[a-z0-9]{4}$`, id)

	// same second shares the prefix
	assert.Equal(t, id[:7], Sortable(base.Add(500*time.Millisecond), 4)[:7])
}

func TestSortable_OrdersByTime(t *testing.T) {
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	offsets := []time.Duration{time.Hour, 0, 24 * time.Hour, time.Second, 365 * 24 * time.Hour}
	var ids []string
	for _, d := range offsets {
		ids = append(ids, Sortable(base.Add(d), 4)[:7])
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	want := []string{ids[1], ids[3], ids[0], ids[2], ids[4]}
	assert.Equal(t, want, sorted)
}
