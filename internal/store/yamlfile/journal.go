package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/pkg/randid"
)

const journalDir = "journal"

// JournalEntry records a lifecycle transition in flight. The entry is written
// before the transition's first side effect and removed when it finishes, so
// an entry left on disk marks a transition that stopped partway.
type JournalEntry struct {
	ID         string    `yaml:"id"`
	Transition string    `yaml:"transition"`
	Ticket     string    `yaml:"ticket"`
	StartedAt  time.Time `yaml:"started_at"`
	Steps      []string  `yaml:"steps"`

	journal *Journal
}

// Step records that the named step completed.
func (e *JournalEntry) Step(name string) error {
	e.Steps = append(e.Steps, name)
	return writeYAML(e.journal.pathFor(e.ID), e)
}

// Done removes the entry, marking the transition finished.
func (e *JournalEntry) Done() error {
	return e.journal.Discard(context.Background(), e.ID)
}

// LastStep returns the most recent completed step, or "" when none.
func (e JournalEntry) LastStep() string {
	if len(e.Steps) == 0 {
		return ""
	}
	return e.Steps[len(e.Steps)-1]
}

// Journal stores unfinished transition entries, one file per entry.
type Journal struct {
	dir string
}

// NewJournal creates a Journal stored under root's state directory.
func NewJournal(root string) *Journal {
	return &Journal{dir: filepath.Join(root, StateDir, journalDir)}
}

// Begin writes a new entry for transition on the named ticket.
func (j *Journal) Begin(ctx context.Context, transition, name string) (*JournalEntry, error) {
	now := ticket.Now()
	e := &JournalEntry{
		ID:         randid.Sortable(now, 3),
		Transition: transition,
		Ticket:     name,
		StartedAt:  now,
		journal:    j,
	}

	if err := writeYAML(j.pathFor(e.ID), e); err != nil {
		return nil, fmt.Errorf("write journal entry: %w", err)
	}
	return e, nil
}

// Pending returns unfinished entries, oldest first.
func (j *Journal) Pending(ctx context.Context) ([]JournalEntry, error) {
	files, err := os.ReadDir(j.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []JournalEntry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(j.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var e JournalEntry
		if err := yaml.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		e.journal = j
		out = append(out, e)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].StartedAt.Equal(out[b].StartedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].StartedAt.Before(out[b].StartedAt)
	})
	return out, nil
}

// PendingFor returns unfinished entries for the named ticket.
func (j *Journal) PendingFor(ctx context.Context, name string) ([]JournalEntry, error) {
	all, err := j.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var out []JournalEntry
	for _, e := range all {
		if e.Ticket == name {
			out = append(out, e)
		}
	}
	return out, nil
}

// Discard removes the entry with the given id.
func (j *Journal) Discard(ctx context.Context, id string) error {
	if err := os.Remove(j.pathFor(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("journal entry %q not found", id)
		}
		return err
	}
	return nil
}

func (j *Journal) pathFor(id string) string {
	return filepath.Join(j.dir, id+".yaml")
}
