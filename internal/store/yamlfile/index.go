package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tkt/internal/core/ticket"
)

const indexFile = "active.yaml"

// Pointer names the ticket most recently made active and the branch it was
// activated on.
type Pointer struct {
	Ticket    string    `yaml:"ticket"`
	Branch    string    `yaml:"branch"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Index persists the active-ticket pointer. It is a hint: the directory scan
// remains authoritative and callers must check the pointer against it.
type Index struct {
	path string
}

// NewIndex creates an Index stored under root's state directory.
func NewIndex(root string) *Index {
	return &Index{path: filepath.Join(root, StateDir, indexFile)}
}

// Path returns the index file location.
func (i *Index) Path() string { return i.path }

// Get returns the pointer. ok is false when no pointer is set.
func (i *Index) Get(ctx context.Context) (p Pointer, ok bool, err error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Pointer{}, false, nil
		}
		return Pointer{}, false, err
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pointer{}, false, fmt.Errorf("parse %s: %w", i.path, err)
	}

	return p, p.Ticket != "", nil
}

// Set points the index at name.
func (i *Index) Set(ctx context.Context, name, branch string) error {
	return writeYAML(i.path, Pointer{Ticket: name, Branch: branch, UpdatedAt: ticket.Now()})
}

// Clear removes the pointer if it currently names name.
func (i *Index) Clear(ctx context.Context, name string) error {
	p, ok, err := i.Get(ctx)
	if err != nil || !ok || p.Ticket != name {
		return err
	}
	return i.Reset(ctx)
}

// Reset removes the pointer unconditionally.
func (i *Index) Reset(ctx context.Context) error {
	if err := os.Remove(i.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
