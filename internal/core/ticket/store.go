package ticket

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Entry is a ticket document found on disk.
type Entry struct {
	Path    string    // absolute path to the document
	Dir     Status    // status implied by the storage directory
	ModTime time.Time // file modification time
	Ticket  Ticket    // decoded document; zero when Err is set
	Err     error     // decode failure, if any
}

// Name returns the ticket name of the entry, falling back to the filename
// for documents that failed to decode or lack a name.
func (e Entry) Name() string {
	if e.Err == nil && e.Ticket.Name != "" {
		return e.Ticket.Name
	}
	if parsed, ok := ParseFilename(e.Path); ok {
		return parsed.Name
	}
	base := filepath.Base(e.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Store defines ticket document persistence keyed by (status, name).
type Store interface {
	// Root returns the tickets root directory.
	Root() string

	// Exists returns every location holding a document for name, using both
	// exact filename matches and fuzzy matches. Returns an empty map when
	// nothing matches.
	Exists(ctx context.Context, name string) (Locations, error)

	// Find resolves name to exactly one document.
	// Returns *NotFoundError or *DuplicateTicketError otherwise.
	Find(ctx context.Context, name string) (Entry, error)

	// Load decodes the document at path. Returns *ParseError on malformed input.
	Load(ctx context.Context, path string) (Ticket, error)

	// Save writes t to the path derived from its status, creation time, and
	// name. Returns *WriteError on failure, wrapping ErrStatusConflict when an
	// existing document at that path has a different status.
	Save(ctx context.Context, t Ticket) (string, error)

	// Update rewrites the document at path in place. The status of t must
	// match the path's status directory.
	Update(ctx context.Context, path string, t Ticket) error

	// Move persists t at its new location and removes the document at from.
	Move(ctx context.Context, from string, t Ticket) (string, error)

	// Delete removes the document at path.
	Delete(ctx context.Context, path string) error

	// List returns documents under the given statuses (all when empty).
	List(ctx context.Context, statuses ...Status) ([]Entry, error)

	// Suggest returns ticket names that resemble name, best first.
	Suggest(ctx context.Context, name string) []string
}
