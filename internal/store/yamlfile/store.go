// Package yamlfile implements ticket persistence as YAML documents in a
// status-partitioned directory tree, plus the active-ticket index and the
// transition journal kept under the tree's .state directory.
package yamlfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/tkt/internal/core/ticket"
)

// StateDir holds tool state next to the ticket directories. Documents under
// it are never treated as tickets.
const StateDir = ".state"

const (
	docPattern     = "**/*.{yaml,yml}"
	maxSuggestions = 3
)

var _ ticket.Store = (*Store)(nil)

// Store implements ticket.Store on the filesystem.
type Store struct {
	root string
	log  zerolog.Logger
}

// New creates a Store rooted at root. Status directories are created on
// first write.
func New(root string, log zerolog.Logger) *Store {
	return &Store{root: root, log: log}
}

// Root returns the tickets root directory.
func (s *Store) Root() string { return s.root }

// Exists returns every location holding a document for name.
func (s *Store) Exists(ctx context.Context, name string) (ticket.Locations, error) {
	locs := ticket.Locations{}
	query := ticket.Normalize(name)
	if query == "" {
		return locs, nil
	}

	exact := "**/" + stampGlob + ticket.Marker + escapeMeta(name) + ".*"

	for _, status := range ticket.Statuses {
		dir := filepath.Join(s.root, string(status))
		fsys := os.DirFS(dir)

		matches, err := doublestar.Glob(fsys, exact, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		for _, m := range matches {
			if parsed, ok := ticket.ParseFilename(m); ok && parsed.Name == name && isDocument(m) {
				locs.Add(status, filepath.Join(dir, filepath.FromSlash(m)))
			}
		}

		docs, err := s.scan(status)
		if err != nil {
			return nil, err
		}
		for _, rel := range docs {
			if fuzzyMatch(rel, query) {
				locs.Add(status, filepath.Join(dir, filepath.FromSlash(rel)))
			}
		}
	}

	for status := range locs {
		sort.Strings(locs[status])
	}

	return locs, nil
}

// Find resolves name to exactly one document.
func (s *Store) Find(ctx context.Context, name string) (ticket.Entry, error) {
	locs, err := s.Exists(ctx, name)
	if err != nil {
		return ticket.Entry{}, err
	}

	switch locs.Count() {
	case 0:
		return ticket.Entry{}, &ticket.NotFoundError{Name: name, Suggestions: s.Suggest(ctx, name)}
	case 1:
		// ok
	default:
		return ticket.Entry{}, &ticket.DuplicateTicketError{Name: name, Locations: locs}
	}

	path := locs.Paths()[0]
	status, err := s.statusOf(path)
	if err != nil {
		return ticket.Entry{}, err
	}

	return s.entry(ctx, status, path), nil
}

// Load decodes the document at path.
func (s *Store) Load(ctx context.Context, path string) (ticket.Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ticket.Ticket{}, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return ticket.Ticket{}, &ticket.ParseError{Path: path, Err: errors.New("empty document")}
	}

	var t ticket.Ticket
	if err := yaml.Unmarshal(data, &t); err != nil {
		return ticket.Ticket{}, &ticket.ParseError{Path: path, Err: err}
	}

	return t, nil
}

// Save writes t to the path derived from its status, creation time, and name.
func (s *Store) Save(ctx context.Context, t ticket.Ticket) (string, error) {
	path, err := s.PathFor(t)
	if err != nil {
		return "", err
	}

	if existing, err := s.Load(ctx, path); err == nil && existing.Status != t.Status {
		return "", &ticket.WriteError{
			Path: path,
			Err:  fmt.Errorf("%w: existing document is %s, writing %s", ticket.ErrStatusConflict, existing.Status, t.Status),
		}
	}

	if err := writeYAML(path, t); err != nil {
		return "", &ticket.WriteError{Path: path, Err: err}
	}

	s.log.Debug().Str("path", path).Str("status", t.Status.String()).Msg("ticket saved")
	return path, nil
}

// Update rewrites the document at path in place.
func (s *Store) Update(ctx context.Context, path string, t ticket.Ticket) error {
	status, err := s.statusOf(path)
	if err != nil {
		return &ticket.WriteError{Path: path, Err: err}
	}
	if status != t.Status {
		return &ticket.WriteError{
			Path: path,
			Err:  fmt.Errorf("%w: directory is %s, document is %s", ticket.ErrStatusConflict, status, t.Status),
		}
	}

	if err := writeYAML(path, t); err != nil {
		return &ticket.WriteError{Path: path, Err: err}
	}
	return nil
}

// Move persists t at the location for its status, then removes the document
// at from. A failure between the two steps leaves both files on disk.
func (s *Store) Move(ctx context.Context, from string, t ticket.Ticket) (string, error) {
	to, err := s.Save(ctx, t)
	if err != nil {
		return "", err
	}

	if filepath.Clean(to) == filepath.Clean(from) {
		return to, nil
	}

	if err := s.Delete(ctx, from); err != nil {
		return to, fmt.Errorf("remove previous document: %w", err)
	}

	s.log.Debug().Str("from", from).Str("to", to).Msg("ticket moved")
	return to, nil
}

// Delete removes the document at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// List returns documents under the given statuses (all when empty), ordered
// by status then path. Documents that fail to decode are returned with Err
// set.
func (s *Store) List(ctx context.Context, statuses ...ticket.Status) ([]ticket.Entry, error) {
	if len(statuses) == 0 {
		statuses = ticket.Statuses
	}

	var out []ticket.Entry
	for _, status := range statuses {
		docs, err := s.scan(status)
		if err != nil {
			return nil, err
		}
		for _, rel := range docs {
			path := filepath.Join(s.root, string(status), filepath.FromSlash(rel))
			out = append(out, s.entry(ctx, status, path))
		}
	}

	return out, nil
}

// Suggest returns ticket names that resemble name, best first.
func (s *Store) Suggest(ctx context.Context, name string) []string {
	seen := map[string]bool{}
	var names []string
	for _, status := range ticket.Statuses {
		docs, err := s.scan(status)
		if err != nil {
			continue
		}
		for _, rel := range docs {
			n := nameOf(rel)
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	matches := fuzzy.Find(ticket.Normalize(name), names)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// PathFor returns the absolute path a document for t is stored at.
func (s *Store) PathFor(t ticket.Ticket) (string, error) {
	if !t.Status.IsValid() {
		return "", &ticket.WriteError{Err: fmt.Errorf("invalid status %q", t.Status)}
	}
	if t.Name == "" {
		return "", &ticket.WriteError{Err: &ticket.MissingFieldError{Field: "name"}}
	}
	if t.CreatedAt == nil {
		return "", &ticket.WriteError{Err: &ticket.MissingFieldError{Field: "created_at"}}
	}

	rel := filepath.Join(ticket.Dir(t.Status, t.CompletedAt), ticket.Filename(*t.CreatedAt, t.Name))
	return filepath.Join(s.root, rel), nil
}

func (s *Store) entry(ctx context.Context, status ticket.Status, path string) ticket.Entry {
	e := ticket.Entry{Path: path, Dir: status}
	if info, err := os.Stat(path); err == nil {
		e.ModTime = info.ModTime()
	}
	e.Ticket, e.Err = s.Load(ctx, path)
	return e
}

func (s *Store) statusOf(path string) (ticket.Status, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", err
	}
	return ticket.StatusFromPath(rel)
}

// scan returns document paths, relative to the status directory and in
// slash form, found under status.
func (s *Store) scan(status ticket.Status) ([]string, error) {
	dir := filepath.Join(s.root, string(status))
	docs, err := doublestar.Glob(os.DirFS(dir), docPattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(docs)
	return docs, nil
}

func isDocument(rel string) bool {
	ext := filepath.Ext(rel)
	return ext == ".yaml" || ext == ".yml"
}

// nameOf returns the ticket name a document path carries: the name segment
// of canonical filenames, otherwise the normalized stem.
func nameOf(rel string) string {
	if parsed, ok := ticket.ParseFilename(rel); ok {
		return ticket.Normalize(parsed.Name)
	}
	base := filepath.Base(rel)
	return ticket.Normalize(strings.TrimSuffix(base, filepath.Ext(base)))
}

// fuzzyMatch reports whether the document at rel belongs to the normalized
// name query. Canonical filenames must carry exactly that name; other
// filenames match when query appears as a whole run of dash-separated tokens
// in the stem.
func fuzzyMatch(rel, query string) bool {
	if parsed, ok := ticket.ParseFilename(rel); ok {
		return ticket.Normalize(parsed.Name) == query
	}

	stem := strings.Split(nameOf(rel), "-")
	needle := strings.Split(query, "-")
	for i := 0; i+len(needle) <= len(stem); i++ {
		if slices.Equal(stem[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

// stampGlob matches the timestamp prefix of canonical filenames, so a name
// cannot match the tail of a longer name that itself contains the marker.
const stampGlob = "????-??-??-??-??-??"

func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// writeYAML encodes v and writes it to path atomically.
func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
