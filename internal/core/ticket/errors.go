package ticket

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrStatusConflict is returned when a write would leave a document whose
	// status disagrees with the directory it is stored in.
	ErrStatusConflict = errors.New("status does not match storage directory")
	// ErrDeclined is returned when the user answers no to a confirmation.
	ErrDeclined = errors.New("declined by user")
)

// NoActiveTicketError is returned when an operation needs an in-progress
// ticket and none exists.
type NoActiveTicketError struct{}

func (*NoActiveTicketError) Error() string { return "no active ticket" }

// AmbiguousActiveTicketError is returned when more than one ticket is in
// progress and nothing identifies which one to use.
type AmbiguousActiveTicketError struct {
	Names []string
}

func (e *AmbiguousActiveTicketError) Error() string {
	return fmt.Sprintf("multiple active tickets: %s", strings.Join(e.Names, ", "))
}

// InvalidStateError is returned when a transition is requested from a state
// that does not allow it.
type InvalidStateError struct {
	Name   string
	Op     string
	Status Status
	Want   Status
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s %q: %s", e.Op, e.Name, e.Reason)
	}
	return fmt.Sprintf("cannot %s %q: status is %s, want %s", e.Op, e.Name, e.Status, e.Want)
}

// DuplicateTicketError is returned when a name resolves to more than one
// document, or when creating a name that already exists.
type DuplicateTicketError struct {
	Name      string
	Locations Locations
}

func (e *DuplicateTicketError) Error() string {
	return fmt.Sprintf("ticket %q exists in %d location(s): %s", e.Name, e.Locations.Count(), strings.Join(e.Locations.Paths(), ", "))
}

// NotFoundError is returned when no document matches a ticket name.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("ticket %q not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// MissingFieldError reports a required document field that is absent.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Path, e.Field)
}

// ParseError wraps a failure to decode a ticket document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// WriteError wraps a failure to persist a ticket document.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Locations maps each status to the document paths found under it.
type Locations map[Status][]string

// Count returns the total number of paths across all statuses.
func (l Locations) Count() int {
	n := 0
	for _, paths := range l {
		n += len(paths)
	}
	return n
}

// Paths returns every path in status order.
func (l Locations) Paths() []string {
	var out []string
	for _, s := range Statuses {
		out = append(out, l[s]...)
	}
	return out
}

// Add records path under status unless it is already present.
func (l Locations) Add(status Status, path string) {
	if slices.Contains(l[status], path) {
		return
	}
	l[status] = append(l[status], path)
}
