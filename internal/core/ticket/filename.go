package ticket

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15-04-05"

	// Ext is the extension of ticket documents written by the store.
	Ext = ".yaml"

	// Marker separates the timestamp prefix from the ticket name in filenames.
	Marker = "-ticket-"
)

var filenameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(\d{2}-\d{2}-\d{2})-ticket-(.+)\.(?:ya?ml)$`)

// Filename returns the canonical document filename for a ticket created at
// createdAt.
//
// Example: 2026-10-18-14-03-09-ticket-add-login.yaml
func Filename(createdAt time.Time, name string) string {
	createdAt = createdAt.UTC()
	return createdAt.Format(dateLayout) + "-" + createdAt.Format(timeLayout) + Marker + name + Ext
}

// ParsedFilename is the information recoverable from a canonical filename.
type ParsedFilename struct {
	Name      string
	CreatedAt time.Time
}

// ParseFilename extracts the name and creation time from a canonical ticket
// filename. ok is false for names that do not follow the convention.
func ParseFilename(path string) (ParsedFilename, bool) {
	m := filenameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return ParsedFilename{}, false
	}

	created, err := time.Parse(dateLayout+"-"+timeLayout, m[1]+"-"+m[2])
	if err != nil {
		return ParsedFilename{}, false
	}

	return ParsedFilename{Name: m[3], CreatedAt: created.UTC()}, true
}

// Dir returns the directory, relative to the tickets root, that holds a
// ticket with the given status. Completed tickets are grouped by completion
// date.
func Dir(status Status, completedAt *time.Time) string {
	if status == StatusCompleted {
		day := Now()
		if completedAt != nil {
			day = completedAt.UTC()
		}
		return filepath.Join(string(StatusCompleted), day.Format(dateLayout))
	}
	return string(status)
}

// StatusFromPath returns the status segment of a document path relative to
// the tickets root.
func StatusFromPath(rel string) (Status, error) {
	rel = filepath.ToSlash(rel)
	first, _, _ := strings.Cut(rel, "/")
	s := Status(first)
	if !s.IsValid() {
		return "", fmt.Errorf("path %q is not under a status directory", rel)
	}
	return s, nil
}
