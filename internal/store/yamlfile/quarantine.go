package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colonyops/tkt/internal/core/ticket"
)

const (
	conflictsDir = "conflicts"
	conflictsLog = "conflicts.log"
)

// ConflictsDir returns the directory quarantined documents are moved to.
func (s *Store) ConflictsDir() string {
	return filepath.Join(s.root, StateDir, conflictsDir)
}

// Quarantine moves the document at path out of the ticket tree into the
// conflicts directory and records the move in conflicts.log. It returns the
// new location.
func (s *Store) Quarantine(ctx context.Context, path, reason string) (string, error) {
	dir := s.ConflictsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create conflicts dir: %w", err)
	}

	prefix := "unknown"
	if status, err := s.statusOf(path); err == nil {
		prefix = string(status)
	}

	now := ticket.Now()
	dest := filepath.Join(dir, fmt.Sprintf("%s-%d-%s", prefix, now.Unix(), filepath.Base(path)))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", path, err)
	}

	f, err := os.OpenFile(filepath.Join(dir, conflictsLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return dest, fmt.Errorf("open conflicts log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, "%s\t%s\t%s\t%s\n", now.Format(time.RFC3339), path, dest, reason); err != nil {
		return dest, fmt.Errorf("write conflicts log: %w", err)
	}

	s.log.Info().Str("from", path).Str("to", dest).Str("reason", reason).Msg("document quarantined")
	return dest, nil
}
