package commands

import (
	"io"
	"os"
	"path/filepath"

	"github.com/colonyops/tkt/internal/workflow"
	"github.com/colonyops/tkt/pkg/iojson"
)

// relPath shortens path relative to the repository directory for display.
func relPath(app *workflow.App, path string) string {
	base, err := filepath.Abs(app.Config.RepoDir)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func writeJSON(w io.Writer, v any) error {
	return iojson.WriteWith(w, os.Stderr, v)
}
