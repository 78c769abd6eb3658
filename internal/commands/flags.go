package commands

import (
	"os"

	"golang.org/x/term"

	"github.com/colonyops/tkt/internal/core/config"
)

// DefaultConfigPath is the config file looked up in the working directory.
const DefaultConfigPath = ".tkt.yaml"

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	TicketsDir string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// isInteractive reports whether both stdin and stderr are terminals, so a
// prompt can be shown and answered.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}
