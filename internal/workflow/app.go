// Package workflow implements the ticket lifecycle, integrity checking and
// repair, and the workflow guard on top of the ticket store and git.
package workflow

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// Store is the ticket persistence the workflow depends on.
type Store interface {
	ticket.Store
	// Quarantine moves a document out of the ticket tree, returning its new
	// location.
	Quarantine(ctx context.Context, path, reason string) (string, error)
}

// App is the central entry point for all tkt operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Lifecycle *Controller
	Integrity *Checker
	Guard     *Guard
	Doctor    *DoctorService

	Store   Store
	Git     git.Git
	Index   *yamlfile.Index
	Journal *yamlfile.Journal
	Config  *config.Config
}

// NewApp constructs an App from explicit dependencies. The store, index, and
// journal share the configured tickets root.
func NewApp(cfg *config.Config, g git.Git, log zerolog.Logger) *App {
	root := cfg.TicketsRoot()
	store := yamlfile.New(root, log.With().Str("component", "store").Logger())
	index := yamlfile.NewIndex(root)
	journal := yamlfile.NewJournal(root)

	checker := NewChecker(store, g, index, journal, cfg, log.With().Str("component", "integrity").Logger())

	return &App{
		Lifecycle: NewController(store, g, index, journal, cfg, log.With().Str("component", "lifecycle").Logger()),
		Integrity: checker,
		Guard:     NewGuard(store, g, index, journal, cfg),
		Doctor:    NewDoctorService(store, index, journal, checker, cfg),
		Store:     store,
		Git:       g,
		Index:     index,
		Journal:   journal,
		Config:    cfg,
	}
}
