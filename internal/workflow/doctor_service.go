package workflow

import (
	"context"

	"github.com/colonyops/tkt/internal/core/config"
	"github.com/colonyops/tkt/internal/core/doctor"
	"github.com/colonyops/tkt/internal/store/yamlfile"
)

// DoctorService runs health checks on the tkt setup.
type DoctorService struct {
	store   Store
	index   *yamlfile.Index
	journal *yamlfile.Journal
	checker *Checker
	config  *config.Config
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(store Store, index *yamlfile.Index, journal *yamlfile.Journal, checker *Checker, cfg *config.Config) *DoctorService {
	return &DoctorService{
		store:   store,
		index:   index,
		journal: journal,
		checker: checker,
		config:  cfg,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	fix := func(ctx context.Context, name string) ([]string, error) {
		report, err := d.checker.FixCommonIssues(ctx, name)
		return report.Actions, err
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewToolsCheck(d.config.GitPath),
		doctor.NewDirsCheck(
			doctor.Dir{Label: "repo_dir", Path: d.config.RepoDir},
			doctor.Dir{Label: "tickets_dir", Path: d.config.TicketsRoot(), Optional: true},
		),
		doctor.NewTreeCheck(d.store, fix, autofix),
		doctor.NewIndexCheck(d.store, d.index, autofix),
		doctor.NewJournalCheck(d.journal),
		doctor.NewTwoPhaseCheck(d.store),
	}
	return doctor.RunAll(ctx, checks)
}
