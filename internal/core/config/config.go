// Package config handles configuration loading and validation for tkt.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tkt/internal/core/styles"
)

// Duplicate resolution policies for integrity repair.
const (
	PolicyDelete     = "delete"
	PolicyQuarantine = "quarantine"
)

// Config holds the application configuration.
type Config struct {
	TicketsDir     string          `yaml:"tickets_dir"`
	RepoDir        string          `yaml:"repo_dir"`
	GitPath        string          `yaml:"git_path"`
	MainBranch     string          `yaml:"main_branch"`
	BranchTemplate string          `yaml:"branch_template"`
	PullOnCreate   *bool           `yaml:"pull_on_create"`
	Theme          string          `yaml:"theme"`
	Lifecycle      LifecycleConfig `yaml:"lifecycle"`
	Integrity      IntegrityConfig `yaml:"integrity"`
	Git            GitConfig       `yaml:"git"`
}

// LifecycleConfig controls pause/resume behavior.
type LifecycleConfig struct {
	// StashThreshold is the largest number of changed files preserved with
	// git stash on pause. Larger change sets become a WIP commit; 0 always
	// commits.
	StashThreshold *int `yaml:"stash_threshold"`
	// CascadePause lets resume pause any other in-progress ticket first.
	CascadePause bool `yaml:"cascade_pause"`
	// WipMessageTemplate renders the WIP commit and stash message.
	WipMessageTemplate string `yaml:"wip_message_template"`
}

// IntegrityConfig controls integrity repair.
type IntegrityConfig struct {
	DuplicatePolicy string `yaml:"duplicate_policy"` // delete or quarantine
}

// GitConfig holds git invocation settings.
type GitConfig struct {
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
}

// BranchTemplateData defines fields available to branch_template.
type BranchTemplateData struct {
	Name string
	Type string
}

// WipTemplateData defines fields available to wip_message_template.
type WipTemplateData struct {
	Name      string
	Branch    string
	FileCount int
	Files     []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	pull := true
	threshold := 5
	return Config{
		TicketsDir:     "tickets",
		RepoDir:        ".",
		GitPath:        "git",
		MainBranch:     "main",
		BranchTemplate: "ticket/{{ .Name }}",
		PullOnCreate:   &pull,
		Theme:          styles.DefaultTheme,
		Lifecycle: LifecycleConfig{
			StashThreshold:     &threshold,
			WipMessageTemplate: "WIP({{ .Name }}): paused with {{ .FileCount }} changed files",
		},
		Integrity: IntegrityConfig{
			DuplicatePolicy: PolicyDelete,
		},
		Git: GitConfig{
			RetryMaxElapsed: 3 * time.Second,
		},
	}
}

// Load reads configuration from the given path. A missing file yields the
// defaults. A non-empty ticketsDir overrides the file's tickets_dir.
func Load(configPath, ticketsDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if ticketsDir != "" {
		cfg.TicketsDir = ticketsDir
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TicketsDir == "" {
		c.TicketsDir = defaults.TicketsDir
	}
	if c.RepoDir == "" {
		c.RepoDir = defaults.RepoDir
	}
	if c.GitPath == "" {
		c.GitPath = defaults.GitPath
	}
	if c.MainBranch == "" {
		c.MainBranch = defaults.MainBranch
	}
	if c.BranchTemplate == "" {
		c.BranchTemplate = defaults.BranchTemplate
	}
	if c.PullOnCreate == nil {
		c.PullOnCreate = defaults.PullOnCreate
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Lifecycle.StashThreshold == nil {
		c.Lifecycle.StashThreshold = defaults.Lifecycle.StashThreshold
	}
	if c.Lifecycle.WipMessageTemplate == "" {
		c.Lifecycle.WipMessageTemplate = defaults.Lifecycle.WipMessageTemplate
	}
	if c.Integrity.DuplicatePolicy == "" {
		c.Integrity.DuplicatePolicy = defaults.Integrity.DuplicatePolicy
	}
}

// TicketsRoot returns the absolute tickets directory. Relative tickets_dir
// values resolve against repo_dir.
func (c *Config) TicketsRoot() string {
	dir := c.TicketsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.RepoDir, dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// BranchPrefix returns the static prefix of rendered branch names, used to
// map a branch back to its ticket. "ticket/{{ .Name }}" -> "ticket/".
func (c *Config) BranchPrefix() string {
	if i := strings.Index(c.BranchTemplate, "{{"); i >= 0 {
		return c.BranchTemplate[:i]
	}
	return c.BranchTemplate
}

// StashLimit returns the stash threshold, or the default when unset.
func (c *Config) StashLimit() int {
	if c.Lifecycle.StashThreshold == nil {
		return *DefaultConfig().Lifecycle.StashThreshold
	}
	return *c.Lifecycle.StashThreshold
}

// ShouldPull reports whether create pulls the main branch before branching.
func (c *Config) ShouldPull() bool {
	return c.PullOnCreate == nil || *c.PullOnCreate
}
