package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/pkg/tmpl"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("git_path", c.GitPath, notEmpty),
		criterio.Run("main_branch", c.MainBranch, notEmpty),
		criterio.Run("tickets_dir", c.TicketsDir, notEmpty),
		c.validateBranchTemplate(),
		c.validateLifecycle(),
		criterio.Run("integrity.duplicate_policy", c.Integrity.DuplicatePolicy, isDuplicatePolicy),
		criterio.Run("theme", c.Theme, isTheme),
	)
}

// ValidateDeep performs Validate plus I/O checks: the git executable and the
// tickets and repository directories.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("git_path", c.GitPath, gitExecutableExists),
		criterio.Run("repo_dir", c.RepoDir, isDirectory),
		criterio.Run("tickets_dir", c.TicketsRoot(), isDirectoryOrNotExist),
	)
}

func (c *Config) validateBranchTemplate() error {
	var errs criterio.FieldErrorsBuilder

	const sample = "sample-ticket"
	got, err := tmpl.Render(c.BranchTemplate, BranchTemplateData{Name: sample, Type: "feature"})
	switch {
	case err != nil:
		errs = errs.Append("branch_template", fmt.Errorf("template error: %w", err))
	case c.BranchPrefix() == "":
		errs = errs.Append("branch_template", fmt.Errorf("must start with a static prefix such as \"ticket/\""))
	case got != c.BranchPrefix()+sample:
		errs = errs.Append("branch_template", fmt.Errorf("must render as <prefix><name>, got %q", got))
	}

	return errs.ToError()
}

func (c *Config) validateLifecycle() error {
	var errs criterio.FieldErrorsBuilder

	if c.Git.RetryMaxElapsed < 0 {
		errs = errs.Append("git.retry_max_elapsed", fmt.Errorf("must not be negative"))
	}
	if c.Lifecycle.StashThreshold != nil && *c.Lifecycle.StashThreshold < 0 {
		errs = errs.Append("lifecycle.stash_threshold", fmt.Errorf("must not be negative"))
	}

	sample := WipTemplateData{Name: "sample-ticket", Branch: "ticket/sample-ticket", FileCount: 1, Files: []string{"a.go"}}
	if err := tmpl.Check(c.Lifecycle.WipMessageTemplate, sample); err != nil {
		errs = errs.Append("lifecycle.wip_message_template", fmt.Errorf("template error: %w", err))
	}

	return errs.ToError()
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func isTheme(s string) error {
	if _, ok := styles.GetPalette(s); !ok {
		return fmt.Errorf("unknown theme %q, available: %s", s, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func isDuplicatePolicy(s string) error {
	switch s {
	case PolicyDelete, PolicyQuarantine:
		return nil
	default:
		return fmt.Errorf("must be %q or %q, got %q", PolicyDelete, PolicyQuarantine, s)
	}
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// gitExecutableExists validates that the git path is executable.
func gitExecutableExists(path string) error {
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

func isDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // created on first write
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
