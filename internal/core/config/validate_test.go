package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RepoDir = t.TempDir()
	return &cfg
}

func fieldErrors(t *testing.T, err error) criterio.FieldErrors {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	return fieldErrs
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_EmptyRequired(t *testing.T) {
	cfg := validConfig(t)
	cfg.MainBranch = ""

	fieldErrs := fieldErrors(t, cfg.Validate())
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "main_branch", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "cannot be empty")
}

func TestValidate_BranchTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  string
	}{
		{name: "default", template: "ticket/{{ .Name }}"},
		{name: "uses type after name", template: "t/{{ .Name }}{{ if false }}{{ .Type }}{{ end }}"},
		{name: "syntax error", template: "ticket/{{ .Name }", wantErr: "template error"},
		{name: "unknown field", template: "ticket/{{ .Owner }}", wantErr: "template error"},
		{name: "no static prefix", template: "{{ .Type }}/{{ .Name }}", wantErr: "static prefix"},
		{name: "suffix after name", template: "ticket/{{ .Name }}-wip", wantErr: "must render as"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.BranchTemplate = tt.template

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			fieldErrs := fieldErrors(t, err)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, "branch_template", fieldErrs[0].Field)
			assert.Contains(t, fieldErrs[0].Err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Lifecycle(t *testing.T) {
	cfg := validConfig(t)
	negative := -1
	cfg.Lifecycle.StashThreshold = &negative
	cfg.Lifecycle.WipMessageTemplate = "WIP {{ .Ticket }}"
	cfg.Git.RetryMaxElapsed = -1

	fieldErrs := fieldErrors(t, cfg.Validate())
	require.Len(t, fieldErrs, 3)

	var fields []string
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{
		"git.retry_max_elapsed",
		"lifecycle.stash_threshold",
		"lifecycle.wip_message_template",
	}, fields)
}

func TestValidate_DuplicatePolicy(t *testing.T) {
	cfg := validConfig(t)
	cfg.Integrity.DuplicatePolicy = "keep-all"

	fieldErrs := fieldErrors(t, cfg.Validate())
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "integrity.duplicate_policy", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "keep-all")
}

func TestValidate_Theme(t *testing.T) {
	cfg := validConfig(t)
	cfg.Theme = "solarized"

	fieldErrs := fieldErrors(t, cfg.Validate())
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "theme", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "catppuccin, gruvbox, tokyo-night")
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(t).ValidateDeep(""))
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	dir := t.TempDir()

	fieldErrs := fieldErrors(t, validConfig(t).ValidateDeep(dir))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "is a directory")
}

func TestValidateDeep_MissingGit(t *testing.T) {
	cfg := validConfig(t)
	cfg.GitPath = "/definitely/not/git"

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "git_path", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "executable not found")
}

func TestValidateDeep_TicketsDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(cfg.RepoDir, "tickets")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "tickets_dir", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "not a directory")
}
