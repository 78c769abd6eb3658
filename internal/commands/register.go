package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/workflow"
)

// RegisterAll adds every tkt subcommand to root, in help order.
func RegisterAll(root *cli.Command, flags *Flags, app *workflow.App) *cli.Command {
	root = NewCreateCmd(flags, app).Register(root)
	root = NewPauseCmd(flags, app).Register(root)
	root = NewResumeCmd(flags, app).Register(root)
	root = NewCompleteCmd(flags, app).Register(root)
	root = NewAttachCmd(flags, app).Register(root)
	root = NewActiveCmd(flags, app).Register(root)
	root = NewListCmd(flags, app).Register(root)
	root = NewShowCmd(flags, app).Register(root)
	root = NewIntegrityCmd(flags, app).Register(root)
	root = NewGuardCmd(flags, app).Register(root)
	root = NewJournalCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	return root
}
