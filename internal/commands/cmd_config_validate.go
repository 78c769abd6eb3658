package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tkt/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tkt config validate [options]",
				Description: "Validates the configuration file, checking templates, the git executable, and directories.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	var problems []validationError
	if err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		var fields criterio.FieldErrors
		if !errors.As(err, &fields) {
			return err
		}
		for _, fe := range fields {
			problems = append(problems, validationError{Field: fe.Field, Message: fe.Err.Error()})
		}
	}

	if cmd.format == "json" {
		out := struct {
			Valid  bool              `json:"valid"`
			Errors []validationError `json:"errors,omitempty"`
		}{
			Valid:  len(problems) == 0,
			Errors: problems,
		}
		if err := writeJSON(c.Root().Writer, out); err != nil {
			return err
		}
		if len(problems) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	for _, pr := range problems {
		p.Errorf("%s: %s", pr.Field, pr.Message)
	}

	if len(problems) == 0 {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s) found", len(problems))
	return cli.Exit("", 1)
}
