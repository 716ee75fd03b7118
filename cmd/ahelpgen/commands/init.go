package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/ahelpgen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

// Run executes the init command.
func (cmd *InitCmd) Run(_ *Global, root *CLI) error {
	slog.Info("initializing configuration", "path", root.Config, "force", cmd.Force)
	return config.Init(root.Config, cmd.Force)
}
