package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/ahelpgen/internal/observability"
)

// ConvertCmd implements the 'convert' command: the full batch run.
type ConvertCmd struct {
	Output string   `short:"o" help:"Output directory (overrides config)"`
	Only   []string `help:"Restrict the run to the named entities"`
}

// Run executes the convert command.
func (cmd *ConvertCmd) Run(_ *Global, root *CLI) error {
	ctx := observability.WithRunID(context.Background(), observability.NewRunID())

	r, err := setup(ctx, root.Config, nil)
	if err != nil {
		return err
	}
	defer r.cleanup()

	if cmd.Output != "" {
		r.runner.OutDir = cmd.Output
	}
	r.runner.Restrict = cmd.Only

	slog.Info("starting conversion",
		"entities", r.runner.Catalog.Len(),
		"output", r.runner.OutDir,
		"dtd", string(r.runner.Renderer.DTD))

	summary, err := r.runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(summary.String())
	return nil
}
