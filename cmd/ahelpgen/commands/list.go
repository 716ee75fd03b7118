package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/ahelpgen/internal/observability"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Skipped bool `help:"Show only entities a run would skip"`
}

// Run executes the list command.
func (cmd *ListCmd) Run(_ *Global, root *CLI) error {
	ctx := observability.WithRunID(context.Background(), observability.NewRunID())

	r, err := setup(ctx, root.Config, nil)
	if err != nil {
		return err
	}
	defer r.cleanup()

	for _, ent := range r.runner.Catalog.Sorted() {
		skipped, reason := r.runner.Index.IsSkipped(ent.Name)
		if cmd.Skipped && !skipped {
			continue
		}
		if skipped {
			fmt.Printf("%-30s %-20s skip: %s\n", ent.Name, ent.Kind, reason)
			continue
		}
		key := r.runner.Index.OutputKey(ent.Name)
		if key != ent.Name {
			fmt.Printf("%-30s %-20s -> %s\n", ent.Name, ent.Kind, key)
			continue
		}
		fmt.Printf("%-30s %-20s\n", ent.Name, ent.Kind)
	}
	return nil
}
