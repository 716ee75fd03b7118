package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/ahelpgen/internal/observability"
)

// CheckCmd implements the 'check' command: convert one entity and print
// everything an author needs to review the result. Skip rules are ignored
// so excluded entities can still be inspected.
type CheckCmd struct {
	Name string `arg:"" help:"Entity to convert"`
}

// Run executes the check command.
func (cmd *CheckCmd) Run(_ *Global, root *CLI) error {
	ctx := observability.WithRunID(context.Background(), observability.NewRunID())

	r, err := setup(ctx, root.Config, nil)
	if err != nil {
		return err
	}
	defer r.cleanup()

	ent := r.runner.Catalog.Get(cmd.Name)
	if ent == nil {
		return fmt.Errorf("entity %q not in the catalog", cmd.Name)
	}

	res, err := r.runner.Convert(ent)
	if err != nil {
		return err
	}

	doc := res.Document
	fmt.Printf("## %s (%s)\n", doc.Name, doc.Kind)
	fmt.Printf("synopsis:    %s\n", doc.Synopsis)
	fmt.Printf("syntax:      %s\n", doc.SyntaxLine)
	fmt.Printf("refkeywords: %v\n", doc.Refkeywords)
	fmt.Printf("see also:    %v\n", doc.SeeAlso)
	if len(doc.Undocumented) > 0 {
		fmt.Printf("undocumented: %v\n", doc.Undocumented)
	}
	if doc.ReleaseLabel != "" {
		fmt.Printf("release:     %s\n", doc.ReleaseLabel)
	}
	fmt.Println()

	for _, d := range res.Diagnostics.Items() {
		fmt.Fprintf(os.Stderr, "%s - %s: %s\n", doc.Name, d.Severity, d.Message)
	}

	fmt.Print(string(res.Data))
	return nil
}
