package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ahelpgen/internal/ahelp"
	"git.home.luguber.info/inful/ahelpgen/internal/assemble"
	"git.home.luguber.info/inful/ahelpgen/internal/catalog"
	"git.home.luguber.info/inful/ahelpgen/internal/config"
	"git.home.luguber.info/inful/ahelpgen/internal/metadata"
	"git.home.luguber.info/inful/ahelpgen/internal/metrics"
	"git.home.luguber.info/inful/ahelpgen/internal/runner"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" help:"Convert the entity catalog into help documents"`
	Check   CheckCmd   `cmd:"" help:"Convert a single entity and print sections and XML for review"`
	List    ListCmd    `cmd:"" help:"List catalog entities and how a run would treat them"`
	Watch   WatchCmd   `cmd:"" help:"Watch the catalog and reconvert on change"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// run bundles everything a conversion needs. The cleanup closes the
// cross-reference store when one is open.
type run struct {
	cfg     *config.Config
	runner  *runner.Runner
	cleanup func()
}

// setup loads the configuration and wires the batch collaborators.
func setup(ctx context.Context, cfgPath string, rec metrics.Recorder) (*run, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	var store *metadata.Store
	var keys []metadata.ResolvedKey
	cleanup := func() {}
	if cfg.Metadata.Database != "" {
		store, err = metadata.OpenStore(cfg.Metadata.Database)
		if err != nil {
			return nil, err
		}
		cleanup = func() { _ = store.Close() }
		keys, err = store.Keys(ctx)
		if err != nil {
			cleanup()
			return nil, err
		}
	}
	index := metadata.NewStatic(keys, rules)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		cleanup()
		return nil, err
	}

	asm := assemble.New(index)
	asm.Pkg = cfg.Document.Pkg
	asm.Context = cfg.Document.Context
	asm.ModelsGroup = cfg.Document.ModelsGroup

	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	return &run{
		cfg: cfg,
		runner: &runner.Runner{
			Catalog:   cat,
			Index:     index,
			Assembler: asm,
			Renderer:  ahelp.Renderer{DTD: ahelp.DTD(cfg.Output.DTD)},
			OutDir:    cfg.Output.Directory,
			Store:     store,
			Recorder:  rec,
		},
		cleanup: cleanup,
	}, nil
}
