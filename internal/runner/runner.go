// Package runner drives a batch conversion: catalog in, help documents out,
// one entity at a time.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/ahelpgen/internal/ahelp"
	"git.home.luguber.info/inful/ahelpgen/internal/assemble"
	"git.home.luguber.info/inful/ahelpgen/internal/catalog"
	"git.home.luguber.info/inful/ahelpgen/internal/diag"
	"git.home.luguber.info/inful/ahelpgen/internal/faults"
	"git.home.luguber.info/inful/ahelpgen/internal/logfields"
	"git.home.luguber.info/inful/ahelpgen/internal/markup"
	"git.home.luguber.info/inful/ahelpgen/internal/metadata"
	"git.home.luguber.info/inful/ahelpgen/internal/metrics"
	"git.home.luguber.info/inful/ahelpgen/internal/observability"
	"git.home.luguber.info/inful/ahelpgen/internal/sections"
)

// Runner holds the shared, read-only collaborators of one batch run.
type Runner struct {
	Catalog   *catalog.Catalog
	Index     *metadata.Index
	Assembler *assemble.Assembler
	Renderer  ahelp.Renderer
	OutDir    string

	// Store, when set, records each produced key so later runs can
	// resolve cross-references against this one.
	Store *metadata.Store

	// Restrict limits the run to the named entities. Empty means all.
	Restrict []string

	Recorder metrics.Recorder
}

// Summary is the run-level outcome. Errored preserves encounter order so
// operators can triage incrementally.
type Summary struct {
	Processed int
	Skipped   int
	Errored   []string
}

// String renders the operator-facing closing lines.
func (s *Summary) String() string {
	out := fmt.Sprintf("Processed %d files, skipped %d.", s.Processed, s.Skipped)
	if len(s.Errored) > 0 {
		out += fmt.Sprintf("\nErrored out: [%s]", strings.Join(s.Errored, ", "))
	}
	return out
}

// Result is the outcome of converting a single entity.
type Result struct {
	Document    *assemble.HelpDocument
	Data        []byte
	Diagnostics *diag.List
}

// Convert runs the full pipeline for one entity: parse, normalize and
// classify, assemble, render. No I/O.
func (r *Runner) Convert(ent *catalog.Entity) (*Result, error) {
	source := []byte(ent.Doc)
	root := markup.Parse(source)
	diags := &diag.List{}

	cls, err := sections.Classify(root, source, ent.ParamNames(), diags)
	if err != nil {
		return nil, err
	}

	doc := r.Assembler.Build(ent, cls, diags)
	data := r.Renderer.Render(doc)
	return &Result{Document: doc, Data: data, Diagnostics: diags}, nil
}

// Run processes the catalog in name order. A per-entity fatal error is
// recorded and the run continues; the batch never aborts because of one
// entity.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	rec := r.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return nil, faults.Wrap(err, faults.CategoryStorage, faults.SeverityFatal, "cannot create output directory")
	}

	restrict := make(map[string]bool, len(r.Restrict))
	for _, name := range r.Restrict {
		restrict[name] = true
	}

	summary := &Summary{}
	var functions, models []ahelp.IndexEntry

	for _, ent := range r.Catalog.Sorted() {
		if len(restrict) > 0 && !restrict[ent.Name] {
			continue
		}
		ectx := observability.WithEntity(ctx, ent.Name)
		logger := observability.Logger(ectx)

		if skipped, reason := r.Index.IsSkipped(ent.Name); skipped {
			logger.Info(fmt.Sprintf("%s - skipping as %s", ent.Name, reason))
			summary.Skipped++
			rec.IncEntity(metrics.OutcomeSkipped)
			continue
		}

		res, err := r.Convert(ent)
		if err != nil {
			observability.ErrorContext(ectx, fmt.Sprintf("%s - %v", ent.Name, err), logfields.Kind(string(ent.Kind)))
			summary.Errored = append(summary.Errored, ent.Name)
			rec.IncEntity(metrics.OutcomeErrored)
			continue
		}

		res.Diagnostics.Emit(logger, ent.Name)
		for _, d := range res.Diagnostics.Items() {
			rec.IncDiagnostic(d.Severity.String())
		}

		if err := r.write(ectx, res); err != nil {
			observability.ErrorContext(ectx, fmt.Sprintf("%s - %v", ent.Name, err), logfields.Key(res.Document.Key))
			summary.Errored = append(summary.Errored, ent.Name)
			rec.IncEntity(metrics.OutcomeErrored)
			continue
		}

		summary.Processed++
		rec.IncEntity(metrics.OutcomeProcessed)
		rec.IncDocumentWritten()

		entry := ahelp.IndexEntry{Name: ent.Name, Synopsis: res.Document.Synopsis}
		if ent.Kind == catalog.ParameterizedModel {
			models = append(models, entry)
		} else {
			functions = append(functions, entry)
		}
	}

	if err := r.writeIndexPages(functions, models); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	rec.ObserveRunDuration(elapsed)
	observability.InfoContext(ctx, "run complete",
		logfields.DurationMS(float64(elapsed.Milliseconds())),
		logfields.Outcome(fmt.Sprintf("processed=%d skipped=%d errored=%d",
			summary.Processed, summary.Skipped, len(summary.Errored))))
	return summary, nil
}

func (r *Runner) write(ctx context.Context, res *Result) error {
	doc := res.Document
	path := filepath.Join(r.OutDir, doc.Key+r.Renderer.DTD.Ext())
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return faults.Wrap(err, faults.CategoryStorage, faults.SeverityFatal, "cannot write document")
	}
	if r.Store != nil {
		key := metadata.ResolvedKey{
			Key:         doc.Key,
			Context:     doc.Context,
			Refkeywords: strings.Join(doc.Refkeywords, " "),
		}
		if err := r.Store.Record(ctx, key); err != nil {
			return faults.Wrap(err, faults.CategoryStorage, faults.SeverityFatal, "cannot record crossref key")
		}
	}
	return nil
}

// writeIndexPages produces the two corpus-wide summary documents.
func (r *Runner) writeIndexPages(functions, models []ahelp.IndexEntry) error {
	pages := []ahelp.IndexPage{
		{
			Key:      "functions",
			Title:    "The following functions are available:",
			Synopsis: "Summary of the available functions",
			Context:  "functions",
			Pkg:      r.Assembler.Pkg,
			Entries:  functions,
		},
		{
			Key:      "models",
			Title:    "The following models are available:",
			Synopsis: "Summary of the available models",
			Context:  "models",
			Pkg:      r.Assembler.Pkg,
			Entries:  models,
		},
	}
	for _, page := range pages {
		data := r.Renderer.RenderIndex(page)
		path := filepath.Join(r.OutDir, page.Key+r.Renderer.DTD.Ext())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return faults.Wrap(err, faults.CategoryStorage, faults.SeverityFatal, "cannot write index page")
		}
	}
	return nil
}
