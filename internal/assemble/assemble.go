// Package assemble combines an entity descriptor, its classified sections,
// and metadata index facts into a complete help document.
package assemble

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/ahelpgen/internal/catalog"
	"git.home.luguber.info/inful/ahelpgen/internal/diag"
	"git.home.luguber.info/inful/ahelpgen/internal/markup"
	"git.home.luguber.info/inful/ahelpgen/internal/metadata"
	"git.home.luguber.info/inful/ahelpgen/internal/sections"
)

// HelpDocument is the per-entity output object handed to the serializer.
// Created once, serialized once, then discarded.
type HelpDocument struct {
	Name string
	Kind catalog.Kind

	// Key is the output file key. Usually the entity name; rename rules
	// may change it.
	Key     string
	Context string
	Pkg     string

	Synopsis    string
	SyntaxLine  string
	Refkeywords []string

	Desc []markup.Block

	Params    []sections.ParamDoc
	ParamsTag sections.Tag
	// Returns describes the return value when documented alongside the
	// parameters. Not matched against the signature.
	Returns []sections.ParamDoc
	// Undocumented lists signature parameters with no matching entry.
	Undocumented []string

	Examples []markup.Block
	Bugs     []markup.Block

	// SeeAlso holds the resolved keys in source order; Groups the derived
	// seealsogroups attribute tokens; DisplayGroups the extra display-only
	// grouping for models.
	SeeAlso       []string
	Groups        []string
	DisplayGroups string

	// VersionNotes carries the version admonitions pulled out of the
	// description, changed entries before added ones.
	VersionNotes []markup.Admonition
	// ReleaseLabel is the release to stamp into LASTMODIFIED, when known.
	ReleaseLabel string
}

// Assembler builds help documents for one batch run. It holds only
// read-only state and is safe to share.
type Assembler struct {
	Index *metadata.Index

	// Pkg and Context are the ENTRY attributes for callables. Models
	// always use the models context.
	Pkg     string
	Context string
	// ModelsGroup is the display see-also group models join.
	ModelsGroup string
}

// New returns an assembler with the customary attribute defaults.
func New(index *metadata.Index) *Assembler {
	return &Assembler{
		Index:       index,
		Pkg:         "sherpa",
		Context:     "sherpaish",
		ModelsGroup: "shmodels",
	}
}

// Build produces the help document for one entity. Only normalizer shape
// errors reach here as errors; everything recoverable becomes a diagnostic.
func (a *Assembler) Build(ent *catalog.Entity, cls *sections.Classified, diags *diag.List) *HelpDocument {
	doc := &HelpDocument{
		Name:       ent.Name,
		Kind:       ent.Kind,
		Key:        a.Index.OutputKey(ent.Name),
		Pkg:        a.Pkg,
		Context:    a.Context,
		Synopsis:   cls.Synopsis,
		SyntaxLine: ent.SyntaxLine(),
		Params:     cls.Params,
		ParamsTag:  cls.ParamsTag,
		Returns:    cls.Returns,
		Examples:   cls.Examples,
		Bugs:       cls.Bugs,
	}
	if ent.Kind == catalog.ParameterizedModel {
		doc.Context = "models"
		doc.DisplayGroups = a.ModelsGroup
	}

	doc.Desc = a.liftVersionNotes(cls.Desc, doc)
	a.applySynonyms(ent, doc)
	a.resolveSeeAlso(ent, cls, doc, diags)
	doc.Refkeywords = a.refkeywords(ent, cls, doc)
	a.flagUndocumented(ent, cls, doc, diags)

	if len(doc.Desc) == 0 {
		diags.Add(diag.Note, "empty description")
	}
	if label, ok := a.Index.VersionLabel(ent.Name); ok {
		doc.ReleaseLabel = label
	}

	return doc
}

// liftVersionNotes pulls version admonitions out of the description into the
// document's version-notes block, changed entries ahead of added ones, and
// maps their version tags through the release table. The highest mapped
// release also becomes the document's release label when the index carries
// no explicit one.
func (a *Assembler) liftVersionNotes(desc []markup.Block, doc *HelpDocument) []markup.Block {
	var kept []markup.Block
	var changed, added []markup.Admonition
	for _, b := range desc {
		adm, ok := b.(markup.Admonition)
		if !ok {
			kept = append(kept, b)
			continue
		}
		switch adm.Kind {
		case markup.VersionChanged:
			changed = append(changed, adm)
		case markup.VersionAdded:
			added = append(added, adm)
		default:
			kept = append(kept, adm)
		}
	}

	// Latest change first, ending with the version-added note. Source tags
	// are compared numerically ("4.9" predates "4.16"), then mapped onto
	// release labels.
	sort.SliceStable(changed, func(i, j int) bool { return versionLess(changed[j].Version, changed[i].Version) })
	notes := append(changed, added...)
	for i := range notes {
		notes[i].Version = a.Index.MapVersion(notes[i].Version)
	}
	doc.VersionNotes = notes
	if len(notes) > 0 {
		doc.ReleaseLabel = notes[0].Version
	}
	return kept
}

// versionLess orders dotted version tags component-wise, numerically where
// both components parse as integers.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				return an < bn
			}
			continue
		}
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

// applySynonyms prepends the alias note for entities that other names point
// at, and lets the synonyms join the reference keywords.
func (a *Assembler) applySynonyms(ent *catalog.Entity, doc *HelpDocument) {
	syns := a.Index.SynonymsOf(ent.Name)
	if len(syns) == 0 {
		return
	}
	noun := "function"
	if ent.Kind == catalog.ParameterizedModel {
		noun = "model"
	}
	note := markup.Paragraph{Spans: []markup.Inline{
		markup.Text{Value: fmt.Sprintf("The %s is also called %s().", noun, syns[0])},
	}}
	doc.Desc = append([]markup.Block{note}, doc.Desc...)
}

// resolveSeeAlso maps the raw see-also tokens through the metadata index.
// Unresolved tokens are dropped with a diagnostic; the run continues.
func (a *Assembler) resolveSeeAlso(ent *catalog.Entity, cls *sections.Classified, doc *HelpDocument, diags *diag.List) {
	seen := make(map[string]bool, len(cls.SeeAlsoTokens))
	for _, tok := range cls.SeeAlsoTokens {
		if tok == ent.Name {
			continue
		}
		resolved, ok := a.Index.Resolve(tok)
		if !ok {
			diags.Add(diag.Info, "unable to find ahelp for %s", tok)
			continue
		}
		if seen[resolved.Key] {
			continue
		}
		seen[resolved.Key] = true
		doc.SeeAlso = append(doc.SeeAlso, resolved.Key)
	}
	doc.Groups = seeAlsoGroups(ent.Name, doc.SeeAlso)
}

// seeAlsoGroups derives the pairwise grouping tokens the viewer uses to tie
// two documents together: for each related key, the lower-cased names are
// concatenated in lexicographic order, and the pairs sorted.
func seeAlsoGroups(name string, seeAlso []string) []string {
	if len(seeAlso) == 0 {
		return nil
	}
	nlower := strings.ToLower(name)
	pairs := make([]string, 0, len(seeAlso))
	for _, s := range seeAlso {
		slower := strings.ToLower(s)
		if nlower < slower {
			pairs = append(pairs, nlower+slower)
		} else {
			pairs = append(pairs, slower+nlower)
		}
	}
	sort.Strings(pairs)
	return pairs
}

// refkeywords merges the synopsis words, the underscore-split fragments of
// the entity name, any synonyms, and index-provided keywords into one
// sorted, deduplicated list.
func (a *Assembler) refkeywords(ent *catalog.Entity, cls *sections.Classified, doc *HelpDocument) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(word string) {
		word = strings.TrimSpace(strings.ToLower(word))
		if word == "" || word == ent.Name || seen[word] {
			return
		}
		seen[word] = true
		out = append(out, word)
	}

	for _, w := range cls.Refkeywords {
		add(w)
	}
	if strings.Contains(ent.Name, "_") {
		for _, frag := range strings.Split(ent.Name, "_") {
			add(frag)
		}
	}
	for _, syn := range a.Index.SynonymsOf(ent.Name) {
		add(syn)
	}
	if resolved, ok := a.Index.Resolve(ent.Name); ok && resolved.Refkeywords != "" {
		for _, w := range strings.Fields(resolved.Refkeywords) {
			add(w)
		}
	}

	sort.Strings(out)
	return out
}

// flagUndocumented records the signature parameters the documentation never
// mentions. The document is still produced.
func (a *Assembler) flagUndocumented(ent *catalog.Entity, cls *sections.Classified, doc *HelpDocument, diags *diag.List) {
	if len(ent.Signature) == 0 {
		return
	}
	documented := make(map[string]bool, len(cls.Params))
	for _, p := range cls.Params {
		documented[p.Name] = true
	}
	for _, name := range ent.ParamNames() {
		if !documented[name] {
			doc.Undocumented = append(doc.Undocumented, name)
			diags.Add(diag.Note, "undocumented parameter: %s", name)
		}
	}
}
