// Package metadata provides the read-only per-entity auxiliary facts a batch
// run consults: known cross-reference keys from the published help corpus,
// release labels, and skip/synonym/rename rules.
//
// The index is loaded once at batch start and never mutated afterwards, so
// concurrent reads need no locking.
package metadata

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rules are the curated, operator-maintained conversion rules.
type Rules struct {
	// Skip lists entity names excluded from conversion entirely.
	Skip []string `yaml:"skip,omitempty"`
	// SkipPrefixes excludes every entity whose name starts with a prefix.
	SkipPrefixes []string `yaml:"skip_prefixes,omitempty"`
	// Synonyms maps a synonym entity onto the entity it aliases. Synonyms
	// are skipped; the aliased entity's document mentions them.
	Synonyms map[string]string `yaml:"synonyms,omitempty"`
	// Renames maps an entity name onto a different output file key.
	Renames map[string]string `yaml:"renames,omitempty"`
	// Releases maps source version prefixes onto release labels
	// (e.g. "4.16" -> "CIAO 4.17").
	Releases map[string]string `yaml:"releases,omitempty"`
	// Labels carries per-entity release labels for LASTMODIFIED.
	Labels map[string]string `yaml:"labels,omitempty"`
}

// ResolvedKey is a cross-reference key found in the published corpus.
type ResolvedKey struct {
	Key         string
	Context     string
	Refkeywords string
}

// Index is the process-wide metadata lookup.
type Index struct {
	rules     Rules
	crossrefs map[string]ResolvedKey
	originals map[string][]string // entity -> its synonyms
}

// NewStatic builds an index from in-memory cross-reference keys.
func NewStatic(keys []ResolvedKey, rules Rules) *Index {
	ix := &Index{
		rules:     rules,
		crossrefs: make(map[string]ResolvedKey, len(keys)),
	}
	for _, k := range keys {
		ix.crossrefs[normalizeKey(k.Key)] = k
	}
	ix.buildSynonymReverse()
	return ix
}

func (ix *Index) buildSynonymReverse() {
	ix.originals = make(map[string][]string)
	syns := make([]string, 0, len(ix.rules.Synonyms))
	for syn := range ix.rules.Synonyms {
		syns = append(syns, syn)
	}
	sort.Strings(syns)
	for _, syn := range syns {
		orig := ix.rules.Synonyms[syn]
		ix.originals[orig] = append(ix.originals[orig], syn)
	}
}

// normalizeKey folds a cross-reference key the way the published corpus
// stores them: NFC-normalized, lower case, surrounding space dropped.
func normalizeKey(key string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(key)))
}

// Resolve looks a cross-reference key up in the published corpus.
func (ix *Index) Resolve(key string) (ResolvedKey, bool) {
	k, ok := ix.crossrefs[normalizeKey(key)]
	return k, ok
}

// VersionLabel returns the release label to embed for an entity, when the
// rules carry one.
func (ix *Index) VersionLabel(entity string) (string, bool) {
	label, ok := ix.rules.Labels[entity]
	return label, ok
}

// MapVersion converts a source version tag into a release label via the
// release table (longest matching prefix wins). Unmapped versions are
// returned unchanged so the note still names something meaningful.
func (ix *Index) MapVersion(version string) string {
	best := ""
	label := ""
	for prefix, l := range ix.rules.Releases {
		if strings.HasPrefix(version, prefix) && len(prefix) > len(best) {
			best = prefix
			label = l
		}
	}
	if best == "" {
		return version
	}
	return label
}

// IsSkipped reports whether an entity matches a skip rule, with a
// human-readable reason. Skips short-circuit the whole pipeline for that
// entity and are never silent.
func (ix *Index) IsSkipped(entity string) (bool, string) {
	if strings.HasPrefix(entity, "_") {
		return true, "private name"
	}
	for _, name := range ix.rules.Skip {
		if name == entity {
			return true, "matches the exclusion list"
		}
	}
	for _, prefix := range ix.rules.SkipPrefixes {
		if prefix != "" && strings.HasPrefix(entity, prefix) {
			return true, fmt.Sprintf("matches excluded prefix %q", prefix)
		}
	}
	if orig, ok := ix.rules.Synonyms[entity]; ok {
		return true, fmt.Sprintf("synonym for %s", orig)
	}
	return false, ""
}

// SynonymsOf returns the synonyms that alias the given entity, sorted.
func (ix *Index) SynonymsOf(entity string) []string {
	return ix.originals[entity]
}

// OutputKey returns the output file key for an entity, honoring renames.
func (ix *Index) OutputKey(entity string) string {
	if out, ok := ix.rules.Renames[entity]; ok {
		return out
	}
	return entity
}
