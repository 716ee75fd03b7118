// Package catalog loads the entity catalog: the named, documented units
// (callables and parameterized models) a batch run converts.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ahelpgen/internal/faults"
)

// Kind tags the two entity flavors.
type Kind string

const (
	Callable           Kind = "callable"
	ParameterizedModel Kind = "parameterized-model"
)

// Param is one entry of an entity's ordered signature.
type Param struct {
	Name    string `yaml:"name"`
	Default string `yaml:"default,omitempty"`
	Kind    string `yaml:"kind,omitempty"` // "required" (default) or "optional"
}

// Entity describes one documented unit. The Doc field is the raw markup
// source; the parsed tree is owned exclusively by the conversion run for
// that entity and never mutated after parse.
type Entity struct {
	Name      string  `yaml:"name"`
	Kind      Kind    `yaml:"kind"`
	Signature []Param `yaml:"signature,omitempty"`
	Doc       string  `yaml:"doc"`
}

// ParamNames returns the signature parameter names in order.
func (e *Entity) ParamNames() []string {
	out := make([]string, 0, len(e.Signature))
	for _, p := range e.Signature {
		out = append(out, p.Name)
	}
	return out
}

// SyntaxLine renders the signature for the SYNTAX block. Parameterized
// models have no call syntax; their line is the bare lower-case name.
func (e *Entity) SyntaxLine() string {
	if e.Kind == ParameterizedModel {
		return strings.ToLower(e.Name)
	}
	var sb strings.Builder
	sb.WriteString(e.Name)
	sb.WriteString("(")
	for i, p := range e.Signature {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		if p.Default != "" {
			sb.WriteString("=")
			sb.WriteString(p.Default)
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// Validate checks one entity for catalog-level problems.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return faults.New(faults.CategoryCatalog, faults.SeverityFatal, "entity without a name")
	}
	switch e.Kind {
	case Callable, ParameterizedModel:
	case "":
		return faults.New(faults.CategoryCatalog, faults.SeverityFatal, "entity %q has no kind", e.Name)
	default:
		return faults.New(faults.CategoryCatalog, faults.SeverityFatal, "entity %q has unknown kind %q", e.Name, e.Kind)
	}
	seen := make(map[string]bool, len(e.Signature))
	for _, p := range e.Signature {
		if p.Name == "" {
			return faults.New(faults.CategoryCatalog, faults.SeverityFatal, "entity %q has an unnamed parameter", e.Name)
		}
		if seen[p.Name] {
			return faults.New(faults.CategoryCatalog, faults.SeverityFatal, "entity %q repeats parameter %q", e.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Catalog is the loaded entity set for one batch run.
type Catalog struct {
	entities map[string]*Entity
}

// catalogFile is the on-disk shape: a file holds one or more entities.
type catalogFile struct {
	Entities []*Entity `yaml:"entities"`
}

// Load reads entities from a YAML file or from every *.yaml / *.yml file in
// a directory.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, faults.Wrap(err, faults.CategoryCatalog, faults.SeverityFatal, "cannot read catalog path")
	}

	cat := &Catalog{entities: make(map[string]*Entity)}
	if !info.IsDir() {
		if err := cat.loadFile(path); err != nil {
			return nil, err
		}
		return cat, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, faults.Wrap(err, faults.CategoryCatalog, faults.SeverityFatal, "cannot list catalog directory")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := cat.loadFile(filepath.Join(path, entry.Name())); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied catalog path
	if err != nil {
		return faults.Wrap(err, faults.CategoryCatalog, faults.SeverityFatal, "cannot read catalog file")
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return faults.Wrap(err, faults.CategoryCatalog, faults.SeverityFatal,
			fmt.Sprintf("cannot parse catalog file %s", path))
	}
	for _, ent := range file.Entities {
		if err := ent.Validate(); err != nil {
			return faults.Wrap(err, faults.CategoryCatalog, faults.SeverityFatal,
				fmt.Sprintf("invalid entity in %s", path))
		}
		if _, dup := c.entities[ent.Name]; dup {
			return faults.New(faults.CategoryCatalog, faults.SeverityFatal,
				"entity %q defined more than once", ent.Name)
		}
		c.entities[ent.Name] = ent
	}
	return nil
}

// New builds a catalog from in-memory entities. Used by tests and by the
// check command.
func New(entities ...*Entity) (*Catalog, error) {
	cat := &Catalog{entities: make(map[string]*Entity, len(entities))}
	for _, ent := range entities {
		if err := ent.Validate(); err != nil {
			return nil, err
		}
		if _, dup := cat.entities[ent.Name]; dup {
			return nil, faults.New(faults.CategoryCatalog, faults.SeverityFatal,
				"entity %q defined more than once", ent.Name)
		}
		cat.entities[ent.Name] = ent
	}
	return cat, nil
}

// Len returns the number of entities.
func (c *Catalog) Len() int { return len(c.entities) }

// Get returns the named entity, or nil.
func (c *Catalog) Get(name string) *Entity { return c.entities[name] }

// Sorted returns all entities ordered by name, so batch runs are
// deterministic.
func (c *Catalog) Sorted() []*Entity {
	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Entity, 0, len(names))
	for _, name := range names {
		out = append(out, c.entities[name])
	}
	return out
}
