// Package markup normalizes a parsed markup tree into typed content blocks.
//
// The markup parser itself is external (goldmark); this package owns the
// closed set of block variants the help-document schema can express, and the
// normalizer that maps arbitrary markup nodes onto them. Shapes the schema
// cannot hold fail with a MalformedBlockError instead of being coerced.
package markup

import "strings"

// Block is one normalized, schema-renderable unit of content.
//
// The variant set is closed: the normalizer and the renderer both switch
// exhaustively over it, so adding a variant forces both sites to be updated.
type Block interface {
	isBlock()
	// BlockKind names the variant for diagnostics.
	BlockKind() string
}

// Paragraph is a run of inline spans.
type Paragraph struct {
	Spans []Inline
}

// List is a bullet or enumerated list. Items preserve source order.
type List struct {
	Ordered bool
	Items   [][]Block
}

// Definition is one term/definition pair of a DefinitionList.
type Definition struct {
	Term string
	Body []Block
}

// DefinitionList is an ordered sequence of term/definition pairs.
type DefinitionList struct {
	Items []Definition
}

// Field is one named entry of a FieldList.
type Field struct {
	Name string
	Body []Block
}

// FieldList maps names to block sequences, insertion order preserved.
// Parameter and attribute documentation is carried this way.
type FieldList struct {
	Fields []Field
}

// Literal is preformatted text with an optional language hint.
type Literal struct {
	Text     string
	Language string
}

// Row is one table row.
type Row struct {
	Cells [][]Block
}

// Table is an ordered sequence of rows of cells.
type Table struct {
	Rows []Row
}

// Math is a display-math expression.
type Math struct {
	Expr string
}

// AdmonitionKind distinguishes the admonition flavors we accept.
type AdmonitionKind string

const (
	VersionAdded   AdmonitionKind = "version-added"
	VersionChanged AdmonitionKind = "version-changed"
	NoteAdmonition AdmonitionKind = "note"
	WarnAdmonition AdmonitionKind = "warning"
)

// Admonition is a note, warning, or version-change callout.
// Version admonitions carry the source version tag and exactly one body
// paragraph; the normalizer enforces the shape.
type Admonition struct {
	Kind    AdmonitionKind
	Version string
	Title   string
	Body    []Block
}

// CrossRef is a standalone cross-reference to another entity's document.
// Display text is resolved at normalization time; the target key is resolved
// later by the assembler.
type CrossRef struct {
	Target  string
	Display string
}

func (Paragraph) isBlock()      {}
func (List) isBlock()           {}
func (DefinitionList) isBlock() {}
func (FieldList) isBlock()      {}
func (Literal) isBlock()        {}
func (Table) isBlock()          {}
func (Math) isBlock()           {}
func (Admonition) isBlock()     {}
func (CrossRef) isBlock()       {}

func (Paragraph) BlockKind() string      { return "paragraph" }
func (List) BlockKind() string           { return "list" }
func (DefinitionList) BlockKind() string { return "definition-list" }
func (FieldList) BlockKind() string      { return "field-list" }
func (Literal) BlockKind() string        { return "literal" }
func (Table) BlockKind() string          { return "table" }
func (Math) BlockKind() string           { return "math" }
func (Admonition) BlockKind() string     { return "admonition" }
func (CrossRef) BlockKind() string       { return "cross-reference" }

// PlainText renders a block sequence as plain text, markup dropped.
// Used for diagnostics and for schema slots that only take character data.
func PlainText(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(blockText(b))
	}
	return sb.String()
}

func blockText(b Block) string {
	switch v := b.(type) {
	case Paragraph:
		return SpansText(v.Spans)
	case List:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, PlainText(item))
		}
		return strings.Join(parts, "\n")
	case DefinitionList:
		parts := make([]string, 0, len(v.Items))
		for _, d := range v.Items {
			parts = append(parts, d.Term+": "+PlainText(d.Body))
		}
		return strings.Join(parts, "\n")
	case FieldList:
		parts := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			parts = append(parts, f.Name+": "+PlainText(f.Body))
		}
		return strings.Join(parts, "\n")
	case Literal:
		return v.Text
	case Table:
		parts := make([]string, 0, len(v.Rows))
		for _, r := range v.Rows {
			cells := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				cells = append(cells, PlainText(c))
			}
			parts = append(parts, strings.Join(cells, " | "))
		}
		return strings.Join(parts, "\n")
	case Math:
		return v.Expr
	case Admonition:
		return PlainText(v.Body)
	case CrossRef:
		return v.Display
	default:
		// Unreachable for the closed variant set.
		return ""
	}
}
