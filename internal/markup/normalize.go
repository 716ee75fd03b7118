package markup

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/ahelpgen/internal/diag"
	"git.home.luguber.info/inful/ahelpgen/internal/faults"
)

// Parse runs the external markup parser over a documentation body and
// returns the node tree the normalizer consumes.
func Parse(source []byte) gmast.Node {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.DefinitionList))
	return md.Parser().Parse(text.NewReader(source))
}

var admonitionMarker = regexp.MustCompile(`(?i)^(versionadded|versionchanged|note|warning):\s*(.*)$`)

// Normalizer converts markup nodes into Blocks. It never consults the
// metadata index: cross-reference targets are carried through unresolved.
type Normalizer struct {
	source []byte
	diags  *diag.List
}

// NewNormalizer builds a Normalizer over the markup source bytes.
// Diagnostics for lossy-but-safe conversions (list flattening) are appended
// to diags; unsafe shapes return a MalformedBlockError instead.
func NewNormalizer(source []byte, diags *diag.List) *Normalizer {
	return &Normalizer{source: source, diags: diags}
}

// Blocks normalizes every child of node in order.
func (n *Normalizer) Blocks(node gmast.Node) ([]Block, error) {
	var out []Block
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		blocks, err := n.Block(child)
		if err != nil {
			return nil, err
		}
		out = append(out, blocks...)
	}
	return out, nil
}

// Block normalizes one markup node into zero or more Blocks.
func (n *Normalizer) Block(node gmast.Node) ([]Block, error) {
	switch v := node.(type) {
	case *gmast.Paragraph:
		return n.paragraph(v)
	case *gmast.TextBlock:
		return n.paragraph(v)
	case *gmast.List:
		return n.list(v)
	case *gmast.FencedCodeBlock:
		lang := string(v.Language(n.source))
		body := n.blockLines(v)
		if lang == "math" {
			return []Block{Math{Expr: strings.TrimRight(body, "\n")}}, nil
		}
		return []Block{Literal{Text: strings.TrimRight(body, "\n"), Language: lang}}, nil
	case *gmast.CodeBlock:
		return []Block{Literal{Text: strings.TrimRight(n.blockLines(v), "\n")}}, nil
	case *gmast.Blockquote:
		return n.blockquote(v)
	case *extast.Table:
		return n.table(v)
	case *extast.DefinitionList:
		return n.definitionList(v)
	default:
		return nil, faults.Malformed(node.Kind().String(),
			"no rendering for this markup construct", NodeText(node, n.source))
	}
}

func (n *Normalizer) paragraph(node gmast.Node) ([]Block, error) {
	spans, err := n.inlines(node)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, nil
	}
	// A paragraph that is nothing but a single cross-reference stands alone.
	if ref, ok := soleCrossRef(spans); ok {
		return []Block{CrossRef{Target: ref.Target, Display: ref.Display}}, nil
	}
	return []Block{Paragraph{Spans: spans}}, nil
}

func soleCrossRef(spans []Inline) (CrossRefSpan, bool) {
	var found *CrossRefSpan
	for _, s := range spans {
		switch v := s.(type) {
		case CrossRefSpan:
			if found != nil {
				return CrossRefSpan{}, false
			}
			ref := v
			found = &ref
		case Text:
			if strings.TrimSpace(v.Value) != "" {
				return CrossRefSpan{}, false
			}
		default:
			return CrossRefSpan{}, false
		}
	}
	if found == nil {
		return CrossRefSpan{}, false
	}
	return *found, true
}

func (n *Normalizer) list(node *gmast.List) ([]Block, error) {
	out := List{Ordered: node.IsOrdered()}
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		blocks, err := n.Blocks(item)
		if err != nil {
			return nil, err
		}
		// The target schema has no nested lists: hoist inner list items one
		// level, in place, and note the loss of structure.
		var flat []Block
		var hoisted [][]Block
		for _, b := range blocks {
			if inner, ok := b.(List); ok {
				hoisted = append(hoisted, inner.Items...)
				continue
			}
			flat = append(flat, b)
		}
		out.Items = append(out.Items, flat)
		if len(hoisted) > 0 {
			n.diags.Add(diag.Note, "flattened nested list by one level (%d items)", len(hoisted))
			out.Items = append(out.Items, hoisted...)
		}
	}
	return []Block{out}, nil
}

// blockquote handles the admonition dialect plus the plain block-quote shapes
// the original corpus contains (quoted code, quoted lists, quoted text).
func (n *Normalizer) blockquote(node *gmast.Blockquote) ([]Block, error) {
	first := node.FirstChild()
	if first == nil {
		return nil, faults.Malformed("Blockquote", "empty block quote", "")
	}

	if para, ok := first.(*gmast.Paragraph); ok {
		spans, err := n.inlines(para)
		if err != nil {
			return nil, err
		}
		full := SpansText(spans)
		line, rest, _ := strings.Cut(full, "\n")
		if m := admonitionMarker.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return n.admonition(node, strings.ToLower(m[1]), m[2], rest)
		}
	}

	return n.plainBlockquote(node)
}

func (n *Normalizer) admonition(node *gmast.Blockquote, marker, arg, rest string) ([]Block, error) {
	rest = strings.TrimSpace(rest)

	switch marker {
	case "versionadded", "versionchanged":
		kind := VersionAdded
		if marker == "versionchanged" {
			kind = VersionChanged
		}
		version := strings.TrimSpace(arg)
		if version == "" {
			return nil, faults.Malformed("Blockquote",
				"version admonition is missing its version tag", NodeText(node, n.source))
		}
		// The schema has exactly one slot for a version note: a second
		// paragraph is a hard error, not something to guess around.
		if node.FirstChild().NextSibling() != nil {
			return nil, faults.Malformed("Blockquote",
				"version admonition must contain exactly one paragraph", NodeText(node, n.source))
		}
		var body []Block
		if rest != "" {
			body = []Block{Paragraph{Spans: []Inline{Text{Value: rest}}}}
		}
		return []Block{Admonition{Kind: kind, Version: version, Body: body}}, nil

	case "note", "warning":
		kind := NoteAdmonition
		if marker == "warning" {
			kind = WarnAdmonition
		}
		var paras []Block
		lead := strings.TrimSpace(arg + " " + rest)
		if lead != "" {
			paras = append(paras, Paragraph{Spans: []Inline{Text{Value: lead}}})
		}
		for child := node.FirstChild().NextSibling(); child != nil; child = child.NextSibling() {
			blocks, err := n.Block(child)
			if err != nil {
				return nil, err
			}
			for _, b := range blocks {
				if _, ok := b.(Paragraph); !ok {
					return nil, faults.Malformed("Blockquote",
						"only paragraphs are allowed inside a note or warning", NodeText(node, n.source))
				}
				paras = append(paras, b)
			}
		}
		switch len(paras) {
		case 0:
			return nil, faults.Malformed("Blockquote", "empty admonition", NodeText(node, n.source))
		case 1:
			return []Block{Admonition{Kind: kind, Body: paras}}, nil
		case 2:
			// Two paragraphs: the first is the callout title.
			return []Block{Admonition{Kind: kind, Title: PlainText(paras[:1]), Body: paras[1:]}}, nil
		default:
			return nil, faults.Malformed("Blockquote",
				"note or warning admonition holds at most two paragraphs", NodeText(node, n.source))
		}
	}

	return nil, faults.Malformed("Blockquote", "unrecognized admonition marker "+marker, NodeText(node, n.source))
}

func (n *Normalizer) plainBlockquote(node *gmast.Blockquote) ([]Block, error) {
	allCode := true
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		default:
			allCode = false
		}
	}
	if allCode {
		var parts []string
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			parts = append(parts, strings.TrimRight(n.blockLines(child), "\n"))
		}
		return []Block{Literal{Text: strings.Join(parts, "\n\n")}}, nil
	}

	first := node.FirstChild()
	if first.NextSibling() == nil {
		switch v := first.(type) {
		case *gmast.List:
			return n.list(v)
		case *gmast.Paragraph:
			spans, err := n.inlines(v)
			if err != nil {
				return nil, err
			}
			return []Block{Literal{Text: SpansText(spans)}}, nil
		}
	}

	return nil, faults.Malformed("Blockquote",
		"unexpected block quote contents", NodeText(node, n.source))
}

func (n *Normalizer) table(node *extast.Table) ([]Block, error) {
	out := Table{}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		switch row.(type) {
		case *extast.TableHeader, *extast.TableRow:
		default:
			return nil, faults.Malformed("Table", "unexpected table child "+row.Kind().String(),
				NodeText(node, n.source))
		}
		r := Row{}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if _, ok := cell.(*extast.TableCell); !ok {
				return nil, faults.Malformed("Table", "unexpected row child "+cell.Kind().String(),
					NodeText(node, n.source))
			}
			spans, err := n.inlines(cell)
			if err != nil {
				return nil, err
			}
			if len(spans) == 0 {
				r.Cells = append(r.Cells, nil)
				continue
			}
			r.Cells = append(r.Cells, []Block{Paragraph{Spans: spans}})
		}
		out.Rows = append(out.Rows, r)
	}
	return []Block{out}, nil
}

func (n *Normalizer) definitionList(node *extast.DefinitionList) ([]Block, error) {
	out := DefinitionList{}
	var term string
	haveTerm := false
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch v := child.(type) {
		case *extast.DefinitionTerm:
			term = strings.TrimSpace(NodeText(v, n.source))
			haveTerm = true
		case *extast.DefinitionDescription:
			if !haveTerm {
				return nil, faults.Malformed("DefinitionList",
					"definition without a preceding term", NodeText(node, n.source))
			}
			body, err := n.Blocks(v)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, Definition{Term: term, Body: body})
			haveTerm = false
		default:
			return nil, faults.Malformed("DefinitionList",
				"unexpected child "+child.Kind().String(), NodeText(node, n.source))
		}
	}
	return []Block{out}, nil
}

func (n *Normalizer) inlines(node gmast.Node) ([]Inline, error) {
	var out []Inline
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		spans, err := n.inline(child)
		if err != nil {
			return nil, err
		}
		out = append(out, spans...)
	}
	return out, nil
}

func (n *Normalizer) inline(node gmast.Node) ([]Inline, error) {
	switch v := node.(type) {
	case *gmast.Text:
		val := string(v.Segment.Value(n.source))
		if v.SoftLineBreak() || v.HardLineBreak() {
			val += "\n"
		}
		return []Inline{Text{Value: val}}, nil
	case *gmast.String:
		return []Inline{Text{Value: string(v.Value)}}, nil
	case *gmast.CodeSpan:
		return []Inline{Code{Value: NodeText(v, n.source)}}, nil
	case *gmast.Emphasis:
		spans, err := n.inlines(v)
		if err != nil {
			return nil, err
		}
		if v.Level >= 2 {
			return []Inline{Strong{Spans: spans}}, nil
		}
		return []Inline{Emphasis{Spans: spans}}, nil
	case *gmast.Link:
		spans, err := n.inlines(v)
		if err != nil {
			return nil, err
		}
		dest := string(v.Destination)
		if strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://") {
			return []Inline{ExternalLink{URL: dest, Spans: spans}}, nil
		}
		display := SpansText(spans)
		target := dest
		if target == "" {
			target = display
		}
		return []Inline{CrossRefSpan{Target: target, Display: display}}, nil
	case *gmast.AutoLink:
		url := string(v.URL(n.source))
		return []Inline{ExternalLink{URL: url, Spans: []Inline{Text{Value: url}}}}, nil
	default:
		return nil, faults.Malformed(node.Kind().String(),
			"no rendering for this inline construct", NodeText(node, n.source))
	}
}

// blockLines joins the raw source lines of a leaf block node.
func (n *Normalizer) blockLines(node gmast.Node) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(n.source))
	}
	return sb.String()
}

// NodeText returns the plain text of an arbitrary markup node, used for
// heading titles and for identifying offending nodes in error messages.
func NodeText(node gmast.Node, source []byte) string {
	var sb strings.Builder
	collectText(node, source, &sb)
	return sb.String()
}

func collectText(node gmast.Node, source []byte, sb *strings.Builder) {
	switch v := node.(type) {
	case *gmast.Text:
		sb.Write(v.Segment.Value(source))
		if v.SoftLineBreak() || v.HardLineBreak() {
			sb.WriteString("\n")
		}
		return
	case *gmast.String:
		sb.Write(v.Value)
		return
	}
	if node.Type() == gmast.TypeBlock && node.ChildCount() == 0 {
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
		}
		return
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		collectText(child, source, sb)
	}
}
