// Package sections partitions a documentation tree into the fixed semantic
// sections of a help document.
package sections

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/ahelpgen/internal/diag"
	"git.home.luguber.info/inful/ahelpgen/internal/markup"
)

// Tag names one of the seven semantic sections.
type Tag string

const (
	Synopsis   Tag = "SYNOPSIS"
	Desc       Tag = "DESC"
	Parameters Tag = "PARAMETERS"
	Attributes Tag = "ATTRIBUTES"
	Examples   Tag = "EXAMPLES"
	Bugs       Tag = "BUGS"
	SeeAlso    Tag = "SEEALSO"
)

// headingTags maps recognized heading aliases (lower case) onto sections.
var headingTags = map[string]Tag{
	"parameters":   Parameters,
	"params":       Parameters,
	"arguments":    Parameters,
	"attributes":   Attributes,
	"returns":      Attributes,
	"return value": Attributes,
	"examples":     Examples,
	"example":      Examples,
	"see also":     SeeAlso,
	"seealso":      SeeAlso,
	"bugs":         Bugs,
	"known issues": Bugs,
}

// ParamDoc is the documentation for one named parameter or attribute.
type ParamDoc struct {
	Name string
	Body []markup.Block
}

// Classified holds the partitioned content of one entity's documentation.
type Classified struct {
	Synopsis    string
	Refkeywords []string

	Desc []markup.Block

	// Params holds PARAMETERS or ATTRIBUTES entries in source order; nil when
	// the section is absent. ParamsTag says which of the two it was.
	Params    []ParamDoc
	ParamsTag Tag
	// Returns holds entries claimed under a second section with the other
	// tag (a Returns heading after Parameters). They describe the return
	// value, not signature parameters, and render as their own notes.
	Returns []ParamDoc

	Examples []markup.Block
	Bugs     []markup.Block

	// SeeAlsoTokens are the raw, deduplicated see-also names in source order.
	// SeeAlsoPresent distinguishes an empty section from a missing one.
	SeeAlsoTokens  []string
	SeeAlsoPresent bool
}

// Classify walks the top-level nodes of a parsed documentation tree and
// partitions them. signature is the ordered list of parameter names from the
// entity descriptor; entries documented but not in the signature are kept and
// flagged, signature parameters without documentation are flagged by the
// assembler.
func Classify(root gmast.Node, source []byte, signature []string, diags *diag.List) (*Classified, error) {
	norm := markup.NewNormalizer(source, diags)
	out := &Classified{}

	current := Desc
	sawHeading := false
	first := true

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*gmast.Heading); ok {
			title := strings.TrimSpace(markup.NodeText(h, source))
			tag, recognized := headingTags[strings.ToLower(title)]
			sawHeading = true
			first = false
			if !recognized {
				// Unrecognized headings fold into DESC, keeping the title as
				// an emphasized lead-in so the structure is not lost.
				current = Desc
				out.Desc = append(out.Desc, markup.Paragraph{
					Spans: []markup.Inline{markup.Strong{Spans: []markup.Inline{markup.Text{Value: title}}}},
				})
				diags.Add(diag.Debug, "folding section %q into the description", title)
				continue
			}
			current = tag
			if tag == SeeAlso {
				out.SeeAlsoPresent = true
			}
			continue
		}

		// The first block, when a plain paragraph with no preceding heading,
		// is the synopsis.
		if first && !sawHeading {
			first = false
			if para, ok := node.(*gmast.Paragraph); ok {
				out.Synopsis = strings.TrimSpace(markup.NodeText(para, source))
				out.Refkeywords = synopsisKeywords(out.Synopsis)
				continue
			}
		}
		first = false

		switch current {
		case Parameters, Attributes:
			if err := out.claimParams(norm, node, source, current, diags); err != nil {
				return nil, err
			}
		case SeeAlso:
			if err := out.claimSeeAlso(norm, node, diags); err != nil {
				return nil, err
			}
		case Examples:
			blocks, err := norm.Block(node)
			if err != nil {
				return nil, err
			}
			out.Examples = append(out.Examples, blocks...)
		case Bugs:
			blocks, err := norm.Block(node)
			if err != nil {
				return nil, err
			}
			out.Bugs = append(out.Bugs, blocks...)
		default:
			blocks, err := norm.Block(node)
			if err != nil {
				return nil, err
			}
			out.Desc = append(out.Desc, blocks...)
		}
	}

	out.flagUnknownParams(signature, diags)
	if out.Params == nil && len(signature) > 0 {
		diags.Add(diag.Info, "no parameters or return value")
	}
	if out.SeeAlsoPresent && len(out.SeeAlsoTokens) == 0 {
		diags.Add(diag.Note, "see-also section present but holds no entries")
	} else if !out.SeeAlsoPresent {
		diags.Add(diag.Debug, "no see-also given")
	}

	return out, nil
}

func (c *Classified) claimParams(norm *markup.Normalizer, node gmast.Node, source []byte, tag Tag, diags *diag.List) error {
	blocks, err := norm.Block(node)
	if err != nil {
		return err
	}
	if c.ParamsTag == "" {
		c.ParamsTag = tag
	}
	returns := tag != c.ParamsTag
	for _, b := range blocks {
		dl, ok := b.(markup.DefinitionList)
		if !ok {
			diags.Add(diag.Note, "unexpected %s in %s section, moved to description", b.BlockKind(), tag)
			c.Desc = append(c.Desc, b)
			continue
		}
		for _, item := range dl.Items {
			entry := ParamDoc{Name: item.Term, Body: item.Body}
			if returns {
				c.Returns = append(c.Returns, entry)
				continue
			}
			c.Params = append(c.Params, entry)
		}
	}
	return nil
}

func (c *Classified) claimSeeAlso(norm *markup.Normalizer, node gmast.Node, diags *diag.List) error {
	c.SeeAlsoPresent = true
	blocks, err := norm.Block(node)
	if err != nil {
		return err
	}
	raw := seeAlsoTokens(blocks)
	for _, tok := range raw {
		tok = cleanSeeAlsoToken(tok)
		if tok == "" {
			continue
		}
		if containsToken(c.SeeAlsoTokens, tok) {
			diags.Add(diag.Note, "see also contains duplicates: %s", tok)
			continue
		}
		c.SeeAlsoTokens = append(c.SeeAlsoTokens, tok)
	}
	return nil
}

// seeAlsoTokens pulls raw name tokens out of the see-also content: definition
// lists use the terms, bullet lists use the items, paragraphs are split on
// commas.
func seeAlsoTokens(blocks []markup.Block) []string {
	var out []string
	for _, b := range blocks {
		switch v := b.(type) {
		case markup.DefinitionList:
			for _, item := range v.Items {
				out = append(out, item.Term)
			}
		case markup.List:
			for _, item := range v.Items {
				out = append(out, markup.PlainText(item))
			}
		case markup.CrossRef:
			out = append(out, v.Target)
		case markup.Paragraph:
			out = append(out, strings.Split(markup.SpansText(v.Spans), ",")...)
		default:
			out = append(out, strings.Split(markup.PlainText([]markup.Block{b}), ",")...)
		}
	}
	return out
}

// cleanSeeAlsoToken trims separators and reduces dotted module paths to
// their final component.
func cleanSeeAlsoToken(tok string) string {
	tok = strings.TrimSpace(tok)
	tok = strings.Trim(tok, ",.")
	if idx := strings.LastIndex(tok, "."); idx >= 0 {
		tok = tok[idx+1:]
	}
	if strings.ContainsAny(tok, " \t\n") {
		// "name summary text" lines keep only the leading name.
		tok = strings.Fields(tok)[0]
	}
	return tok
}

func containsToken(toks []string, tok string) bool {
	for _, t := range toks {
		if t == tok {
			return true
		}
	}
	return false
}

// flagUnknownParams marks documented parameters that the signature does not
// declare. They are kept in the output.
func (c *Classified) flagUnknownParams(signature []string, diags *diag.List) {
	if c.Params == nil {
		return
	}
	known := make(map[string]bool, len(signature))
	for _, name := range signature {
		known[name] = true
	}
	noun := "parameter"
	if c.ParamsTag == Attributes {
		noun = "attribute"
	}
	for _, p := range c.Params {
		if !known[p.Name] && len(signature) > 0 {
			diags.Add(diag.Note, "documented %s %q is not in the signature", noun, p.Name)
		}
	}
}

// synopsisKeywords lower-cases and cleans the synopsis words for use as
// reference keywords.
func synopsisKeywords(synopsis string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, word := range strings.Fields(strings.ToLower(synopsis)) {
		word = strings.Trim(word, ",.:\"'()")
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}
