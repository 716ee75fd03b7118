package ahelp

import (
	"strings"

	"git.home.luguber.info/inful/ahelpgen/internal/assemble"
	"git.home.luguber.info/inful/ahelpgen/internal/markup"
	"git.home.luguber.info/inful/ahelpgen/internal/sections"
)

// Renderer turns help documents into schema bytes.
type Renderer struct {
	DTD DTD
}

// Render serializes one document. It is pure: no I/O, no clock, no
// randomness, so repeat calls produce identical bytes.
func (r Renderer) Render(doc *assemble.HelpDocument) []byte {
	w := &writer{}
	w.raw(r.DTD.Doctype())
	w.raw("\n")
	w.open(r.DTD.Root())
	w.open("ENTRY",
		attr{"pkg", doc.Pkg},
		attr{"key", doc.Key},
		attr{"refkeywords", strings.Join(doc.Refkeywords, " ")},
		attr{"seealsogroups", strings.Join(doc.Groups, " ")},
		attr{"displayseealsogroups", doc.DisplayGroups},
		attr{"context", doc.Context},
	)

	synopsis := doc.Synopsis
	if synopsis == "" {
		synopsis = doc.Name
	}
	w.element("SYNOPSIS", synopsis)
	w.open("SYNTAX")
	w.element("LINE", doc.SyntaxLine)
	w.close("SYNTAX")

	w.open("DESC")
	renderBlocks(w, doc.Desc)
	w.close("DESC")

	if len(doc.Params) > 0 || len(doc.Returns) > 0 {
		renderParams(w, doc)
	}
	if len(doc.Examples) > 0 {
		renderExamples(w, doc.Examples)
	}
	if len(doc.Bugs) > 0 {
		w.open("BUGS")
		renderBlocks(w, doc.Bugs)
		w.close("BUGS")
	}
	if len(doc.VersionNotes) > 0 {
		renderVersionNotes(w, doc)
	}
	if doc.ReleaseLabel != "" {
		w.element("LASTMODIFIED", doc.ReleaseLabel)
	}

	w.close("ENTRY")
	w.close(r.DTD.Root())
	return w.bytes()
}

// renderBlocks maps each content block onto the schema's limited markup
// subset. The switch is exhaustive over the closed block set.
func renderBlocks(w *writer, blocks []markup.Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case markup.Paragraph:
			renderParagraph(w, v, "")
		case markup.List:
			w.open("LIST")
			for _, item := range v.Items {
				w.element("ITEM", markup.PlainText(item))
			}
			w.close("LIST")
		case markup.DefinitionList:
			for _, item := range v.Items {
				renderDefinition(w, item)
			}
		case markup.FieldList:
			for _, f := range v.Fields {
				renderDefinition(w, markup.Definition{Term: f.Name, Body: f.Body})
			}
		case markup.Literal:
			w.element("VERBATIM", v.Text)
		case markup.Math:
			w.element("VERBATIM", v.Expr)
		case markup.Table:
			w.open("TABLE")
			for _, row := range v.Rows {
				w.open("ROW")
				for _, cell := range row.Cells {
					w.element("DATA", markup.PlainText(cell))
				}
				w.close("ROW")
			}
			w.close("TABLE")
		case markup.Admonition:
			renderAdmonition(w, v)
		case markup.CrossRef:
			w.element("PARA", displayText(v))
		}
	}
}

func displayText(ref markup.CrossRef) string {
	if ref.Display != "" {
		return ref.Display
	}
	return ref.Target
}

// renderParagraph writes a PARA, inlining external links as HREF elements.
// All other inline markup flattens to its text, which is all the target
// schema can carry.
func renderParagraph(w *writer, p markup.Paragraph, title string) {
	if title != "" {
		w.openTag("PARA", attr{"title", title})
	} else {
		w.openTag("PARA")
	}
	for _, span := range p.Spans {
		switch v := span.(type) {
		case markup.Text:
			w.text(v.Value)
		case markup.Emphasis:
			w.text(markup.SpansText(v.Spans))
		case markup.Strong:
			w.text(markup.SpansText(v.Spans))
		case markup.Code:
			w.text(v.Value)
		case markup.ExternalLink:
			w.openTag("HREF", attr{"link", v.URL})
			w.text(markup.SpansText(v.Spans))
			w.raw("</HREF>")
		case markup.CrossRefSpan:
			if v.Display != "" {
				w.text(v.Display)
			} else {
				w.text(v.Target)
			}
		}
	}
	w.raw("</PARA>\n")
}

// renderDefinition writes a term as a titled PARA. The first paragraph of
// the body joins the title PARA; the rest follow as ordinary blocks.
func renderDefinition(w *writer, d markup.Definition) {
	body := d.Body
	if len(body) > 0 {
		if p, ok := body[0].(markup.Paragraph); ok {
			renderParagraph(w, p, d.Term)
			renderBlocks(w, body[1:])
			return
		}
	}
	w.element("PARA", "", attr{"title", d.Term})
	renderBlocks(w, body)
}

func renderAdmonition(w *writer, adm markup.Admonition) {
	title := adm.Title
	if title == "" {
		switch adm.Kind {
		case markup.WarnAdmonition:
			title = "Warning"
		case markup.VersionAdded:
			title = "New in " + adm.Version
		case markup.VersionChanged:
			title = "Changed in " + adm.Version
		default:
			title = "Note"
		}
	}
	body := adm.Body
	if len(body) > 0 {
		if p, ok := body[0].(markup.Paragraph); ok {
			renderParagraph(w, p, title)
			renderBlocks(w, body[1:])
			return
		}
	}
	w.element("PARA", "", attr{"title", title})
	renderBlocks(w, body)
}

// renderVersionNotes collects the lifted version admonitions into a single
// ADESC block, latest change first.
func renderVersionNotes(w *writer, doc *assemble.HelpDocument) {
	title := "Changes"
	if doc.ReleaseLabel != "" {
		title = "Changes in " + doc.ReleaseLabel
	}
	w.open("ADESC", attr{"title", title})
	for _, adm := range doc.VersionNotes {
		renderAdmonition(w, adm)
	}
	w.close("ADESC")
}

// renderParams writes the ADESC table for the PARAMETERS or ATTRIBUTES
// section: an intro line plus one row per documented entry.
func renderParams(w *writer, doc *assemble.HelpDocument) {
	title := "PARAMETERS"
	noun := "parameters"
	if doc.ParamsTag == sections.Attributes {
		title = "ATTRIBUTES"
		noun = "attributes"
	}
	w.open("ADESC", attr{"title", title})
	if len(doc.Params) > 0 {
		w.element("PARA", "The "+noun+" for "+doc.Name+" are:")
		w.open("TABLE")
		w.open("ROW")
		w.element("DATA", "Name")
		w.element("DATA", "Definition")
		w.close("ROW")
		for _, p := range doc.Params {
			w.open("ROW")
			w.element("DATA", p.Name)
			w.element("DATA", markup.PlainText(p.Body))
			w.close("ROW")
		}
		w.close("TABLE")
	}
	for _, ret := range doc.Returns {
		renderReturn(w, ret)
	}
	w.close("ADESC")
}

// renderReturn writes one return-value note as a titled PARA, kept apart
// from the parameter table.
func renderReturn(w *writer, ret sections.ParamDoc) {
	if len(ret.Body) > 0 {
		if p, ok := ret.Body[0].(markup.Paragraph); ok {
			renderParagraph(w, p, "Return value")
			renderBlocks(w, ret.Body[1:])
			return
		}
	}
	w.element("PARA", ret.Name, attr{"title", "Return value"})
	renderBlocks(w, ret.Body)
}

// renderExamples groups the example blocks into QEXAMPLE entries. A
// paragraph opens a new example unless it starts with a lower-case letter,
// which marks it as continuing the previous one; a literal block closes the
// current example.
func renderExamples(w *writer, blocks []markup.Block) {
	groups := groupExamples(blocks)
	w.open("QEXAMPLELIST")
	for _, g := range groups {
		w.open("QEXAMPLE")
		w.open("DESC")
		renderBlocks(w, g)
		w.close("DESC")
		w.close("QEXAMPLE")
	}
	w.close("QEXAMPLELIST")
}

func groupExamples(blocks []markup.Block) [][]markup.Block {
	var groups [][]markup.Block
	open := false
	for _, b := range blocks {
		p, isPara := b.(markup.Paragraph)
		if !open {
			continuation := isPara && len(groups) > 0 && startsLower(markup.SpansText(p.Spans))
			if !continuation {
				groups = append(groups, nil)
			}
			open = true
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], b)
		if _, isLit := b.(markup.Literal); isLit {
			open = false
		}
	}
	return groups
}

func startsLower(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	c := s[0]
	return c >= 'a' && c <= 'z'
}
