// Package ahelp renders assembled help documents into the fixed legacy XML
// schema the external viewer consumes. Rendering is pure: the same document
// always yields byte-identical output, so downstream diffs stay meaningful.
package ahelp

import "strings"

// DTD selects the output document type.
type DTD string

const (
	DTDAhelp DTD = "ahelp"
	DTDSxml  DTD = "sxml"
)

// Root returns the root element name for the DTD.
func (d DTD) Root() string {
	if d == DTDSxml {
		return "cxcdocumentationpage"
	}
	return "cxchelptopics"
}

// Doctype returns the full prolog line, DOCTYPE included. The viewer
// expects this exact byte sequence.
func (d DTD) Doctype() string {
	if d == DTDSxml {
		return `<?xml version="1.0" encoding="UTF-8" ?><!DOCTYPE cxcdocumentationpage SYSTEM "CXCDocPage.dtd">`
	}
	return `<?xml version="1.0" encoding="UTF-8" ?><!DOCTYPE cxchelptopics SYSTEM "CXCHelp.dtd">`
}

// Ext returns the output file extension for the DTD.
func (d DTD) Ext() string {
	if d == DTDSxml {
		return ".sxml"
	}
	return ".xml"
}

// attr is one attribute; attributes render in slice order so output stays
// stable.
type attr struct {
	name  string
	value string
}

// writer builds the document text. It is a thin helper, not a general XML
// encoder: the schema is fixed and the element vocabulary tiny, and the
// prolog and attribute ordering must be reproduced byte for byte, which
// encoding/xml does not guarantee.
type writer struct {
	sb strings.Builder
}

func (w *writer) raw(s string) {
	w.sb.WriteString(s)
}

func (w *writer) openTag(name string, attrs ...attr) {
	w.sb.WriteString("<")
	w.sb.WriteString(name)
	for _, a := range attrs {
		w.sb.WriteString(" ")
		w.sb.WriteString(a.name)
		w.sb.WriteString(`="`)
		w.sb.WriteString(escapeAttr(a.value))
		w.sb.WriteString(`"`)
	}
	w.sb.WriteString(">")
}

func (w *writer) open(name string, attrs ...attr) {
	w.openTag(name, attrs...)
	w.sb.WriteString("\n")
}

func (w *writer) close(name string) {
	w.sb.WriteString("</")
	w.sb.WriteString(name)
	w.sb.WriteString(">\n")
}

// element writes a leaf element with text content on one line.
func (w *writer) element(name, text string, attrs ...attr) {
	w.openTag(name, attrs...)
	w.sb.WriteString(escapeText(text))
	w.sb.WriteString("</")
	w.sb.WriteString(name)
	w.sb.WriteString(">\n")
}

func (w *writer) text(s string) {
	w.sb.WriteString(escapeText(s))
}

func (w *writer) bytes() []byte {
	return []byte(w.sb.String())
}

// escapeText escapes character data. Newlines pass through untouched so
// VERBATIM blocks keep their layout.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = escapeText(s)
	return strings.ReplaceAll(s, `"`, "&quot;")
}
