package markup

import "strings"

// Inline is one span of rich text inside a paragraph or table cell.
// Like Block, the variant set is closed.
type Inline interface {
	isInline()
}

// Text is plain character data.
type Text struct {
	Value string
}

// Emphasis is italic text.
type Emphasis struct {
	Spans []Inline
}

// Strong is bold text.
type Strong struct {
	Spans []Inline
}

// Code is an inline literal span.
type Code struct {
	Value string
}

// ExternalLink is a hyperlink with an http(s) destination.
type ExternalLink struct {
	URL   string
	Spans []Inline
}

// CrossRefSpan is an inline reference to another entity's document.
type CrossRefSpan struct {
	Target  string
	Display string
}

func (Text) isInline()         {}
func (Emphasis) isInline()     {}
func (Strong) isInline()       {}
func (Code) isInline()         {}
func (ExternalLink) isInline() {}
func (CrossRefSpan) isInline() {}

// SpansText renders inline spans as plain text.
func SpansText(spans []Inline) string {
	var sb strings.Builder
	for _, s := range spans {
		switch v := s.(type) {
		case Text:
			sb.WriteString(v.Value)
		case Emphasis:
			sb.WriteString(SpansText(v.Spans))
		case Strong:
			sb.WriteString(SpansText(v.Spans))
		case Code:
			sb.WriteString(v.Value)
		case ExternalLink:
			sb.WriteString(SpansText(v.Spans))
		case CrossRefSpan:
			sb.WriteString(v.Display)
		}
	}
	return sb.String()
}
