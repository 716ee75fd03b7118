package ahelp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ahelpgen/internal/assemble"
	"git.home.luguber.info/inful/ahelpgen/internal/catalog"
	"git.home.luguber.info/inful/ahelpgen/internal/markup"
	"git.home.luguber.info/inful/ahelpgen/internal/sections"
)

func para(text string) markup.Paragraph {
	return markup.Paragraph{Spans: []markup.Inline{markup.Text{Value: text}}}
}

func sampleDoc() *assemble.HelpDocument {
	return &assemble.HelpDocument{
		Name:        "fit",
		Kind:        catalog.Callable,
		Key:         "fit",
		Context:     "sherpaish",
		Pkg:         "sherpa",
		Synopsis:    "Fit a model to the data.",
		SyntaxLine:  "fit(id, outfile=None)",
		Refkeywords: []string{"fit", "model"},
		Desc: []markup.Block{
			para("The fit uses the current statistic."),
			markup.Literal{Text: "fit()\nplot_fit()"},
		},
		Params: []sections.ParamDoc{
			{Name: "id", Body: []markup.Block{para("The data set identifier.")}},
		},
		ParamsTag: sections.Parameters,
		SeeAlso:   []string{"calc_stat"},
		Groups:    []string{"calc_statfit"},
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := Renderer{DTD: DTDAhelp}
	doc := sampleDoc()
	first := r.Render(doc)
	second := r.Render(doc)
	require.Equal(t, first, second)
}

func TestRenderProlog(t *testing.T) {
	r := Renderer{DTD: DTDAhelp}
	out := string(r.Render(sampleDoc()))

	require.True(t, strings.HasPrefix(out,
		`<?xml version="1.0" encoding="UTF-8" ?><!DOCTYPE cxchelptopics SYSTEM "CXCHelp.dtd">`+"\n"))
	require.Contains(t, out, "<cxchelptopics>")
	require.Contains(t, out, `pkg="sherpa"`)
	require.Contains(t, out, `key="fit"`)
	require.Contains(t, out, `refkeywords="fit model"`)
	require.Contains(t, out, `seealsogroups="calc_statfit"`)
	require.Contains(t, out, `context="sherpaish"`)
}

func TestRenderSxmlProlog(t *testing.T) {
	r := Renderer{DTD: DTDSxml}
	out := string(r.Render(sampleDoc()))
	require.True(t, strings.HasPrefix(out,
		`<?xml version="1.0" encoding="UTF-8" ?><!DOCTYPE cxcdocumentationpage SYSTEM "CXCDocPage.dtd">`+"\n"))
	require.Contains(t, out, "<cxcdocumentationpage>")
}

func TestRenderSections(t *testing.T) {
	r := Renderer{DTD: DTDAhelp}
	out := string(r.Render(sampleDoc()))

	require.Contains(t, out, "<SYNOPSIS>Fit a model to the data.</SYNOPSIS>")
	require.Contains(t, out, "<LINE>fit(id, outfile=None)</LINE>")
	require.Contains(t, out, "<PARA>The fit uses the current statistic.</PARA>")
	require.Contains(t, out, "<VERBATIM>fit()\nplot_fit()</VERBATIM>")
	require.Contains(t, out, `<ADESC title="PARAMETERS">`)
	require.Contains(t, out, "<DATA>The data set identifier.</DATA>")
}

func TestRenderReturnValueNote(t *testing.T) {
	doc := sampleDoc()
	doc.Returns = []sections.ParamDoc{
		{Name: "stat", Body: []markup.Block{para("The statistic value.")}},
	}

	out := string(Renderer{DTD: DTDAhelp}.Render(doc))
	require.Contains(t, out, `<ADESC title="PARAMETERS">`)
	require.Contains(t, out, `<PARA title="Return value">The statistic value.</PARA>`)
	// Return entries never join the parameter table.
	require.NotContains(t, out, "<DATA>stat</DATA>")
}

func TestRenderSynopsisFallsBackToName(t *testing.T) {
	doc := sampleDoc()
	doc.Synopsis = ""

	out := string(Renderer{DTD: DTDAhelp}.Render(doc))
	require.Contains(t, out, "<SYNOPSIS>fit</SYNOPSIS>")
}

func TestRenderVersionNotesAndLabel(t *testing.T) {
	doc := sampleDoc()
	doc.VersionNotes = []markup.Admonition{
		{Kind: markup.VersionChanged, Version: "CIAO 4.17", Body: []markup.Block{para("The default changed.")}},
	}
	doc.ReleaseLabel = "CIAO 4.17"

	out := string(Renderer{DTD: DTDAhelp}.Render(doc))
	require.Contains(t, out, `<ADESC title="Changes in CIAO 4.17">`)
	require.Contains(t, out, `<PARA title="Changed in CIAO 4.17">The default changed.</PARA>`)
	require.Contains(t, out, "<LASTMODIFIED>CIAO 4.17</LASTMODIFIED>")
}

func TestRenderEscapesCharacterData(t *testing.T) {
	doc := sampleDoc()
	doc.Synopsis = "Compare a < b & c > d."

	out := string(Renderer{DTD: DTDAhelp}.Render(doc))
	require.Contains(t, out, "<SYNOPSIS>Compare a &lt; b &amp; c &gt; d.</SYNOPSIS>")
}

func TestRenderExternalLink(t *testing.T) {
	doc := sampleDoc()
	doc.Desc = []markup.Block{
		markup.Paragraph{Spans: []markup.Inline{
			markup.Text{Value: "See the "},
			markup.ExternalLink{URL: "https://example.org", Spans: []markup.Inline{markup.Text{Value: "notes"}}},
			markup.Text{Value: "."},
		}},
	}

	out := string(Renderer{DTD: DTDAhelp}.Render(doc))
	require.Contains(t, out, `<PARA>See the <HREF link="https://example.org">notes</HREF>.</PARA>`)
}

func TestGroupExamples(t *testing.T) {
	blocks := []markup.Block{
		para("Fit the data."),
		markup.Literal{Text: "fit()"},
		para("then inspect the statistic value."),
		markup.Literal{Text: "calc_stat()"},
		para("Plot the results."),
		markup.Literal{Text: "plot_fit()"},
	}
	groups := groupExamples(blocks)

	// The lower-case paragraph continues the first example.
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 4)
	require.Len(t, groups[1], 2)
}

func TestRenderIndexPage(t *testing.T) {
	r := Renderer{DTD: DTDAhelp}
	page := IndexPage{
		Key:      "models",
		Title:    "The following models are available:",
		Synopsis: "Summary of the available models",
		Context:  "models",
		Pkg:      "sherpa",
		Entries: []IndexEntry{
			{Name: "gauss1d", Synopsis: "A one-dimensional Gaussian."},
			{Name: "powlaw1d", Synopsis: "A power law."},
		},
	}

	first := r.RenderIndex(page)
	second := r.RenderIndex(page)
	require.Equal(t, first, second)

	out := string(first)
	require.Contains(t, out, `key="models"`)
	require.Contains(t, out, "<DATA>gauss1d</DATA>")
	require.Contains(t, out, "<DATA>A power law.</DATA>")
}
