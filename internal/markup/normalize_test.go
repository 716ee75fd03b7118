package markup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ahelpgen/internal/diag"
	"git.home.luguber.info/inful/ahelpgen/internal/faults"
)

func normalize(t *testing.T, src string) ([]Block, *diag.List, error) {
	t.Helper()
	source := []byte(src)
	diags := &diag.List{}
	n := NewNormalizer(source, diags)
	blocks, err := n.Blocks(Parse(source))
	return blocks, diags, err
}

func TestParagraphInlines(t *testing.T) {
	blocks, _, err := normalize(t, "Fit the model using *robust* statistics and `calc_stat`.")
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	para, ok := blocks[0].(Paragraph)
	require.True(t, ok)
	require.Equal(t, "Fit the model using robust statistics and calc_stat.", SpansText(para.Spans))
}

func TestListKeepsOrder(t *testing.T) {
	blocks, diags, err := normalize(t, "- first\n- second\n- third\n")
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	list, ok := blocks[0].(List)
	require.True(t, ok)
	require.False(t, list.Ordered)
	require.Len(t, list.Items, 3)
	require.Equal(t, "second", PlainText(list.Items[1]))
	require.Zero(t, diags.Len())
}

func TestNestedListFlattensOneLevel(t *testing.T) {
	src := "- outer\n  - inner one\n  - inner two\n- last\n"
	blocks, diags, err := normalize(t, src)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	list := blocks[0].(List)
	require.Len(t, list.Items, 4)
	require.True(t, diags.Has(diag.Note))
}

func TestOrderedList(t *testing.T) {
	blocks, _, err := normalize(t, "1. load\n2. fit\n")
	require.NoError(t, err)
	list := blocks[0].(List)
	require.True(t, list.Ordered)
	require.Len(t, list.Items, 2)
}

func TestVersionAddedAdmonition(t *testing.T) {
	src := "> versionadded: 4.16\n> The filter argument was introduced.\n"
	blocks, _, err := normalize(t, src)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	adm, ok := blocks[0].(Admonition)
	require.True(t, ok)
	require.Equal(t, VersionAdded, adm.Kind)
	require.Equal(t, "4.16", adm.Version)
	require.Len(t, adm.Body, 1)
	require.Equal(t, "The filter argument was introduced.", PlainText(adm.Body))
}

func TestVersionAdmonitionRejectsSecondParagraph(t *testing.T) {
	src := "> versionchanged: 4.17\n> The default changed.\n>\n> And something else.\n"
	_, _, err := normalize(t, src)
	require.Error(t, err)

	mb, ok := faults.AsMalformed(err)
	require.True(t, ok)
	require.Equal(t, "Blockquote", mb.NodeKind)
}

func TestVersionAdmonitionRequiresVersionTag(t *testing.T) {
	_, _, err := normalize(t, "> versionadded:\n> Some text.\n")
	require.Error(t, err)
	_, ok := faults.AsMalformed(err)
	require.True(t, ok)
}

func TestNoteAdmonitionWithTitle(t *testing.T) {
	src := "> note: Numerical accuracy\n>\n> Results below 1e-7 are unreliable.\n"
	blocks, _, err := normalize(t, src)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	adm := blocks[0].(Admonition)
	require.Equal(t, NoteAdmonition, adm.Kind)
	require.Equal(t, "Numerical accuracy", adm.Title)
	require.Len(t, adm.Body, 1)
}

func TestWarningAdmonitionSingleParagraph(t *testing.T) {
	blocks, _, err := normalize(t, "> warning: Do not call this during a fit.\n")
	require.NoError(t, err)
	adm := blocks[0].(Admonition)
	require.Equal(t, WarnAdmonition, adm.Kind)
	require.Empty(t, adm.Title)
}

func TestMathFence(t *testing.T) {
	blocks, _, err := normalize(t, "```math\nf(x) = x^2\n```\n")
	require.NoError(t, err)
	m, ok := blocks[0].(Math)
	require.True(t, ok)
	require.Equal(t, "f(x) = x^2", m.Expr)
}

func TestFencedCodeKeepsLanguage(t *testing.T) {
	blocks, _, err := normalize(t, "```python\nfit()\nplot_fit()\n```\n")
	require.NoError(t, err)
	lit, ok := blocks[0].(Literal)
	require.True(t, ok)
	require.Equal(t, "python", lit.Language)
	require.Equal(t, "fit()\nplot_fit()", lit.Text)
}

func TestSoleCrossRefPromotesToBlock(t *testing.T) {
	blocks, _, err := normalize(t, "[load_data](load_data)\n")
	require.NoError(t, err)
	ref, ok := blocks[0].(CrossRef)
	require.True(t, ok)
	require.Equal(t, "load_data", ref.Target)
}

func TestInlineCrossRefStaysInParagraph(t *testing.T) {
	blocks, _, err := normalize(t, "See [load_data](load_data) for details.\n")
	require.NoError(t, err)
	para := blocks[0].(Paragraph)

	var found bool
	for _, s := range para.Spans {
		if ref, ok := s.(CrossRefSpan); ok {
			found = true
			require.Equal(t, "load_data", ref.Target)
		}
	}
	require.True(t, found)
}

func TestHTTPLinkStaysExternal(t *testing.T) {
	blocks, _, err := normalize(t, "See the [release notes](https://example.org/notes).\n")
	require.NoError(t, err)
	para := blocks[0].(Paragraph)

	var found bool
	for _, s := range para.Spans {
		if link, ok := s.(ExternalLink); ok {
			found = true
			require.Equal(t, "https://example.org/notes", link.URL)
		}
	}
	require.True(t, found)
}

func TestTable(t *testing.T) {
	src := "| Name | Value |\n| ---- | ----- |\n| gamma | 2.1 |\n"
	blocks, _, err := normalize(t, src)
	require.NoError(t, err)

	table, ok := blocks[0].(Table)
	require.True(t, ok)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "gamma", PlainText(table.Rows[1].Cells[0]))
}

func TestDefinitionList(t *testing.T) {
	src := "sigma\n: The width of the line.\n\nampl\n: The amplitude.\n"
	blocks, _, err := normalize(t, src)
	require.NoError(t, err)

	dl, ok := blocks[0].(DefinitionList)
	require.True(t, ok)
	require.Len(t, dl.Items, 2)
	require.Equal(t, "sigma", dl.Items[0].Term)
	require.Equal(t, "The width of the line.", PlainText(dl.Items[0].Body))
}

func TestPlainBlockquoteBecomesLiteral(t *testing.T) {
	blocks, _, err := normalize(t, "> just some quoted prose\n")
	require.NoError(t, err)
	lit, ok := blocks[0].(Literal)
	require.True(t, ok)
	require.Equal(t, "just some quoted prose", lit.Text)
}

func TestThematicBreakIsMalformed(t *testing.T) {
	_, _, err := normalize(t, "before\n\n***\n\nafter\n")
	require.Error(t, err)
	mb, ok := faults.AsMalformed(err)
	require.True(t, ok)
	require.Equal(t, "ThematicBreak", mb.NodeKind)
}
