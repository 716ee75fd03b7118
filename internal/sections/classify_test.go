package sections

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ahelpgen/internal/diag"
	"git.home.luguber.info/inful/ahelpgen/internal/markup"
)

func classify(t *testing.T, src string, signature []string) (*Classified, *diag.List, error) {
	t.Helper()
	source := []byte(src)
	diags := &diag.List{}
	cls, err := Classify(markup.Parse(source), source, signature, diags)
	return cls, diags, err
}

const fullDoc = `Fit a model to the loaded data.

The fit uses the current statistic and optimization method.

## Parameters

x
: The independent axis.

y
: The dependent axis.

## Examples

Fit and inspect the result.

` + "```" + `
fit()
` + "```" + `

## See Also

calc_stat, plot_fit, calc_stat
`

func TestClassifyFullDocument(t *testing.T) {
	cls, diags, err := classify(t, fullDoc, []string{"x", "y"})
	require.NoError(t, err)

	require.Equal(t, "Fit a model to the loaded data.", cls.Synopsis)
	require.Contains(t, cls.Refkeywords, "fit")
	require.NotEmpty(t, cls.Desc)

	require.Equal(t, Parameters, cls.ParamsTag)
	require.Len(t, cls.Params, 2)
	require.Equal(t, "x", cls.Params[0].Name)
	require.Equal(t, "y", cls.Params[1].Name)

	require.Len(t, cls.Examples, 2)

	require.True(t, cls.SeeAlsoPresent)
	require.Equal(t, []string{"calc_stat", "plot_fit"}, cls.SeeAlsoTokens)
	require.True(t, diags.Has(diag.Note)) // duplicate see-also entry
}

func TestSynopsisOnlyFirstParagraph(t *testing.T) {
	cls, _, err := classify(t, "Load the data.\n\nA longer description follows.\n", nil)
	require.NoError(t, err)
	require.Equal(t, "Load the data.", cls.Synopsis)
	require.Len(t, cls.Desc, 1)
}

func TestUnknownHeadingFoldsIntoDesc(t *testing.T) {
	src := "Synopsis line.\n\n## Notes\n\nSome notes here.\n"
	cls, _, err := classify(t, src, nil)
	require.NoError(t, err)

	// Title paragraph plus the notes content.
	require.Len(t, cls.Desc, 2)
	first, ok := cls.Desc[0].(markup.Paragraph)
	require.True(t, ok)
	require.Equal(t, "Notes", markup.SpansText(first.Spans))
}

func TestAttributesAlias(t *testing.T) {
	src := "A model.\n\n## Returns\n\nvalue\n: The computed statistic.\n"
	cls, _, err := classify(t, src, nil)
	require.NoError(t, err)
	require.Equal(t, Attributes, cls.ParamsTag)
	require.Len(t, cls.Params, 1)
}

func TestReturnsKeptSeparateFromParameters(t *testing.T) {
	src := "Computes a statistic.\n\n" +
		"## Parameters\n\nx\n: The independent axis.\n\n" +
		"## Returns\n\nstat\n: The statistic value.\n"
	cls, _, err := classify(t, src, []string{"x"})
	require.NoError(t, err)

	require.Equal(t, Parameters, cls.ParamsTag)
	require.Len(t, cls.Params, 1)
	require.Equal(t, "x", cls.Params[0].Name)

	require.Len(t, cls.Returns, 1)
	require.Equal(t, "stat", cls.Returns[0].Name)
}

func TestMissingParametersDiagnostic(t *testing.T) {
	cls, diags, err := classify(t, "Does a thing.\n", []string{"x"})
	require.NoError(t, err)
	require.Nil(t, cls.Params)
	require.True(t, diags.Has(diag.Info))
}

func TestUnknownParameterFlagged(t *testing.T) {
	src := "Does a thing.\n\n## Parameters\n\nbogus\n: Not in the signature.\n"
	_, diags, err := classify(t, src, []string{"x"})
	require.NoError(t, err)
	require.True(t, diags.Has(diag.Note))
}

func TestSeeAlsoDottedPathsReduced(t *testing.T) {
	src := "Does a thing.\n\n## See Also\n\nsherpa.astro.ui.load_data, plot_fit\n"
	cls, _, err := classify(t, src, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"load_data", "plot_fit"}, cls.SeeAlsoTokens)
}

func TestSeeAlsoFromBulletList(t *testing.T) {
	src := "Does a thing.\n\n## See Also\n\n- calc_stat\n- plot_fit some trailing summary\n"
	cls, _, err := classify(t, src, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"calc_stat", "plot_fit"}, cls.SeeAlsoTokens)
}

func TestEmptySeeAlsoDistinctFromMissing(t *testing.T) {
	cls, diags, err := classify(t, "Does a thing.\n\n## See Also\n", nil)
	require.NoError(t, err)
	require.True(t, cls.SeeAlsoPresent)
	require.Empty(t, cls.SeeAlsoTokens)
	require.True(t, diags.Has(diag.Note))

	cls, diags, err = classify(t, "Does a thing.\n", nil)
	require.NoError(t, err)
	require.False(t, cls.SeeAlsoPresent)
	require.True(t, diags.Has(diag.Debug))
}
