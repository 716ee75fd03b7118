package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testRules() Rules {
	return Rules{
		Skip:         []string{"unwanted"},
		SkipPrefixes: []string{"tmp_"},
		Synonyms:     map[string]string{"get_counts": "calc_data_sum", "sum_counts": "calc_data_sum"},
		Renames:      map[string]string{"group": "group_sherpa"},
		Releases:     map[string]string{"4.16": "CIAO 4.16", "4.16.1": "CIAO 4.16.1"},
		Labels:       map[string]string{"fit": "CIAO 4.17"},
	}
}

func TestResolveNormalizesKeys(t *testing.T) {
	ix := NewStatic([]ResolvedKey{
		{Key: "Calc_Stat", Context: "sherpaish"},
	}, Rules{})

	got, ok := ix.Resolve("calc_stat")
	require.True(t, ok)
	require.Equal(t, "Calc_Stat", got.Key)

	got, ok = ix.Resolve("  CALC_STAT ")
	require.True(t, ok)
	require.Equal(t, "sherpaish", got.Context)

	_, ok = ix.Resolve("missing")
	require.False(t, ok)
}

func TestIsSkipped(t *testing.T) {
	ix := NewStatic(nil, testRules())

	cases := []struct {
		entity  string
		skipped bool
	}{
		{"_private", true},
		{"unwanted", true},
		{"tmp_scratch", true},
		{"get_counts", true},
		{"fit", false},
	}
	for _, tc := range cases {
		skipped, reason := ix.IsSkipped(tc.entity)
		require.Equal(t, tc.skipped, skipped, tc.entity)
		if skipped {
			require.NotEmpty(t, reason, tc.entity)
		}
	}

	_, reason := ix.IsSkipped("get_counts")
	require.Equal(t, "synonym for calc_data_sum", reason)
}

func TestSynonymsOfIsSortedAndStable(t *testing.T) {
	ix := NewStatic(nil, testRules())
	require.Equal(t, []string{"get_counts", "sum_counts"}, ix.SynonymsOf("calc_data_sum"))
	require.Empty(t, ix.SynonymsOf("fit"))
}

func TestOutputKey(t *testing.T) {
	ix := NewStatic(nil, testRules())
	require.Equal(t, "group_sherpa", ix.OutputKey("group"))
	require.Equal(t, "fit", ix.OutputKey("fit"))
}

func TestMapVersionLongestPrefixWins(t *testing.T) {
	ix := NewStatic(nil, testRules())
	require.Equal(t, "CIAO 4.16", ix.MapVersion("4.16"))
	require.Equal(t, "CIAO 4.16.1", ix.MapVersion("4.16.1"))
	require.Equal(t, "9.9", ix.MapVersion("9.9"))
}

func TestVersionLabel(t *testing.T) {
	ix := NewStatic(nil, testRules())
	label, ok := ix.VersionLabel("fit")
	require.True(t, ok)
	require.Equal(t, "CIAO 4.17", label)

	_, ok = ix.VersionLabel("plot_fit")
	require.False(t, ok)
}
