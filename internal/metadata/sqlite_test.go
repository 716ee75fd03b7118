package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, ResolvedKey{Key: "fit", Context: "sherpaish", Refkeywords: "fit model"}))
	require.NoError(t, store.Record(ctx, ResolvedKey{Key: "calc_stat", Context: "sherpaish"}))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Equal(t, "calc_stat", keys[0].Key)
	require.Equal(t, "fit", keys[1].Key)
}

func TestStoreUpsert(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, ResolvedKey{Key: "fit", Context: "sherpaish"}))
	require.NoError(t, store.Record(ctx, ResolvedKey{Key: "Fit", Context: "models", Refkeywords: "updated"}))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, "models", keys[0].Context)
	require.Equal(t, "updated", keys[0].Refkeywords)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	body := "skip:\n  - unwanted\nsynonyms:\n  get_counts: calc_data_sum\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Equal(t, []string{"unwanted"}, rules.Skip)
	require.Equal(t, "calc_data_sum", rules.Synonyms["get_counts"])

	empty, err := LoadRules("")
	require.NoError(t, err)
	require.Empty(t, empty.Skip)
}

func TestLoadBuildsIndexFromStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "crossrefs.db")

	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), ResolvedKey{Key: "fit", Context: "sherpaish"}))
	require.NoError(t, store.Close())

	ix, err := Load(context.Background(), dbPath, "")
	require.NoError(t, err)

	_, ok := ix.Resolve("fit")
	require.True(t, ok)
	_, ok = ix.Resolve("plot_fit")
	require.False(t, ok)
}
