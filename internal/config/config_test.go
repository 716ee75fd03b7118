package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "catalog:\n  path: ./catalog\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "./catalog", cfg.Catalog.Path)
	require.Equal(t, "./ahelp", cfg.Output.Directory)
	require.Equal(t, "ahelp", cfg.Output.DTD)
	require.Equal(t, "sherpa", cfg.Document.Pkg)
	require.Equal(t, "sherpaish", cfg.Document.Context)
	require.Equal(t, "shmodels", cfg.Document.ModelsGroup)
	require.Equal(t, 500, cfg.Watch.DebounceMillis)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "catalog:\n  path: ./catalog\noutput:\n  directory: ./out\n")

	t.Setenv("AHELPGEN_OUTPUT", "/tmp/elsewhere")
	t.Setenv("AHELPGEN_DTD", "sxml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/elsewhere", cfg.Output.Directory)
	require.Equal(t, "sxml", cfg.Output.DTD)
}

func TestLoadExpandsEnvInYAML(t *testing.T) {
	t.Setenv("DOCS_ROOT", "/srv/docs")
	path := writeConfig(t, "catalog:\n  path: ${DOCS_ROOT}/catalog\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/docs/catalog", cfg.Catalog.Path)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "output:\n  directory: ./out\n")
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "catalog.path")

	path = writeConfig(t, "catalog:\n  path: ./catalog\noutput:\n  dtd: pdf\n")
	_, err = Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "output.dtd")
}

func TestRulesMergeInlineWins(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath,
		[]byte("skip:\n  - from_file\nrenames:\n  group: group_sherpa\n"), 0o644))

	cfg := &Config{}
	cfg.Metadata.RulesFile = rulesPath
	cfg.Metadata.Rules.Skip = []string{"inline"}

	rules, err := cfg.Rules()
	require.NoError(t, err)
	require.Equal(t, []string{"inline"}, rules.Skip)
	require.Equal(t, "group_sherpa", rules.Renames["group"])
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Init(path, false))
	require.FileExists(t, path)

	// Refuses to clobber without force.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Catalog.Path)
}
