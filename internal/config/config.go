// Package config loads the run configuration: catalog location, output
// schema and directory, metadata sources, and watch-mode settings.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ahelpgen/internal/metadata"
)

// Config represents the application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Output   OutputConfig   `yaml:"output"`
	Metadata MetadataConfig `yaml:"metadata"`
	Document DocumentConfig `yaml:"document"`
	Watch    WatchConfig    `yaml:"watch,omitempty"`
}

// CatalogConfig points at the entity catalog.
type CatalogConfig struct {
	// Path is a YAML file or a directory of YAML files.
	Path string `yaml:"path"`
}

// OutputConfig controls where and in which schema documents are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// DTD selects the document type: "ahelp" (default) or "sxml".
	DTD string `yaml:"dtd,omitempty"`
}

// MetadataConfig locates the cross-reference store and the conversion rules.
type MetadataConfig struct {
	// Database is the SQLite cross-reference store; empty means no known
	// keys, so every see-also entry will go unresolved.
	Database string `yaml:"database,omitempty"`
	// RulesFile holds skip/synonym/rename/release rules; inline Rules
	// below take precedence per field when both are given.
	RulesFile string         `yaml:"rules_file,omitempty"`
	Rules     metadata.Rules `yaml:"rules,omitempty"`
}

// DocumentConfig carries the fixed ENTRY attributes.
type DocumentConfig struct {
	Pkg         string `yaml:"pkg,omitempty"`
	Context     string `yaml:"context,omitempty"`
	ModelsGroup string `yaml:"models_group,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Schedule is a cron expression for periodic full rebuilds; empty
	// disables the scheduler and leaves only filesystem triggers.
	Schedule string `yaml:"schedule,omitempty"`
	// MetricsAddr serves Prometheus metrics when set (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	// DebounceMillis collapses bursts of filesystem events.
	DebounceMillis int `yaml:"debounce_millis,omitempty"`
}

// Load loads configuration from the specified file, applies AHELPGEN_*
// environment overrides, fills defaults, and validates.
func Load(configPath string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AHELPGEN_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("AHELPGEN_OUTPUT"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("AHELPGEN_DTD"); v != "" {
		c.Output.DTD = v
	}
	if v := os.Getenv("AHELPGEN_METADATA_DB"); v != "" {
		c.Metadata.Database = v
	}
	if v := os.Getenv("AHELPGEN_RULES"); v != "" {
		c.Metadata.RulesFile = v
	}
}

func (c *Config) applyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = "./ahelp"
	}
	if c.Output.DTD == "" {
		c.Output.DTD = "ahelp"
	}
	if c.Document.Pkg == "" {
		c.Document.Pkg = "sherpa"
	}
	if c.Document.Context == "" {
		c.Document.Context = "sherpaish"
	}
	if c.Document.ModelsGroup == "" {
		c.Document.ModelsGroup = "shmodels"
	}
	if c.Watch.DebounceMillis == 0 {
		c.Watch.DebounceMillis = 500
	}
}

// Validate checks the configuration for problems the run cannot recover
// from.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	switch c.Output.DTD {
	case "ahelp", "sxml":
	default:
		return fmt.Errorf("output.dtd must be %q or %q, got %q", "ahelp", "sxml", c.Output.DTD)
	}
	return nil
}

// Rules merges the rules file (if any) with the inline rules, inline fields
// winning.
func (c *Config) Rules() (metadata.Rules, error) {
	rules, err := metadata.LoadRules(c.Metadata.RulesFile)
	if err != nil {
		return rules, err
	}
	inline := c.Metadata.Rules
	if len(inline.Skip) > 0 {
		rules.Skip = inline.Skip
	}
	if len(inline.SkipPrefixes) > 0 {
		rules.SkipPrefixes = inline.SkipPrefixes
	}
	if len(inline.Synonyms) > 0 {
		rules.Synonyms = inline.Synonyms
	}
	if len(inline.Renames) > 0 {
		rules.Renames = inline.Renames
	}
	if len(inline.Releases) > 0 {
		rules.Releases = inline.Releases
	}
	if len(inline.Labels) > 0 {
		rules.Labels = inline.Labels
	}
	return rules, nil
}

const exampleConfig = `# ahelpgen configuration
catalog:
  path: ./catalog

output:
  directory: ./ahelp
  dtd: ahelp

metadata:
  database: ./crossrefs.db
  rules:
    skip:
      - internal_helper
    synonyms:
      get_counts: calc_data_sum
    renames:
      group: group_sherpa
    releases:
      "4.16": "CIAO 4.16"
      "4.17": "CIAO 4.17"

watch:
  schedule: "0 */6 * * *"
  metrics_addr: ":9090"
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	return os.WriteFile(configPath, []byte(exampleConfig), 0o644)
}
