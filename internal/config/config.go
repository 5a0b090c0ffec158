package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conciliar/reconcile/internal/alias"
	"github.com/conciliar/reconcile/internal/importer"
	"github.com/conciliar/reconcile/internal/model"
	"github.com/conciliar/reconcile/internal/report"
)

// FileName is the config file written by init.
const FileName = "reconcile.yaml"

// EnvPath overrides the config file location.
const EnvPath = "RECONCILE_CONFIG"

// Config represents the top-level reconcile.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	PageSize     int                `yaml:"page_size"`
	OutputDir    string             `yaml:"output_dir"`
	Export       ExportConfig       `yaml:"export"`
	Layouts      []LayoutConfig     `yaml:"layouts,omitempty"`
}

// OrganizationConfig identifies whose books are reconciled.
type OrganizationConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency,omitempty"`
}

// ExportConfig controls report rendering.
type ExportConfig struct {
	// ExcludeColumns drops headers containing any of these substrings, case-insensitively.
	ExcludeColumns []string `yaml:"exclude_columns"`
}

// LayoutConfig defines or overrides one institution layout.
type LayoutConfig struct {
	Institution   string              `yaml:"institution"`
	Layout        string              `yaml:"layout"`
	HeaderRow     int                 `yaml:"header_row,omitempty"`
	Fields        map[string][]string `yaml:"fields"`
	OutflowTokens []string            `yaml:"outflow_tokens,omitempty"`
	InflowTokens  []string            `yaml:"inflow_tokens,omitempty"`

	// IgnoreDescriptions skips balance lines. Unset means the importer defaults;
	// an empty list keeps every row.
	IgnoreDescriptions []string `yaml:"ignore_descriptions,omitempty"`
}

// Path returns the config path for project dir, honoring RECONCILE_CONFIG.
func Path(dir string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(dir, FileName)
}

// Load reads a reconcile.yaml file from disk. Unset values take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default("").
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(""), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(name string) *Config {
	cfg := &Config{
		Organization: OrganizationConfig{Name: name, Currency: "AOA"},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.OutputDir == "" {
		c.OutputDir = "exports"
	}
	if c.Export.ExcludeColumns == nil {
		c.Export.ExcludeColumns = append([]string(nil), report.DefaultExclude...)
	}
}

// ColumnFilter returns the export column filter.
func (c *Config) ColumnFilter() report.ColumnFilter {
	return report.NewColumnFilter(c.Export.ExcludeColumns)
}

// Spec converts l into an importer spec.
func (l LayoutConfig) Spec() (importer.Spec, error) {
	sel := model.NewSelector(l.Institution, l.Layout)
	known := make(map[alias.Field]bool)
	for _, f := range alias.Fields() {
		known[f] = true
	}
	table := make(alias.Table, len(l.Fields))
	for name, aliases := range l.Fields {
		f := alias.Field(strings.ToLower(strings.TrimSpace(name)))
		if !known[f] {
			return importer.Spec{}, fmt.Errorf("layout %s: unknown field %q", sel, name)
		}
		table[f] = aliases
	}
	ignore := l.IgnoreDescriptions
	if ignore == nil {
		ignore = importer.DefaultIgnoredDescriptions
	}
	return importer.Spec{
		Selector:           sel,
		HeaderRow:          l.HeaderRow,
		Aliases:            table,
		OutflowTokens:      l.OutflowTokens,
		InflowTokens:       l.InflowTokens,
		IgnoreDescriptions: ignore,
	}, nil
}

// Specs returns the built-in layouts with configured layouts applied: a configured
// layout replaces the built-in with the same selector, others are added in order.
func (c *Config) Specs() ([]importer.Spec, error) {
	specs := importer.BuiltinSpecs()
	index := make(map[model.Selector]int, len(specs))
	for i, s := range specs {
		index[s.Selector] = i
	}
	for _, l := range c.Layouts {
		s, err := l.Spec()
		if err != nil {
			return nil, err
		}
		if i, ok := index[s.Selector]; ok {
			specs[i] = s
			continue
		}
		index[s.Selector] = len(specs)
		specs = append(specs, s)
	}
	return specs, nil
}

// Registry builds the parser registry for c.
func (c *Config) Registry() (*importer.Registry, error) {
	specs, err := c.Specs()
	if err != nil {
		return nil, err
	}
	return importer.RegistryFromSpecs(specs)
}
