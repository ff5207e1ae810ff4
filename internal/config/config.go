// Package config loads engine configuration for the SQL rewrite pipeline.
// It is decoupled from CLI concerns so the engine and any future serving
// layer can share it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "munerosql.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "munerosql.yml"

// envPrefix namespaces environment overrides, e.g. MUNEROSQL_DIALECT=postgres.
const envPrefix = "MUNEROSQL_"

// Config holds the tunable behavior of the rewrite pipeline.
type Config struct {
	// Dialect selects SQL generation rules: "sqlite" or "postgres".
	Dialect string `koanf:"dialect"`

	// FactTable is the orders fact table queries must target.
	FactTable string `koanf:"fact_table"`

	// AutoPlaceholder enables best-effort placeholder insertion when a
	// generated query omits the filter token.
	AutoPlaceholder bool `koanf:"auto_placeholder"`

	// BroadenColumns lists text columns whose exact-equality predicates are
	// relaxed to substring matches on retry.
	BroadenColumns []string `koanf:"broaden_columns"`

	// Verbose enables debug logging, including redacted query heads.
	Verbose bool `koanf:"verbose"`
}

func defaults() map[string]any {
	return map[string]any{
		"dialect":          "sqlite",
		"fact_table":       "fact_orders",
		"auto_placeholder": true,
		"broaden_columns":  []string{"client_name", "product_brand", "supplier_name"},
		"verbose":          false,
	}
}

// ParsedDialect resolves the configured dialect name.
func (c *Config) ParsedDialect() (safesql.Dialect, error) {
	return safesql.ParseDialect(c.Dialect)
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if _, err := c.ParsedDialect(); err != nil {
		return err
	}
	if c.FactTable == "" {
		return fmt.Errorf("fact_table is required")
	}
	return nil
}

// Load builds a Config from defaults, an optional YAML file, and environment
// overrides, in that order of precedence. An empty path means no file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir loads configuration from munerosql.yaml or munerosql.yml in
// the given directory, falling back to defaults when neither exists.
func LoadFromDir(dir string) (*Config, error) {
	return Load(findConfigFile(dir))
}

// findConfigFile finds the config file in the given directory.
// Returns empty string if not found.
func findConfigFile(dir string) string {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}

	ymlPath := filepath.Join(dir, ConfigFileNameAlt)
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}

	return ""
}
