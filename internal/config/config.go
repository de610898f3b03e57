package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
)

const FileName = "itrunner.config.json"

// Schema sources.
const (
	SourceYAML     = "yaml"
	SourceJSON     = "json"
	SourceSQL      = "sql"
	SourceRaft     = "raft"
	SourceDatabase = "database"
)

type Config struct {
	Version  string   `json:"version" mapstructure:"version"`
	Schema   Schema   `json:"schema" mapstructure:"schema"`
	Database Database `json:"database" mapstructure:"database"`
	Gen      Gen      `json:"gen" mapstructure:"gen"`
}

type Schema struct {
	// Source is one of yaml, json, sql, raft or database. It is derived from
	// Path when empty.
	Source string `json:"source,omitempty" mapstructure:"source"`
	Path   string `json:"path" mapstructure:"path"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	// Driver picks the client library: pgx or pq for postgres, sqlite3 or
	// sqlite for sqlite. Empty selects the default.
	Driver   string `json:"driver,omitempty" mapstructure:"driver"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Gen struct {
	Out           string `json:"out" mapstructure:"out"`
	Package       string `json:"package,omitempty" mapstructure:"package"`
	Runner        bool   `json:"runner" mapstructure:"runner"`
	DefaultSeeder bool   `json:"default_seeder,omitempty" mapstructure:"default_seeder"`
}

// Load reads the configuration resolved by viper and fills in defaults.
func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.Schema.Path == "" {
		cfg.Schema.Path = "db/schema.yaml"
	}
	if cfg.Schema.Source == "" {
		cfg.Schema.Source = sourceFromPath(cfg.Schema.Path)
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.Gen.Out == "" {
		cfg.Gen.Out = "fixtures"
	}
	if cfg.Gen.Package == "" {
		cfg.Gen.Package = packageFromDir(cfg.Gen.Out)
	}
	if !viper.IsSet("gen.runner") {
		cfg.Gen.Runner = true
	}

	return &cfg, nil
}

// Default returns the configuration written by itrunner init.
func Default(provider string) *Config {
	return &Config{
		Version:  "1",
		Schema:   Schema{Source: SourceYAML, Path: "db/schema.yaml"},
		Database: Database{Provider: provider, URLEnv: "DATABASE_URL"},
		Gen:      Gen{Out: "fixtures", Package: "fixtures", Runner: true, DefaultSeeder: true},
	}
}

func sourceFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SourceYAML
	case ".json":
		return SourceJSON
	case ".raft":
		return SourceRaft
	default:
		// .sql files or a directory of them
		return SourceSQL
	}
}

func packageFromDir(dir string) string {
	name := strings.ToLower(filepath.Base(filepath.Clean(dir)))
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, name)
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return "fixtures"
	}
	return name
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// Dialect maps the configured provider onto a fixture dialect.
func (c *Config) Dialect() (fixture.Dialect, error) {
	return fixture.ParseDialect(c.Database.Provider)
}

func (c *Config) Validate() error {
	if _, err := c.Dialect(); err != nil {
		return fmt.Errorf("%w. Supported providers: [postgresql postgres mysql sqlite sqlite3]", err)
	}

	switch c.Schema.Source {
	case SourceYAML, SourceJSON, SourceSQL, SourceRaft, SourceDatabase:
	default:
		return fmt.Errorf("unsupported schema source: %s", c.Schema.Source)
	}

	if c.Schema.Source != SourceDatabase && c.Schema.Path == "" {
		return fmt.Errorf("schema.path cannot be empty")
	}

	if c.Gen.Out == "" {
		return fmt.Errorf("gen.out cannot be empty")
	}

	return nil
}

// GetSchemaFiles returns the schema files to load. A directory yields every
// file matching the source, sorted by name. The database source has no files.
func (c *Config) GetSchemaFiles() ([]string, error) {
	if c.Schema.Source == SourceDatabase {
		return nil, nil
	}

	info, err := os.Stat(c.Schema.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema path %s: %w", c.Schema.Path, err)
	}
	if !info.IsDir() {
		return []string{c.Schema.Path}, nil
	}

	entries, err := os.ReadDir(c.Schema.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", c.Schema.Path, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && matchesSource(entry.Name(), c.Schema.Source) {
			files = append(files, filepath.Join(c.Schema.Path, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no %s schema files found in %s", c.Schema.Source, c.Schema.Path)
	}
	return files, nil
}

func matchesSource(name, source string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch source {
	case SourceYAML:
		return ext == ".yaml" || ext == ".yml"
	case SourceJSON:
		return ext == ".json"
	case SourceRaft:
		return ext == ".raft"
	default:
		return ext == ".sql"
	}
}
