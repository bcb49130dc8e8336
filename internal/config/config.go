package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `koanf:"-"`
	SourcePath  string `koanf:"source_path"`

	// Output settings
	OutputJSONFile string `koanf:"output_json_file"`
	OutputJSONDir  string `koanf:"output_json_dir"`

	// Discovery settings
	Workers       int      `koanf:"workers"`
	PathsToIgnore []string `koanf:"paths_to_ignore"`

	// Catalog database used by sync
	Database Database `koanf:"database"`

	// Command flags
	Flags Flags `koanf:"-"`
}

// Database holds MySQL connection settings
type Database struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
}

// Flags holds command-line flags
type Flags struct {
	Verbosity   int
	SourcePath  string
	Workers     int
	NameFilter  string
	FilePattern string
	Area        string
	Category    string
	Tags        []string
	MaxPriority int // Negative when unset
	ShowCases   bool
	From        string
	Output      string
	Metrics     string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		SourcePath:     DefaultSourcePath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Workers:        DefaultWorkers,
		Database: Database{
			Host: DefaultDatabaseHost,
			Port: DefaultDatabasePort,
			User: DefaultDatabaseUser,
			Name: DefaultDatabaseName,
		},
	}
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load builds the configuration for the project at projectPath.
// Layers, lowest first: defaults, <project>/tcat.toml, <project>/.env,
// TCAT_* environment variables. Nested keys use a double underscore,
// e.g. TCAT_DATABASE__HOST.
func Load(projectPath string) (*Config, error) {
	if projectPath == "" {
		projectPath = DefaultProjectPath
	}
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := filepath.Join(projectPath, DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	}

	// .env might not exist, that's okay - use environment variables
	if err := godotenv.Load(filepath.Join(projectPath, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.ProjectPath = projectPath
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &cfg, nil
}

// ApplyFlags stores flags and applies their overrides
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
}

// GetSourcePath returns the discovery root, using the flag if provided
func (c *Config) GetSourcePath() string {
	if c.Flags.SourcePath != "" {
		// Relative flag values are taken from the project path
		if filepath.IsAbs(c.Flags.SourcePath) {
			return c.Flags.SourcePath
		}
		return filepath.Join(c.ProjectPath, c.Flags.SourcePath)
	}
	if filepath.IsAbs(c.SourcePath) {
		return c.SourcePath
	}
	return filepath.Join(c.ProjectPath, c.SourcePath)
}

// GetOutputPath returns the absolute path of the catalog export file.
// The --output flag wins over the configured location.
func (c *Config) GetOutputPath() string {
	p := c.Flags.Output
	if p == "" {
		p = filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
