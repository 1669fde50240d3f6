// Package config loads the YAML configuration of the schtree command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceLocal  = "local"
	SourceS3     = "s3"
	SourceMinio  = "minio"
	SourceSQLite = "sqlite"
)

// Config is the top-level configuration file.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Build  BuildConfig  `yaml:"build"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// SourceConfig selects where datasets are read from.
type SourceConfig struct {
	Kind string `yaml:"kind"`
	// Root is the directory for local sources.
	Root string `yaml:"root,omitempty"`
	// Dims fixes the CSV coordinate count. 0 infers it.
	Dims int `yaml:"dims,omitempty"`

	Bucket       string `yaml:"bucket,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty"`

	// MinIO credentials. Supports ${ENV_VAR} expansion.
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Secure    bool   `yaml:"secure,omitempty"`

	// SQLite table layout; the database path is the --data argument.
	Table  string `yaml:"table,omitempty"`
	Column string `yaml:"column,omitempty"`
}

// BuildConfig mirrors the tree build options.
type BuildConfig struct {
	LeafSize    int   `yaml:"leaf_size,omitempty"`
	Copy        bool  `yaml:"copy,omitempty"`
	MemoryLimit int64 `yaml:"memory_limit,omitempty"`
}

// SearchConfig mirrors the query options.
type SearchConfig struct {
	Workers          int     `yaml:"workers,omitempty"`
	QueriesPerSecond float64 `yaml:"queries_per_second,omitempty"`
	Burst            int     `yaml:"burst,omitempty"`
}

// LogConfig controls the command's logger.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:   SourceLocal,
			Table:  "points",
			Column: "embedding",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path. An empty path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default, expands ${ENV_VAR} references and
// validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) expandEnvVars() {
	c.Source.Root = os.ExpandEnv(c.Source.Root)
	c.Source.Bucket = os.ExpandEnv(c.Source.Bucket)
	c.Source.Endpoint = os.ExpandEnv(c.Source.Endpoint)
	c.Source.AccessKey = os.ExpandEnv(c.Source.AccessKey)
	c.Source.SecretKey = os.ExpandEnv(c.Source.SecretKey)
}

// Validate checks field ranges and source-specific requirements.
func (c *Config) Validate() error {
	c.Source.Kind = strings.ToLower(c.Source.Kind)

	switch c.Source.Kind {
	case SourceLocal, SourceSQLite:
	case SourceS3:
		if c.Source.Bucket == "" {
			return errors.New("source.bucket is required for s3")
		}
	case SourceMinio:
		if c.Source.Bucket == "" || c.Source.Endpoint == "" {
			return errors.New("source.bucket and source.endpoint are required for minio")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}

	if c.Source.Dims < 0 {
		return fmt.Errorf("source.dims must be >= 0, got %d", c.Source.Dims)
	}
	if c.Build.LeafSize < 0 {
		return fmt.Errorf("build.leaf_size must be >= 0, got %d", c.Build.LeafSize)
	}
	if c.Build.MemoryLimit < 0 {
		return fmt.Errorf("build.memory_limit must be >= 0, got %d", c.Build.MemoryLimit)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must be >= 0, got %d", c.Search.Workers)
	}
	if c.Search.QueriesPerSecond < 0 || c.Search.Burst < 0 {
		return errors.New("search rate limit must be >= 0")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. An empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return lvl, nil
}
