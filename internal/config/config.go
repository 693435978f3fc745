package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Discovery  DiscoveryConfig  `toml:"discovery"`
	Extraction ExtractionConfig `toml:"extraction"`
	Batch      BatchConfig      `toml:"batch"`
	Remote     RemoteConfig     `toml:"remote"`
	Output     OutputConfig     `toml:"output"`
	Store      StoreConfig      `toml:"store"`
}

// DiscoveryConfig controls which files are considered knowledge sources.
type DiscoveryConfig struct {
	DocsDir  string   `toml:"docs_dir"`
	MaxDepth int      `toml:"max_depth"`
	Exclude  []string `toml:"exclude"`
}

// ExtractionConfig controls the block extraction stage.
type ExtractionConfig struct {
	Concurrency int `toml:"concurrency"`
}

// BatchConfig controls multi-repository runs.
type BatchConfig struct {
	Concurrency int  `toml:"concurrency"`
	Strict      bool `toml:"strict"`
}

// RemoteConfig holds settings for default-branch lookups on code hosts.
type RemoteConfig struct {
	Enabled           bool       `toml:"enabled"`
	RequestsPerSecond float64    `toml:"requests_per_second"`
	CacheSize         int        `toml:"cache_size"`
	GitHub            HostConfig `toml:"github"`
	GitLab            HostConfig `toml:"gitlab"`
}

// HostConfig holds the API endpoint and credentials of one code host.
type HostConfig struct {
	BaseURL     string `toml:"base_url"`
	TokenSource string `toml:"token_source"`
	Token       string `toml:"token"`
	TokenEnv    string `toml:"token_env"`
}

// OutputConfig selects the serialization format and destination.
type OutputConfig struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

// StoreConfig configures optional persistence. An empty DSN disables it.
type StoreConfig struct {
	DSN string `toml:"dsn"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			DocsDir:  "docs",
			MaxDepth: 3,
		},
		Extraction: ExtractionConfig{
			Concurrency: 4,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Remote: RemoteConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			CacheSize:         256,
			GitHub: HostConfig{
				TokenSource: "env",
				TokenEnv:    "GITHUB_TOKEN",
			},
			GitLab: HostConfig{
				BaseURL:     "https://gitlab.com",
				TokenSource: "env",
				TokenEnv:    "GITLAB_TOKEN",
			},
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// DefaultPath returns ~/.config/fragminer/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fragminer", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
