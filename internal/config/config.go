// Package config handles TOML configuration loading with environment
// variable substitution and validation into typed settings.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure as it appears on disk.
type Config struct {
	Log     LogConfig               `toml:"log"`
	Cache   CacheConfig             `toml:"cache"`
	Catalog CatalogConfig           `toml:"catalog"`
	Library LibraryConfig           `toml:"library"`
	Indexer IndexerConfig           `toml:"indexer"`
	Limits  LimitsConfig            `toml:"limits"`
	Budgets map[string]BudgetConfig `toml:"budgets"`
	Search  SearchConfig            `toml:"search"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type CacheConfig struct {
	TTL  duration `toml:"ttl"`
	Path string   `toml:"path"`
}

type CatalogConfig struct {
	TMDB *TMDBConfig `toml:"tmdb"`
}

type TMDBConfig struct {
	APIKey   string   `toml:"api_key"`
	Language string   `toml:"language"`
	Region   string   `toml:"region"`
	Timeout  duration `toml:"timeout"`
}

type LibraryConfig struct {
	Sonarr *ManagerConfig `toml:"sonarr"`
	Radarr *ManagerConfig `toml:"radarr"`
}

type ManagerConfig struct {
	URL     string   `toml:"url"`
	APIKey  string   `toml:"api_key"`
	Timeout duration `toml:"timeout"`
}

type IndexerConfig struct {
	Prowlarr *ProwlarrConfig `toml:"prowlarr"`
}

type ProwlarrConfig struct {
	URL        string   `toml:"url"`
	APIKey     string   `toml:"api_key"`
	PageSize   int      `toml:"page_size"`
	MaxResults int      `toml:"max_results"`
	Timeout    duration `toml:"timeout"`
}

// LimitsConfig is the default outbound budget applied to every
// collaborator; Budgets overrides it per collaborator name.
type LimitsConfig struct {
	MaxInFlight int     `toml:"max_in_flight"`
	PerSecond   float64 `toml:"per_second"`
	Burst       int     `toml:"burst"`
}

type BudgetConfig struct {
	MaxInFlight int     `toml:"max_in_flight"`
	PerSecond   float64 `toml:"per_second"`
	Burst       int     `toml:"burst"`
}

type SearchConfig struct {
	MaxTitles  int `toml:"max_titles"`
	MinSeeders int `toml:"min_seeders"`
}

// duration wraps time.Duration for TOML string values like "15m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Cache.TTL.Duration == 0 {
		cfg.Cache.TTL.Duration = 15 * time.Minute
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "./data/wantarr.db"
	}
	if cfg.Limits.MaxInFlight == 0 {
		cfg.Limits.MaxInFlight = 4
	}
	if cfg.Limits.PerSecond == 0 {
		cfg.Limits.PerSecond = 5
	}
	if cfg.Limits.Burst == 0 {
		cfg.Limits.Burst = 5
	}
	if cfg.Search.MaxTitles == 0 {
		cfg.Search.MaxTitles = 5
	}

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
