package config

import (
	"fmt"
	"net/url"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Settings is the validated, immutable view of a Config. Enablement
// of each collaborator is decided exactly once here: a collaborator
// is enabled iff its URL and API key are both present. Nothing is
// enabled by default.
type Settings struct {
	LogLevel string
	Cache    CacheSettings
	TMDB     TMDBSettings
	Sonarr   ManagerSettings
	Radarr   ManagerSettings
	Prowlarr ProwlarrSettings
	Budgets  map[string]Budget
	Search   SearchSettings
}

type CacheSettings struct {
	TTL  time.Duration
	Path string
}

type TMDBSettings struct {
	APIKey   string
	Language string
	Region   string
	Timeout  time.Duration
}

type ManagerSettings struct {
	Enabled bool
	URL     string
	APIKey  string
	Timeout time.Duration
}

type ProwlarrSettings struct {
	Enabled    bool
	URL        string
	APIKey     string
	PageSize   int
	MaxResults int
	Timeout    time.Duration
}

// Budget bounds outbound calls to one collaborator.
type Budget struct {
	MaxInFlight int
	PerSecond   float64
	Burst       int
}

type SearchSettings struct {
	MaxTitles  int
	MinSeeders int
}

// Validate checks the configuration and produces typed settings.
func (c *Config) Validate() (*Settings, error) {
	cerr := &ConfigError{}

	if !validLogLevels[c.Log.Level] {
		cerr.Errors = append(cerr.Errors, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	s := &Settings{
		LogLevel: c.Log.Level,
		Cache: CacheSettings{
			TTL:  c.Cache.TTL.Duration,
			Path: c.Cache.Path,
		},
		Search: SearchSettings{
			MaxTitles:  c.Search.MaxTitles,
			MinSeeders: c.Search.MinSeeders,
		},
	}

	// Catalog is the one mandatory collaborator: without it nothing
	// can be resolved.
	if c.Catalog.TMDB == nil || c.Catalog.TMDB.APIKey == "" {
		cerr.Errors = append(cerr.Errors, "catalog.tmdb.api_key: required")
	} else {
		s.TMDB = TMDBSettings{
			APIKey:   c.Catalog.TMDB.APIKey,
			Language: defaultString(c.Catalog.TMDB.Language, "en"),
			Region:   defaultString(c.Catalog.TMDB.Region, "US"),
			Timeout:  defaultDuration(c.Catalog.TMDB.Timeout.Duration, 10*time.Second),
		}
	}

	s.Sonarr = validateManager(cerr, "library.sonarr", c.Library.Sonarr)
	s.Radarr = validateManager(cerr, "library.radarr", c.Library.Radarr)

	if p := c.Indexer.Prowlarr; p != nil {
		checkURL(cerr, "indexer.prowlarr.url", p.URL)
		if p.APIKey == "" {
			cerr.Errors = append(cerr.Errors, "indexer.prowlarr.api_key: required when prowlarr is configured")
		}
		s.Prowlarr = ProwlarrSettings{
			Enabled:    p.URL != "" && p.APIKey != "",
			URL:        p.URL,
			APIKey:     p.APIKey,
			PageSize:   defaultInt(p.PageSize, 100),
			MaxResults: defaultInt(p.MaxResults, 500),
			Timeout:    defaultDuration(p.Timeout.Duration, 15*time.Second),
		}
	}

	defaults := Budget{
		MaxInFlight: c.Limits.MaxInFlight,
		PerSecond:   c.Limits.PerSecond,
		Burst:       c.Limits.Burst,
	}
	s.Budgets = map[string]Budget{
		"tmdb":     defaults,
		"sonarr":   defaults,
		"radarr":   defaults,
		"prowlarr": defaults,
	}
	for name, b := range c.Budgets {
		if _, ok := s.Budgets[name]; !ok {
			cerr.Errors = append(cerr.Errors, fmt.Sprintf("budgets.%s: unknown collaborator", name))
			continue
		}
		override := defaults
		if b.MaxInFlight != 0 {
			override.MaxInFlight = b.MaxInFlight
		}
		if b.PerSecond != 0 {
			override.PerSecond = b.PerSecond
		}
		if b.Burst != 0 {
			override.Burst = b.Burst
		}
		s.Budgets[name] = override
	}

	if cerr.HasErrors() {
		return nil, cerr
	}
	return s, nil
}

func validateManager(cerr *ConfigError, key string, mc *ManagerConfig) ManagerSettings {
	if mc == nil {
		return ManagerSettings{}
	}
	checkURL(cerr, key+".url", mc.URL)
	if mc.APIKey == "" {
		cerr.Errors = append(cerr.Errors, key+".api_key: required when "+key+" is configured")
	}
	return ManagerSettings{
		Enabled: mc.URL != "" && mc.APIKey != "",
		URL:     mc.URL,
		APIKey:  mc.APIKey,
		Timeout: defaultDuration(mc.Timeout.Duration, 10*time.Second),
	}
}

func checkURL(cerr *ConfigError, key, raw string) {
	if raw == "" {
		cerr.Errors = append(cerr.Errors, key+": required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		cerr.Errors = append(cerr.Errors, fmt.Sprintf("%s: not a valid URL: %q", key, raw))
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func defaultDuration(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}
