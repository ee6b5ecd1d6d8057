package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vmunix/wantarr/internal/cache"
	"github.com/vmunix/wantarr/internal/config"
	"github.com/vmunix/wantarr/internal/indexer"
	"github.com/vmunix/wantarr/internal/library"
	"github.com/vmunix/wantarr/internal/metadata"
	"github.com/vmunix/wantarr/internal/orchestrator"
	"github.com/vmunix/wantarr/internal/ratelimit"
	"github.com/vmunix/wantarr/internal/tmdb"
)

// app is everything a command needs once the config is wired up.
type app struct {
	orch     *orchestrator.Orchestrator
	resolver *metadata.Resolver
	settings *config.Settings
	log      *slog.Logger
	db       *sql.DB
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// buildApp loads the config and assembles the full pipeline: catalog
// client, library managers, indexer engine, dispatcher, caches,
// orchestrator.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(settings.LogLevel),
	}))

	dispatcher := ratelimit.New(ratelimit.Budget{
		MaxInFlight: 4,
		PerSecond:   5,
		Burst:       5,
	}, log)
	for name, b := range settings.Budgets {
		dispatcher.Configure(name, ratelimit.Budget{
			MaxInFlight: b.MaxInFlight,
			PerSecond:   b.PerSecond,
			Burst:       b.Burst,
		})
	}

	a := &app{settings: settings, log: log}

	catalog := tmdb.NewClient(settings.TMDB.APIKey,
		tmdb.WithHTTPClient(&http.Client{Timeout: settings.TMDB.Timeout}))

	resolverOpts := []metadata.Option{metadata.WithTimeout(settings.TMDB.Timeout)}
	if settings.Cache.Path != "" {
		db, err := sql.Open("sqlite", settings.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache db: %w", err)
		}
		store := cache.NewStore(db)
		if err := store.Init(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("init cache db: %w", err)
		}
		a.db = db
		resolverOpts = append(resolverOpts, metadata.WithStore(store, settings.Cache.TTL))
	}

	titleCache := cache.New[[]metadata.Title](settings.Cache.TTL)
	a.resolver = metadata.NewResolver(catalog, dispatcher, titleCache,
		settings.TMDB.Language, settings.TMDB.Region, log, resolverOpts...)

	var managers []library.Manager
	if settings.Sonarr.Enabled {
		managers = append(managers, library.NewSonarr(settings.Sonarr.URL, settings.Sonarr.APIKey, settings.Sonarr.Timeout))
	}
	if settings.Radarr.Enabled {
		managers = append(managers, library.NewRadarr(settings.Radarr.URL, settings.Radarr.APIKey, settings.Radarr.Timeout))
	}
	tracker := library.NewTracker(managers, dispatcher, managerTimeout(settings), log)

	orchOpts := []orchestrator.Option{
		orchestrator.WithLocale(settings.TMDB.Language, settings.TMDB.Region),
		orchestrator.WithMaxTitles(settings.Search.MaxTitles),
	}
	if settings.Prowlarr.Enabled {
		client := indexer.NewProwlarrClient(settings.Prowlarr.URL, settings.Prowlarr.APIKey, settings.Prowlarr.Timeout)
		engine := indexer.NewEngine(client, dispatcher, log,
			indexer.WithPageSize(settings.Prowlarr.PageSize),
			indexer.WithMaxResults(settings.Prowlarr.MaxResults),
			indexer.WithMinSeeders(settings.Search.MinSeeders),
			indexer.WithTimeout(settings.Prowlarr.Timeout))
		orchOpts = append(orchOpts, orchestrator.WithIndexer(engine))
	}

	results := cache.New[[]orchestrator.Result](settings.Cache.TTL)
	a.orch = orchestrator.New(a.resolver, tracker, results, log, orchOpts...)
	return a, nil
}

// managerTimeout bounds each library lookup with the longest
// configured manager timeout.
func managerTimeout(s *config.Settings) time.Duration {
	t := s.Sonarr.Timeout
	if s.Radarr.Timeout > t {
		t = s.Radarr.Timeout
	}
	return t
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
