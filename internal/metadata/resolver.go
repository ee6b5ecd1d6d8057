package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/vmunix/wantarr/internal/cache"
	"github.com/vmunix/wantarr/internal/ratelimit"
	"github.com/vmunix/wantarr/internal/tmdb"
	"github.com/vmunix/wantarr/pkg/release"
)

// collaborator name used for dispatcher budgets and external ids.
const catalogName = "tmdb"

// maxResolved caps how many ambiguous matches the resolver returns.
const maxResolved = 10

// Catalog is the slice of the TMDB client the resolver consumes.
type Catalog interface {
	SearchMulti(ctx context.Context, query, language, region string) ([]tmdb.SearchResult, error)
	Movie(ctx context.Context, id int64, language string) (*tmdb.SearchResult, error)
	TV(ctx context.Context, id int64, language string) (*tmdb.SearchResult, error)
	TVExternalIDs(ctx context.Context, id int64) (*tmdb.ExternalIDs, error)
}

// Resolver turns a free-text or id query into ranked canonical
// Titles. Lookups run under the dispatcher's catalog budget and are
// memoized in memory, optionally backed by a persistent store.
type Resolver struct {
	catalog    Catalog
	dispatcher *ratelimit.Dispatcher
	memory     *cache.Cache[[]Title]
	store      *cache.Store
	storeTTL   time.Duration
	timeout    time.Duration
	language   string
	region     string
	log        *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStore adds a persistent second-level cache with the given TTL.
func WithStore(store *cache.Store, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.store = store
		r.storeTTL = ttl
	}
}

// WithTimeout sets the per-call deadline applied to each catalog
// lookup.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewResolver creates a resolver. language and region are the
// defaults applied when a query does not carry its own.
func NewResolver(catalog Catalog, dispatcher *ratelimit.Dispatcher, memory *cache.Cache[[]Title], lang, region string, log *slog.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{
		catalog:    catalog,
		dispatcher: dispatcher,
		memory:     memory,
		timeout:    10 * time.Second,
		language:   lang,
		region:     region,
		log:        log.With("component", "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns Titles matching the query, best match first. Free
// text may match several titles; a catalog-native id ("tmdb:603" or a
// bare number) resolves to at most one. lang/region default to the
// resolver's configured pair when empty.
func (r *Resolver) Resolve(ctx context.Context, query, lang, region string) ([]Title, error) {
	query = release.NormalizeSearchQuery(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrNotFound)
	}

	if lang == "" {
		lang = r.language
	}
	if region == "" {
		region = r.region
	}
	if _, err := language.Parse(lang); err != nil {
		return nil, fmt.Errorf("%w: language %q", ErrBadLocale, lang)
	}
	if _, err := language.ParseRegion(region); err != nil {
		return nil, fmt.Errorf("%w: region %q", ErrBadLocale, region)
	}

	key := cache.Key("resolve", query, lang, region)
	titles, err := r.memory.GetOrFetch(ctx, key, func(ctx context.Context) ([]Title, error) {
		return r.fetch(ctx, key, query, lang, region)
	})
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return titles, nil
}

func (r *Resolver) fetch(ctx context.Context, key, query, lang, region string) ([]Title, error) {
	if cached, ok := r.storeGet(ctx, key); ok {
		return cached, nil
	}

	var titles []Title
	var err error
	if id, ok := parseIDQuery(query); ok {
		titles, err = r.resolveByID(ctx, id, lang)
	} else {
		titles, err = r.resolveByText(ctx, query, lang, region)
	}
	if err != nil {
		return nil, err
	}

	r.storeSet(ctx, key, titles)
	return titles, nil
}

// do runs one catalog call under the dispatcher's budget with a
// per-call deadline, so an exhausted budget fails instead of queuing
// until tokens free up.
func (r *Resolver) do(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.dispatcher.Do(ctx, catalogName, fn)
}

func (r *Resolver) resolveByText(ctx context.Context, query, lang, region string) ([]Title, error) {
	var results []tmdb.SearchResult
	err := r.do(ctx, func(ctx context.Context) error {
		var cerr error
		results, cerr = r.catalog.SearchMulti(ctx, query, lang, region)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	// Rank ambiguous matches: title similarity first, catalog
	// popularity as the tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		si := release.Similarity(query, results[i].DisplayName())
		sj := release.Similarity(query, results[j].DisplayName())
		if si != sj {
			return si > sj
		}
		return results[i].Popularity > results[j].Popularity
	})

	if len(results) > maxResolved {
		results = results[:maxResolved]
	}

	titles := make([]Title, 0, len(results))
	for i := range results {
		titles = append(titles, r.toTitle(ctx, &results[i]))
	}
	return titles, nil
}

// resolveByID tries the id as a movie first, then as a series.
func (r *Resolver) resolveByID(ctx context.Context, id int64, lang string) ([]Title, error) {
	var result *tmdb.SearchResult
	err := r.do(ctx, func(ctx context.Context) error {
		var cerr error
		result, cerr = r.catalog.Movie(ctx, id, lang)
		return cerr
	})
	if errors.Is(err, tmdb.ErrNotFound) {
		err = r.do(ctx, func(ctx context.Context) error {
			var cerr error
			result, cerr = r.catalog.TV(ctx, id, lang)
			return cerr
		})
	}
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []Title{r.toTitle(ctx, result)}, nil
}

// toTitle converts a catalog result, filling the external-id mapping.
// For series the TVDB id is fetched too, since series library
// managers key on it; a failure there degrades to a missing mapping
// rather than failing the resolution.
func (r *Resolver) toTitle(ctx context.Context, result *tmdb.SearchResult) Title {
	t := Title{
		ID:          result.ID,
		Name:        result.DisplayName(),
		Year:        result.Year(),
		Overview:    result.Overview,
		Language:    result.OriginalLanguage,
		Popularity:  result.Popularity,
		VoteAverage: result.VoteAverage,
		VoteCount:   result.VoteCount,
		Genres:      tmdb.GenreNames(result.GenreIDs),
		Adult:       result.Adult,
		ExternalIDs: map[string]string{
			IDTMDB: strconv.FormatInt(result.ID, 10),
		},
	}

	switch result.MediaType {
	case tmdb.MediaTV:
		t.MediaType = MediaSeries
		var ids *tmdb.ExternalIDs
		err := r.do(ctx, func(ctx context.Context) error {
			var cerr error
			ids, cerr = r.catalog.TVExternalIDs(ctx, result.ID)
			return cerr
		})
		if err != nil {
			r.log.Warn("external id lookup failed", "title", t.Name, "error", err)
		} else if ids != nil {
			if ids.TVDBID != 0 {
				t.ExternalIDs[IDTVDB] = strconv.FormatInt(ids.TVDBID, 10)
			}
			if ids.IMDBID != "" {
				t.ExternalIDs[IDIMDB] = ids.IMDBID
			}
		}
	default:
		t.MediaType = MediaMovie
	}

	return t
}

func (r *Resolver) storeGet(ctx context.Context, key string) ([]Title, bool) {
	if r.store == nil {
		return nil, false
	}
	data, ok := r.store.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var titles []Title
	if err := json.Unmarshal(data, &titles); err != nil {
		r.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil, false
	}
	return titles, true
}

func (r *Resolver) storeSet(ctx context.Context, key string, titles []Title) {
	if r.store == nil || len(titles) == 0 {
		return
	}
	data, err := json.Marshal(titles)
	if err != nil {
		return
	}
	if err := r.store.Set(ctx, key, data, r.storeTTL); err != nil {
		r.log.Warn("persistent cache write failed", "key", key, "error", err)
	}
}

// parseIDQuery recognizes catalog-native id queries: "tmdb:603" or a
// bare number.
func parseIDQuery(query string) (int64, bool) {
	s := strings.TrimPrefix(strings.ToLower(query), "tmdb:")
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
