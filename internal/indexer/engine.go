package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/wantarr/internal/metadata"
	"github.com/vmunix/wantarr/internal/ratelimit"
)

// ErrSearchFailed indicates the aggregator returned no usable results at all.
var ErrSearchFailed = errors.New("indexer: search failed")

// Torznab categories for the media types we query.
const (
	categoryMovie  = 2000
	categorySeries = 5000
)

const dispatchName = "prowlarr"

// Searcher fetches one page of raw releases from the aggregator.
type Searcher interface {
	Search(ctx context.Context, query string, categories []int, limit, offset int) ([]Release, error)
}

// Result holds the candidates for one search plus any degradation note.
type Result struct {
	Candidates []Candidate
	// Degraded is set when pagination stopped early on an upstream error
	// and the candidate list is a truncated view.
	Degraded string
}

// Engine runs paginated aggregator searches and shapes releases into
// ranked-ready candidates.
type Engine struct {
	searcher   Searcher
	dispatcher *ratelimit.Dispatcher
	pageSize   int
	maxResults int
	minSeeders int
	timeout    time.Duration
	log        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMinSeeders drops releases below the given seeder count.
func WithMinSeeders(n int) EngineOption {
	return func(e *Engine) { e.minSeeders = n }
}

// WithPageSize sets the aggregator page size.
func WithPageSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithMaxResults caps how many releases are collected across pages.
func WithMaxResults(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

// WithTimeout sets the per-page deadline applied to each aggregator
// call.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a search engine over the given aggregator.
func NewEngine(searcher Searcher, dispatcher *ratelimit.Dispatcher, log *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		searcher:   searcher,
		dispatcher: dispatcher,
		pageSize:   100,
		maxResults: 500,
		timeout:    15 * time.Second,
		log:        log.With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search queries the aggregator for the title, walking pages until a short
// page, the result cap, or an upstream failure. A failure on the first page
// is an error; a failure on a later page degrades to the partial results
// collected so far.
func (e *Engine) Search(ctx context.Context, title metadata.Title) (*Result, error) {
	query := title.Name
	categories := categoriesFor(title.MediaType)

	var releases []Release
	offset := 0
	for offset < e.maxResults {
		limit := e.pageSize
		if remaining := e.maxResults - offset; remaining < limit {
			limit = remaining
		}

		page, err := e.searchPage(ctx, query, categories, limit, offset)
		if err != nil {
			if offset == 0 {
				return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
			}
			e.log.Warn("search page failed, returning partial results",
				"query", query, "offset", offset, "error", err)
			return &Result{
				Candidates: e.shape(releases),
				Degraded:   fmt.Sprintf("search results truncated at %d releases", len(releases)),
			}, nil
		}

		releases = append(releases, page...)
		if len(page) < limit {
			break
		}
		offset += len(page)
	}

	e.log.Debug("search complete", "query", query, "releases", len(releases))
	return &Result{Candidates: e.shape(releases)}, nil
}

// searchPage fetches one page under the dispatcher's budget with a
// per-page deadline, so an exhausted budget fails instead of queuing
// until tokens free up.
func (e *Engine) searchPage(ctx context.Context, query string, categories []int, limit, offset int) ([]Release, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var page []Release
	err := e.dispatcher.Do(ctx, dispatchName, func(ctx context.Context) error {
		var ferr error
		page, ferr = e.searcher.Search(ctx, query, categories, limit, offset)
		return ferr
	})
	return page, err
}

// shape filters releases by seeder floor and derives candidate fields.
func (e *Engine) shape(releases []Release) []Candidate {
	candidates := make([]Candidate, 0, len(releases))
	for _, r := range releases {
		if r.Seeders < e.minSeeders {
			continue
		}
		c := Candidate{
			Title:       r.Title,
			DownloadURL: r.DownloadURL,
			SizeBytes:   r.Size,
			Seeders:     r.Seeders,
			Leechers:    r.Leechers,
			Indexer:     r.Indexer,
			PublishedAt: r.PublishDate,
		}
		c.derive()
		candidates = append(candidates, c)
	}
	return candidates
}

func categoriesFor(mt metadata.MediaType) []int {
	switch mt {
	case metadata.MediaSeries:
		return []int{categorySeries}
	default:
		return []int{categoryMovie}
	}
}
