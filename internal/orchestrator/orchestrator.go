// Package orchestrator ties the catalog, libraries and indexer
// together into one search call. It owns the fan-out, the degradation
// rules and the composite result cache; the collaborators own the
// wire formats.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/wantarr/internal/cache"
	"github.com/vmunix/wantarr/internal/indexer"
	"github.com/vmunix/wantarr/internal/library"
	"github.com/vmunix/wantarr/internal/metadata"
	"github.com/vmunix/wantarr/internal/rank"
	"github.com/vmunix/wantarr/internal/ratelimit"
	"github.com/vmunix/wantarr/internal/status"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/mocks.go -package=mocks

// Resolver turns a free-text or id query into catalog titles.
type Resolver interface {
	Resolve(ctx context.Context, query, lang, region string) ([]metadata.Title, error)
}

// Library reports where a title stands across the library managers.
type Library interface {
	Snapshot(ctx context.Context, title metadata.Title) (*library.Snapshot, error)
}

// Indexer finds downloadable candidates for a title.
type Indexer interface {
	Search(ctx context.Context, title metadata.Title) (*indexer.Result, error)
}

// Result is one title with its reconciled status and ranked
// candidates.
type Result struct {
	Title      metadata.Title        `json:"title"`
	Status     status.DownloadStatus `json:"status"`
	Candidates []indexer.Candidate   `json:"candidates"`
}

const defaultMaxTitles = 5

// Orchestrator composes resolve, snapshot, search, rank and reconcile
// into Search and RefreshStatus.
type Orchestrator struct {
	resolver  Resolver
	tracker   Library
	indexer   Indexer // nil when no indexer is configured
	results   *cache.Cache[[]Result]
	language  string
	region    string
	maxTitles int
	now       func() time.Time
	log       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIndexer wires in a candidate search engine. Without one every
// result carries a detail noting candidates were not looked up.
func WithIndexer(ix Indexer) Option {
	return func(o *Orchestrator) { o.indexer = ix }
}

// WithMaxTitles caps how many resolved titles one search expands.
func WithMaxTitles(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTitles = n
		}
	}
}

// WithLocale sets the default catalog language and region.
func WithLocale(language, region string) Option {
	return func(o *Orchestrator) {
		o.language = language
		o.region = region
	}
}

// WithClock overrides the status timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an orchestrator. results caches whole Search responses
// under the query plus filter fingerprint.
func New(resolver Resolver, tracker Library, results *cache.Cache[[]Result], log *slog.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	o := &Orchestrator{
		resolver:  resolver,
		tracker:   tracker,
		results:   results,
		language:  "en",
		region:    "US",
		maxTitles: defaultMaxTitles,
		now:       time.Now,
		log:       log.With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Search resolves the query, narrows the titles by the filter, and
// assembles status and candidates for each survivor. The filter is
// validated before any network call. Cancelling ctx aborts this
// caller's wait; a fetch shared with other concurrent searches keeps
// running for them.
func (o *Orchestrator) Search(ctx context.Context, query string, spec rank.FilterSpec) ([]Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	key := cache.Key("search", query, o.language, o.region, fingerprint(spec))
	return o.results.GetOrFetch(ctx, key, func(ctx context.Context) ([]Result, error) {
		return o.search(ctx, query, spec)
	})
}

func (o *Orchestrator) search(ctx context.Context, query string, spec rank.FilterSpec) ([]Result, error) {
	titles, err := o.resolver.Resolve(ctx, query, o.language, o.region)
	if err != nil {
		return nil, err
	}

	selected := make([]metadata.Title, 0, o.maxTitles)
	for _, t := range titles {
		if !spec.MatchTitle(t) {
			continue
		}
		selected = append(selected, t)
		if len(selected) == o.maxTitles {
			break
		}
	}
	o.log.Debug("titles selected", "query", query, "resolved", len(titles), "selected", len(selected))

	results := make([]*Result, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, title := range selected {
		i, title := i, title
		g.Go(func() error {
			r, err := o.assemble(gctx, title, spec)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	sortResults(out, spec)
	return out, nil
}

// RefreshStatus re-reconciles one already-resolved title from live
// library state, for callers polling a download they kicked off.
func (o *Orchestrator) RefreshStatus(ctx context.Context, title metadata.Title) (status.DownloadStatus, error) {
	snap, err := o.tracker.Snapshot(ctx, title)
	if err != nil {
		if errors.Is(err, library.ErrAllSourcesUnavailable) {
			s := status.Reconcile(nil, nil, nil, o.now())
			s.Details = append(s.Details, "library status unavailable: all managers failed")
			return s, nil
		}
		return status.DownloadStatus{}, err
	}
	s := status.Reconcile(snap.Entries, snap.Queue, nil, o.now())
	s.Details = append(s.Details, snap.Degraded...)
	return s, nil
}

// assemble runs the library snapshot and the candidate search for one
// title concurrently and reconciles the outcome. Sub-lookup failures
// degrade to details on the status; only context cancellation aborts.
// A nil result (no error) means the title was dropped by a
// library-presence filter.
func (o *Orchestrator) assemble(ctx context.Context, title metadata.Title, spec rank.FilterSpec) (*Result, error) {
	var (
		wg         sync.WaitGroup
		snap       *library.Snapshot
		snapErr    error
		candidates []indexer.Candidate
		details    []string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		snap, snapErr = o.tracker.Snapshot(ctx, title)
	}()
	go func() {
		defer wg.Done()
		var detail string
		candidates, detail = o.findCandidates(ctx, title, spec)
		if detail != "" {
			details = append(details, detail)
		}
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if snapErr != nil {
		if !errors.Is(snapErr, library.ErrAllSourcesUnavailable) {
			return nil, snapErr
		}
		// Library state unknown: report what the indexer found and say
		// why the library side is blank.
		snap = &library.Snapshot{}
		details = append(details, "library status unavailable: all managers failed")
	}

	if spec.OnlyInLibrary && len(snap.Entries) == 0 {
		return nil, nil
	}
	if spec.ExcludeInLibrary && len(snap.Entries) > 0 {
		return nil, nil
	}

	st := status.Reconcile(snap.Entries, snap.Queue, candidates, o.now())
	st.Details = append(st.Details, snap.Degraded...)
	st.Details = append(st.Details, details...)

	return &Result{Title: title, Status: st, Candidates: candidates}, nil
}

// findCandidates queries the indexer and ranks the hits. Failures
// never abort the title; they come back as a detail string.
func (o *Orchestrator) findCandidates(ctx context.Context, title metadata.Title, spec rank.FilterSpec) ([]indexer.Candidate, string) {
	if o.indexer == nil {
		return nil, "indexer not configured, candidates skipped"
	}
	res, err := o.indexer.Search(ctx, title)
	if err != nil {
		switch {
		case errors.Is(err, ratelimit.ErrRateLimited):
			o.log.Warn("indexer rate limited", "title", title.Name)
			return nil, "indexer rate limited, candidates skipped"
		case ctx.Err() != nil:
			return nil, ""
		default:
			o.log.Warn("candidate search failed", "title", title.Name, "error", err)
			return nil, fmt.Sprintf("candidate search failed: %v", err)
		}
	}
	ranked := rank.Rank(res.Candidates, spec)
	return ranked, res.Degraded
}

// sortResults orders the final list by the filter's sort key applied
// to title metadata, descending unless SortAscending. Ties fall back
// to descending popularity then name for a stable, deterministic
// order.
func sortResults(results []Result, spec rank.FilterSpec) {
	key := spec.SortBy
	if key == "" {
		key = rank.SortPopularity
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Title, results[j].Title
		if less, decided := compareTitles(a, b, key); decided {
			if !spec.SortAscending {
				return !less
			}
			return less
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.Name < b.Name
	})
}

func compareTitles(a, b metadata.Title, key string) (less, decided bool) {
	switch key {
	case rank.SortRating:
		return a.VoteAverage < b.VoteAverage, a.VoteAverage != b.VoteAverage
	case rank.SortReleaseDate:
		return a.Year < b.Year, a.Year != b.Year
	case rank.SortTitle:
		ta, tb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		return ta < tb, ta != tb
	case rank.SortVoteCount:
		return a.VoteCount < b.VoteCount, a.VoteCount != b.VoteCount
	default:
		return a.Popularity < b.Popularity, a.Popularity != b.Popularity
	}
}

// fingerprint folds a filter spec into a cache key part. JSON keeps it
// stable across runs, unlike fmt's map ordering.
func fingerprint(spec rank.FilterSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return fmt.Sprintf("%+v", spec)
	}
	return string(b)
}
