// Package rank filters and orders search results. Everything here is
// pure: no I/O, no clocks, deterministic output for a given input.
package rank

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vmunix/wantarr/internal/metadata"
)

// ErrInvalidFilter rejects a filter spec before any network call is made.
var ErrInvalidFilter = errors.New("rank: invalid filter")

// Sort keys accepted by FilterSpec.SortBy.
const (
	SortPopularity  = "popularity"
	SortRating      = "rating"
	SortReleaseDate = "releaseDate"
	SortTitle       = "title"
	SortVoteCount   = "voteCount"
)

// FilterSpec narrows and orders a search. The zero value filters
// nothing and sorts by descending popularity.
//
// Fields split into two groups. Candidate-level fields (year range,
// keywords, language) are applied to individual releases by Rank.
// Title-level fields (genres, rating, runtime, people, certification,
// network, status, adult, library presence) describe catalog metadata
// that releases do not carry; they are applied to resolved titles by
// the caller via MatchTitle.
type FilterSpec struct {
	YearMin int
	YearMax int

	RatingMin float64
	RatingMax float64

	RuntimeMin int
	RuntimeMax int

	Genres        []string
	Language      string
	Certification string
	Network       string
	Status        string
	MediaType     metadata.MediaType

	IncludeKeywords []string
	ExcludeKeywords []string

	Cast      []string
	Crew      []string
	Companies []string

	OnlyInLibrary    bool
	ExcludeInLibrary bool
	IncludeAdult     bool

	SortBy        string
	SortAscending bool
}

// Validate rejects contradictory or malformed specs. Called before the
// spec drives any lookup.
func (s *FilterSpec) Validate() error {
	if s.OnlyInLibrary && s.ExcludeInLibrary {
		return fmt.Errorf("%w: only_in_library and exclude_in_library are mutually exclusive", ErrInvalidFilter)
	}
	if s.YearMin > 0 && s.YearMax > 0 && s.YearMin > s.YearMax {
		return fmt.Errorf("%w: year range %d-%d is inverted", ErrInvalidFilter, s.YearMin, s.YearMax)
	}
	if s.RatingMin > 0 && s.RatingMax > 0 && s.RatingMin > s.RatingMax {
		return fmt.Errorf("%w: rating range %.1f-%.1f is inverted", ErrInvalidFilter, s.RatingMin, s.RatingMax)
	}
	if s.RatingMin < 0 || s.RatingMax < 0 || s.RatingMin > 10 || s.RatingMax > 10 {
		return fmt.Errorf("%w: ratings must be within 0-10", ErrInvalidFilter)
	}
	if s.RuntimeMin > 0 && s.RuntimeMax > 0 && s.RuntimeMin > s.RuntimeMax {
		return fmt.Errorf("%w: runtime range %d-%d is inverted", ErrInvalidFilter, s.RuntimeMin, s.RuntimeMax)
	}
	switch s.SortBy {
	case "", SortPopularity, SortRating, SortReleaseDate, SortTitle, SortVoteCount:
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, s.SortBy)
	}
	if s.MediaType != "" && s.MediaType != metadata.MediaMovie && s.MediaType != metadata.MediaSeries {
		return fmt.Errorf("%w: unknown media type %q", ErrInvalidFilter, s.MediaType)
	}
	return nil
}

// sortKey is SortBy with the default applied.
func (s *FilterSpec) sortKey() string {
	if s.SortBy == "" {
		return SortPopularity
	}
	return s.SortBy
}

// MatchTitle reports whether a resolved title passes the title-level
// filters. Filters over metadata the catalog search result does not
// carry (runtime, certification, network, status, people, companies)
// never exclude a title here; they pass through for the caller to
// narrow once detail data is in hand.
func (s *FilterSpec) MatchTitle(title metadata.Title) bool {
	if s.MediaType != "" && title.MediaType != s.MediaType {
		return false
	}
	if title.Adult && !s.IncludeAdult {
		return false
	}
	if s.YearMin > 0 && (title.Year == 0 || title.Year < s.YearMin) {
		return false
	}
	if s.YearMax > 0 && title.Year > s.YearMax {
		return false
	}
	if s.RatingMin > 0 && title.VoteAverage < s.RatingMin {
		return false
	}
	if s.RatingMax > 0 && title.VoteAverage > s.RatingMax {
		return false
	}
	if len(s.Genres) > 0 && !hasAnyGenre(title.Genres, s.Genres) {
		return false
	}
	return true
}

func hasAnyGenre(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
