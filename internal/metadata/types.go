// Package metadata resolves queries to canonical title metadata via
// the catalog collaborator, with two-level caching and fuzzy ranking
// of ambiguous matches.
package metadata

import "fmt"

// MediaType distinguishes movies from series.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaSeries MediaType = "series"
)

// External id map keys.
const (
	IDTMDB = "tmdb"
	IDIMDB = "imdb"
	IDTVDB = "tvdb"
)

// Title is canonical catalog metadata for one title. Immutable once
// returned by the resolver; cached.
type Title struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	MediaType   MediaType         `json:"mediaType"`
	Year        int               `json:"year"`
	Overview    string            `json:"overview,omitempty"`
	Language    string            `json:"language,omitempty"`
	Popularity  float64           `json:"popularity"`
	VoteAverage float64           `json:"voteAverage"`
	VoteCount   int               `json:"voteCount"`
	Genres      []string          `json:"genres,omitempty"`
	Adult       bool              `json:"adult,omitempty"`
	ExternalIDs map[string]string `json:"externalIds"`
}

// ExternalID returns the title's native id in the named collaborator's
// catalog, or "" when no mapping is known.
func (t *Title) ExternalID(name string) string {
	return t.ExternalIDs[name]
}

func (t *Title) String() string {
	if t.Year == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s (%d)", t.Name, t.Year)
}
