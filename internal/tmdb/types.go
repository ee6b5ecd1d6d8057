// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// MediaType values used by the multi-search endpoint.
const (
	MediaMovie  = "movie"
	MediaTV     = "tv"
	MediaPerson = "person"
)

// SearchResult is one entry from multi-search. Movies carry
// Title/ReleaseDate, TV shows carry Name/FirstAirDate.
type SearchResult struct {
	ID               int64   `json:"id"`
	MediaType        string  `json:"media_type"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	Overview         string  `json:"overview"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date,omitempty"`   // "2024-03-01"
	FirstAirDate     string  `json:"first_air_date,omitempty"` // "2024-03-01"
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
	GenreIDs         []int   `json:"genre_ids"`
}

// DisplayName returns the title for movies, the name for TV shows.
func (r *SearchResult) DisplayName() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Year extracts the year from the release or first-air date.
func (r *SearchResult) Year() int {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// ExternalIDs maps a TMDB entry to other catalogs' native ids.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}
