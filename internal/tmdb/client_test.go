package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/wantarr/internal/ratelimit"
)

func TestSearchMulti(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/multi", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "The Matrix", r.URL.Query().Get("query"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "US", r.URL.Query().Get("region"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 603, "media_type": "movie", "title": "The Matrix", "release_date": "1999-03-30", "popularity": 85.1, "vote_average": 8.2, "vote_count": 24000, "genre_ids": [28, 878]},
				{"id": 100, "media_type": "person", "name": "Keanu Reeves"},
				{"id": 2001, "media_type": "tv", "name": "The Matrix Show", "first_air_date": "2003-05-01"}
			],
			"total_pages": 1,
			"total_results": 3
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	results, err := client.SearchMulti(context.Background(), "The Matrix", "en", "US")

	require.NoError(t, err)
	require.Len(t, results, 2, "person results should be dropped")

	movie := results[0]
	assert.Equal(t, int64(603), movie.ID)
	assert.Equal(t, "The Matrix", movie.DisplayName())
	assert.Equal(t, 1999, movie.Year())
	assert.Equal(t, []string{"Action", "Science Fiction"}, GenreNames(movie.GenreIDs))

	show := results[1]
	assert.Equal(t, MediaTV, show.MediaType)
	assert.Equal(t, "The Matrix Show", show.DisplayName())
	assert.Equal(t, 2003, show.Year())
}

func TestMovie_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.Movie(context.Background(), 999999, "en")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_ServerErrorIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.SearchMulti(context.Background(), "x", "en", "US")

	assert.ErrorIs(t, err, ratelimit.ErrUpstream)
}

func TestGet_MalformedPayloadIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.SearchMulti(context.Background(), "x", "en", "US")

	assert.ErrorIs(t, err, ratelimit.ErrUpstream)
}

func TestTVExternalIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/tv/2001/external_ids", r.URL.Path)
		_, _ = w.Write([]byte(`{"imdb_id": "tt0133093", "tvdb_id": 73255}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	ids, err := client.TVExternalIDs(context.Background(), 2001)

	require.NoError(t, err)
	assert.Equal(t, int64(73255), ids.TVDBID)
	assert.Equal(t, "tt0133093", ids.IMDBID)
}
