package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vmunix/wantarr/internal/ratelimit"
)

const defaultBaseURL = "https://api.themoviedb.org"

// ErrNotFound is returned when a title doesn't exist in TMDB.
var ErrNotFound = errors.New("title not found")

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchMulti queries multi-search for movies and TV shows matching
// the free-text query. Person results are dropped. An empty result
// list with a nil error means TMDB knows no such title.
func (c *Client) SearchMulti(ctx context.Context, query, language, region string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("language", language)
	params.Set("region", region)
	params.Set("include_adult", "true")

	var resp searchResponse
	if err := c.get(ctx, "/3/search/multi", params, &resp); err != nil {
		return nil, err
	}

	results := resp.Results[:0]
	for _, r := range resp.Results {
		if r.MediaType == MediaMovie || r.MediaType == MediaTV {
			results = append(results, r)
		}
	}
	return results, nil
}

// Movie fetches movie metadata by TMDB id.
func (c *Client) Movie(ctx context.Context, id int64, language string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", language)

	var result SearchResult
	if err := c.get(ctx, fmt.Sprintf("/3/movie/%d", id), params, &result); err != nil {
		return nil, err
	}
	result.ID = id
	result.MediaType = MediaMovie
	return &result, nil
}

// TV fetches series metadata by TMDB id.
func (c *Client) TV(ctx context.Context, id int64, language string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", language)

	var result SearchResult
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d", id), params, &result); err != nil {
		return nil, err
	}
	result.ID = id
	result.MediaType = MediaTV
	return &result, nil
}

// TVExternalIDs fetches the external catalog ids for a series. The
// TVDB id in particular is what series library managers key on.
func (c *Client) TVExternalIDs(ctx context.Context, id int64) (*ExternalIDs, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var ids ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d/external_ids", id), params, &ids); err != nil {
		return nil, err
	}
	return &ids, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: %w: %v", ratelimit.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: %w: status %s", ratelimit.ErrUpstream, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: %w: decode response: %v", ratelimit.ErrUpstream, err)
	}
	return nil
}
