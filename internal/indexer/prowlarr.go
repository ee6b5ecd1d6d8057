package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/wantarr/internal/ratelimit"
)

// prowlarrRelease is the JSON response struct from the Prowlarr API.
type prowlarrRelease struct {
	Title       string `json:"title"`
	GUID        string `json:"guid"`
	Indexer     string `json:"indexer"`
	DownloadURL string `json:"downloadUrl"`
	MagnetURL   string `json:"magnetUrl"`
	Size        int64  `json:"size"`
	Seeders     int    `json:"seeders"`
	Leechers    int    `json:"leechers"`
	PublishDate string `json:"publishDate"`
}

// Release is one raw aggregator result.
type Release struct {
	Title       string
	GUID        string
	Indexer     string
	DownloadURL string
	Size        int64
	Seeders     int
	Leechers    int
	PublishDate time.Time
}

// ProwlarrClient is an HTTP client for the Prowlarr API.
type ProwlarrClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewProwlarrClient creates a new Prowlarr API client.
func NewProwlarrClient(baseURL, apiKey string, timeout time.Duration) *ProwlarrClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ProwlarrClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search fetches one page of releases for the query.
func (c *ProwlarrClient) Search(ctx context.Context, query string, categories []int, limit, offset int) ([]Release, error) {
	params := url.Values{}
	params.Set("query", query)
	for _, cat := range categories {
		params.Add("categories", strconv.Itoa(cat))
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	reqURL := c.baseURL + "/api/v1/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prowlarr: %w: %v", ratelimit.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prowlarr: %w: status %s", ratelimit.ErrUpstream, resp.Status)
	}

	var releases []prowlarrRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("prowlarr: %w: decode response: %v", ratelimit.ErrUpstream, err)
	}

	result := make([]Release, len(releases))
	for i, r := range releases {
		downloadURL := r.DownloadURL
		if r.MagnetURL != "" {
			downloadURL = r.MagnetURL
		}
		result[i] = Release{
			Title:       r.Title,
			GUID:        r.GUID,
			Indexer:     r.Indexer,
			DownloadURL: downloadURL,
			Size:        r.Size,
			Seeders:     r.Seeders,
			Leechers:    r.Leechers,
			PublishDate: parseTime(r.PublishDate),
		}
	}
	return result, nil
}

// parseTime parses a time string, returning zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
