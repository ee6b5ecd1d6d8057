package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/wantarr/internal/metadata"
	"github.com/vmunix/wantarr/internal/ratelimit"
)

// Sonarr is a series library manager client (Sonarr v3 API).
type Sonarr struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSonarr creates a Sonarr client.
func NewSonarr(baseURL, apiKey string, timeout time.Duration) *Sonarr {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Sonarr{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Sonarr) Name() string { return "sonarr" }

func (s *Sonarr) IDKey() string { return metadata.IDTVDB }

func (s *Sonarr) Supports(mt metadata.MediaType) bool { return mt == metadata.MediaSeries }

type sonarrSeries struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Monitored  bool   `json:"monitored"`
	Statistics struct {
		EpisodeFileCount int `json:"episodeFileCount"`
		EpisodeCount     int `json:"episodeCount"`
	} `json:"statistics"`
}

// Lookup fetches the series tracked under the given TVDB id.
func (s *Sonarr) Lookup(ctx context.Context, externalID string) (*Entry, error) {
	var series []sonarrSeries
	params := url.Values{"tvdbId": {externalID}}
	if err := s.get(ctx, "/api/v3/series", params, &series); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, nil
	}

	sr := series[0]
	stats := sr.Statistics
	return &Entry{
		Source:      s.Name(),
		TitleID:     strconv.Itoa(sr.ID),
		Monitored:   sr.Monitored,
		HasAllFiles: stats.EpisodeCount > 0 && stats.EpisodeFileCount == stats.EpisodeCount,
		FileCount:   stats.EpisodeFileCount,
		TotalCount:  stats.EpisodeCount,
	}, nil
}

type sonarrQueue struct {
	Records []sonarrQueueItem `json:"records"`
}

type sonarrQueueItem struct {
	SeriesID     int     `json:"seriesId"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	Size         float64 `json:"size"`
	SizeLeft     float64 `json:"sizeleft"`
	ErrorMessage string  `json:"errorMessage"`
}

// ActiveQueue fetches the current download queue.
func (s *Sonarr) ActiveQueue(ctx context.Context) ([]QueueItem, error) {
	var queue sonarrQueue
	params := url.Values{"pageSize": {"100"}}
	if err := s.get(ctx, "/api/v3/queue", params, &queue); err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(queue.Records))
	for _, rec := range queue.Records {
		items = append(items, QueueItem{
			TitleID:         strconv.Itoa(rec.SeriesID),
			Title:           rec.Title,
			ProgressPercent: queueProgress(rec.Size, rec.SizeLeft),
			ErrorMessage:    rec.ErrorMessage,
			Active:          queueActive(rec.Status),
		})
	}
	return items, nil
}

func (s *Sonarr) get(ctx context.Context, path string, params url.Values, out any) error {
	return arrGet(ctx, s.httpClient, s.Name(), s.baseURL+path+"?"+params.Encode(), s.apiKey, out)
}

// arrGet performs one authenticated GET against a Sonarr/Radarr-style
// v3 API, mapping transport and payload failures to ErrUpstream.
func arrGet(ctx context.Context, client *http.Client, name, reqURL, apiKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", name, ratelimit.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w: status %s", name, ratelimit.ErrUpstream, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %v", name, ratelimit.ErrUpstream, err)
	}
	return nil
}

func queueProgress(size, sizeLeft float64) int {
	if size <= 0 {
		return 0
	}
	p := int((size - sizeLeft) / size * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func queueActive(status string) bool {
	switch strings.ToLower(status) {
	case "queued", "downloading", "paused", "delay":
		return true
	default:
		return false
	}
}
