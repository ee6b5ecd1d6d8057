package library

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/wantarr/internal/metadata"
)

// Radarr is a movie library manager client (Radarr v3 API).
type Radarr struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRadarr creates a Radarr client.
func NewRadarr(baseURL, apiKey string, timeout time.Duration) *Radarr {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Radarr{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *Radarr) Name() string { return "radarr" }

func (r *Radarr) IDKey() string { return metadata.IDTMDB }

func (r *Radarr) Supports(mt metadata.MediaType) bool { return mt == metadata.MediaMovie }

type radarrMovie struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Monitored bool   `json:"monitored"`
	HasFile   bool   `json:"hasFile"`
}

// Lookup fetches the movie tracked under the given TMDB id.
func (r *Radarr) Lookup(ctx context.Context, externalID string) (*Entry, error) {
	var movies []radarrMovie
	params := url.Values{"tmdbId": {externalID}}
	if err := r.get(ctx, "/api/v3/movie", params, &movies); err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}

	m := movies[0]
	fileCount := 0
	if m.HasFile {
		fileCount = 1
	}
	return &Entry{
		Source:      r.Name(),
		TitleID:     strconv.Itoa(m.ID),
		Monitored:   m.Monitored,
		HasAllFiles: m.HasFile,
		FileCount:   fileCount,
		TotalCount:  1,
	}, nil
}

type radarrQueue struct {
	Records []radarrQueueItem `json:"records"`
}

type radarrQueueItem struct {
	MovieID      int     `json:"movieId"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	Size         float64 `json:"size"`
	SizeLeft     float64 `json:"sizeleft"`
	ErrorMessage string  `json:"errorMessage"`
}

// ActiveQueue fetches the current download queue.
func (r *Radarr) ActiveQueue(ctx context.Context) ([]QueueItem, error) {
	var queue radarrQueue
	params := url.Values{"pageSize": {"100"}}
	if err := r.get(ctx, "/api/v3/queue", params, &queue); err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(queue.Records))
	for _, rec := range queue.Records {
		items = append(items, QueueItem{
			TitleID:         strconv.Itoa(rec.MovieID),
			Title:           rec.Title,
			ProgressPercent: queueProgress(rec.Size, rec.SizeLeft),
			ErrorMessage:    rec.ErrorMessage,
			Active:          queueActive(rec.Status),
		})
	}
	return items, nil
}

func (r *Radarr) get(ctx context.Context, path string, params url.Values, out any) error {
	return arrGet(ctx, r.httpClient, r.Name(), r.baseURL+path+"?"+params.Encode(), r.apiKey, out)
}
