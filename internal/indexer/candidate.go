// Package indexer queries the indexer aggregator for downloadable
// candidates and derives display and health fields the aggregator
// does not provide.
package indexer

import (
	"fmt"
	"time"

	"github.com/vmunix/wantarr/pkg/release"
)

// Health rating bands, highest threshold first.
const (
	HealthExcellent = "Excellent"
	HealthGood      = "Good"
	HealthFair      = "Fair"
	HealthPoor      = "Poor"
	HealthVeryPoor  = "Very Poor"
)

// streamableSeeders is the minimum seeder count considered enough to
// stream a torrent while it downloads.
const streamableSeeders = 5

// Candidate is one downloadable listing for a title. Never persisted.
type Candidate struct {
	Title       string    `json:"title"`
	DownloadURL string    `json:"downloadUrl"` // URL or magnet link
	SizeBytes   int64     `json:"sizeBytes"`
	Seeders     int       `json:"seeders"`
	Leechers    int       `json:"leechers"`
	Quality     string    `json:"quality"`
	Indexer     string    `json:"indexer"`
	PublishedAt time.Time `json:"publishedAt"`

	// Derived, for display and ranking.
	FormattedSize string `json:"formattedSize"`
	IsStreamable  bool   `json:"isStreamable"`
	HealthRating  string `json:"healthRating"`
}

// derive fills the computed fields from the raw ones.
func (c *Candidate) derive() {
	c.Quality = release.ParseQuality(c.Title)
	c.FormattedSize = FormatSize(c.SizeBytes)
	c.IsStreamable = c.Seeders >= streamableSeeders
	c.HealthRating = HealthRating(c.Seeders)
}

// HealthRating classifies a seeder count into five bands. Bands are
// exclusive and evaluated highest threshold first.
func HealthRating(seeders int) string {
	switch {
	case seeders >= 50:
		return HealthExcellent
	case seeders >= 20:
		return HealthGood
	case seeders >= 10:
		return HealthFair
	case seeders >= streamableSeeders:
		return HealthPoor
	default:
		return HealthVeryPoor
	}
}

// FormatSize renders a byte count for display: binary GB with one
// decimal at 1 GiB and above, binary MB with none below.
func FormatSize(bytes int64) string {
	const (
		mib = 1 << 20
		gib = 1 << 30
	)
	if bytes >= gib {
		return fmt.Sprintf("%.1f GB", float64(bytes)/gib)
	}
	return fmt.Sprintf("%.0f MB", float64(bytes)/mib)
}
