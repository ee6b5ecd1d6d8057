package indexer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRatingBands(t *testing.T) {
	tests := []struct {
		seeders int
		want    string
	}{
		{0, "Very Poor"},
		{4, "Very Poor"},
		{5, "Poor"},
		{9, "Poor"},
		{10, "Fair"},
		{19, "Fair"},
		{20, "Good"},
		{49, "Good"},
		{50, "Excellent"},
		{200, "Excellent"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, HealthRating(tc.seeders), "seeders=%d", tc.seeders)
	}
}

func TestHealthRatingCoversAllSeederCounts(t *testing.T) {
	known := map[string]bool{
		"Excellent": true, "Good": true, "Fair": true,
		"Poor": true, "Very Poor": true,
	}
	for s := 0; s <= 200; s++ {
		assert.True(t, known[HealthRating(s)], "seeders=%d", s)
	}
}

func TestIsStreamableThreshold(t *testing.T) {
	for s := 0; s <= 20; s++ {
		c := Candidate{Title: "Some Movie 1080p", Seeders: s}
		c.derive()
		assert.Equal(t, s >= 5, c.IsStreamable, "seeders=%d", s)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 MB"},
		{700 * 1024 * 1024, "700 MB"},
		{1073741824, "1.0 GB"},
		{1610612736, "1.5 GB"},
		{4831838208, "4.5 GB"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatSize(tc.bytes), "bytes=%d", tc.bytes)
	}
}

func TestFormatSizePreservesOrderWithinBand(t *testing.T) {
	parse := func(s string) float64 {
		var v float64
		var unit string
		_, err := fmt.Sscanf(s, "%f %s", &v, &unit)
		require.NoError(t, err)
		return v
	}

	mbSizes := []int64{0, 1 << 20, 50 << 20, 700 << 20, 1023 << 20}
	for i := 1; i < len(mbSizes); i++ {
		a, b := FormatSize(mbSizes[i-1]), FormatSize(mbSizes[i])
		assert.LessOrEqual(t, parse(a), parse(b), "%s vs %s", a, b)
	}

	gbSizes := []int64{1 << 30, 3 << 30, 10 << 30, 500 << 30}
	for i := 1; i < len(gbSizes); i++ {
		a, b := FormatSize(gbSizes[i-1]), FormatSize(gbSizes[i])
		assert.LessOrEqual(t, parse(a), parse(b), "%s vs %s", a, b)
	}
}

func TestDeriveFillsQuality(t *testing.T) {
	c := Candidate{
		Title:       "Dark Waters 2019 2160p WEB-DL x265",
		SizeBytes:   10737418240,
		Seeders:     64,
		Leechers:    3,
		PublishedAt: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	c.derive()

	assert.Equal(t, "2160p", c.Quality)
	assert.Equal(t, "10.0 GB", c.FormattedSize)
	assert.True(t, c.IsStreamable)
	assert.Equal(t, "Excellent", c.HealthRating)
}
