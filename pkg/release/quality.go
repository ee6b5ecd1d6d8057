// Package release parses and normalizes torrent release names.
package release

import (
	"regexp"
	"strconv"
	"strings"
)

// Quality tiers recognized in release names.
const (
	Quality2160p   = "2160p"
	Quality1080p   = "1080p"
	Quality720p    = "720p"
	QualitySD      = "SD"
	QualityUnknown = "Unknown"
)

// ParseQuality extracts the quality tier from a release name. When a
// name carries more than one marker the highest tier wins.
func ParseQuality(name string) string {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "2160p", "4k", "uhd"):
		return Quality2160p
	case strings.Contains(lower, "1080p"):
		return Quality1080p
	case strings.Contains(lower, "720p"):
		return Quality720p
	case containsAny(lower, "480p", "576p", "dvdrip", "sdtv"):
		return QualitySD
	default:
		return QualityUnknown
	}
}

// QualityWeight orders quality tiers for sorting. Higher is better.
func QualityWeight(quality string) int {
	switch quality {
	case Quality2160p:
		return 4
	case Quality1080p:
		return 3
	case Quality720p:
		return 2
	case QualitySD:
		return 1
	default:
		return 0
	}
}

var yearRegex = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseYear extracts the release year from a release name. Titles that
// are themselves years put the year marker last, so the last match
// wins. Returns 0 when no year is present.
func ParseYear(name string) int {
	matches := yearRegex.FindAllString(name, -1)
	if len(matches) == 0 {
		return 0
	}
	year, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0
	}
	return year
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
