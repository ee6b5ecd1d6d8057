package rank

import (
	"sort"
	"strings"

	"github.com/vmunix/wantarr/internal/indexer"
	"github.com/vmunix/wantarr/pkg/release"
)

// Rank filters candidates by the spec's candidate-level fields and
// stable-sorts the survivors. The input slice is not modified.
func Rank(candidates []indexer.Candidate, spec FilterSpec) []indexer.Candidate {
	out := make([]indexer.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if matchCandidate(c, spec) {
			out = append(out, c)
		}
	}

	key := spec.sortKey()
	sort.SliceStable(out, func(i, j int) bool {
		if less, decided := compare(out[i], out[j], key); decided {
			if !spec.SortAscending {
				return !less
			}
			return less
		}
		// Ties break on seeder health then recency, always descending,
		// whatever the configured direction.
		if out[i].Seeders != out[j].Seeders {
			return out[i].Seeders > out[j].Seeders
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// matchCandidate applies the conjunction of the active candidate-level
// filters. Exclusion keywords take precedence over inclusion.
func matchCandidate(c indexer.Candidate, spec FilterSpec) bool {
	lower := strings.ToLower(c.Title)
	for _, kw := range spec.ExcludeKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	for _, kw := range spec.IncludeKeywords {
		if kw != "" && !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	if spec.YearMin > 0 || spec.YearMax > 0 {
		year := release.ParseYear(c.Title)
		if spec.YearMin > 0 && (year == 0 || year < spec.YearMin) {
			return false
		}
		if spec.YearMax > 0 && year > spec.YearMax {
			return false
		}
	}
	if spec.Language != "" && !strings.Contains(lower, strings.ToLower(spec.Language)) {
		return false
	}
	return true
}

// compare orders a before b by ascending key value: lowest seeders,
// lowest quality weight, oldest date, alphabetical title. The default
// direction is descending, so Rank negates this unless SortAscending
// is set. The second return is false when the key values tie, handing
// the decision to the tie-break.
func compare(a, b indexer.Candidate, key string) (less, decided bool) {
	switch key {
	case SortRating:
		wa, wb := release.QualityWeight(a.Quality), release.QualityWeight(b.Quality)
		return wa < wb, wa != wb
	case SortReleaseDate:
		if a.PublishedAt.Equal(b.PublishedAt) {
			return false, false
		}
		return a.PublishedAt.Before(b.PublishedAt), true
	case SortTitle:
		ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		return ta < tb, ta != tb
	case SortVoteCount:
		pa, pb := a.Seeders+a.Leechers, b.Seeders+b.Leechers
		return pa < pb, pa != pb
	default: // SortPopularity
		return a.Seeders < b.Seeders, a.Seeders != b.Seeders
	}
}
