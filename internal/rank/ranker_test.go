package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/wantarr/internal/indexer"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func candidates() []indexer.Candidate {
	return []indexer.Candidate{
		{Title: "Movie.2019.1080p.BluRay.x264", Seeders: 80, Leechers: 10, Quality: "1080p", PublishedAt: day(3)},
		{Title: "Movie.2019.2160p.WEB-DL.x265", Seeders: 25, Leechers: 5, Quality: "2160p", PublishedAt: day(5)},
		{Title: "Movie.2019.720p.HDTV", Seeders: 25, Leechers: 2, Quality: "720p", PublishedAt: day(1)},
		{Title: "Movie.2017.CAM.HINDI", Seeders: 200, Leechers: 90, Quality: "Unknown", PublishedAt: day(2)},
	}
}

func titles(cs []indexer.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title
	}
	return out
}

func TestRank_ZeroSpecIsPopularityDescending(t *testing.T) {
	got := Rank(candidates(), FilterSpec{})
	require.Len(t, got, 4)
	assert.Equal(t, []string{
		"Movie.2017.CAM.HINDI",
		"Movie.2019.1080p.BluRay.x264",
		"Movie.2019.2160p.WEB-DL.x265", // ties with 720p on seeders, newer wins
		"Movie.2019.720p.HDTV",
	}, titles(got))
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	in := candidates()
	first := in[0].Title
	Rank(in, FilterSpec{SortBy: SortTitle})
	assert.Equal(t, first, in[0].Title)
}

func TestRank_SortByQualityWeight(t *testing.T) {
	got := Rank(candidates(), FilterSpec{SortBy: SortRating})
	assert.Equal(t, []string{
		"Movie.2019.2160p.WEB-DL.x265",
		"Movie.2019.1080p.BluRay.x264",
		"Movie.2019.720p.HDTV",
		"Movie.2017.CAM.HINDI",
	}, titles(got))
}

func TestRank_SortByReleaseDate(t *testing.T) {
	got := Rank(candidates(), FilterSpec{SortBy: SortReleaseDate})
	assert.Equal(t, "Movie.2019.2160p.WEB-DL.x265", got[0].Title)
	assert.Equal(t, "Movie.2019.720p.HDTV", got[3].Title)
}

func TestRank_SortByTitleBothDirections(t *testing.T) {
	// Direction is uniform across keys: the default descends, so titles
	// come out Z to A unless SortAscending is set.
	descending := Rank(candidates(), FilterSpec{SortBy: SortTitle})
	assert.Equal(t, "Movie.2019.720p.HDTV", descending[0].Title)

	ascending := Rank(candidates(), FilterSpec{SortBy: SortTitle, SortAscending: true})
	assert.Equal(t, "Movie.2017.CAM.HINDI", ascending[0].Title)
}

func TestRank_SortByTotalPeers(t *testing.T) {
	got := Rank(candidates(), FilterSpec{SortBy: SortVoteCount})
	// 290, 90, 30, 27 total peers.
	assert.Equal(t, "Movie.2017.CAM.HINDI", got[0].Title)
	assert.Equal(t, "Movie.2019.2160p.WEB-DL.x265", got[1].Title)
	assert.Equal(t, "Movie.2019.720p.HDTV", got[3].Title)
}

func TestRank_TieBreakIgnoresDirection(t *testing.T) {
	sameDay := []indexer.Candidate{
		{Title: "A", Seeders: 10, PublishedAt: day(1)},
		{Title: "B", Seeders: 30, PublishedAt: day(1)},
	}
	// Tied on the sort key, the higher seeder count leads in both
	// directions.
	for _, asc := range []bool{false, true} {
		got := Rank(sameDay, FilterSpec{SortBy: SortReleaseDate, SortAscending: asc})
		assert.Equal(t, "B", got[0].Title, "ascending=%v", asc)
	}
}

func TestRank_YearRangeFilter(t *testing.T) {
	got := Rank(candidates(), FilterSpec{YearMin: 2018})
	require.Len(t, got, 3)
	for _, c := range got {
		assert.NotContains(t, c.Title, "2017")
	}
}

func TestRank_KeywordFilters(t *testing.T) {
	got := Rank(candidates(), FilterSpec{IncludeKeywords: []string{"bluray"}})
	require.Len(t, got, 1)
	assert.Equal(t, "Movie.2019.1080p.BluRay.x264", got[0].Title)

	got = Rank(candidates(), FilterSpec{ExcludeKeywords: []string{"cam"}})
	assert.Len(t, got, 3)
}

func TestRank_ExclusionBeatsInclusion(t *testing.T) {
	got := Rank(candidates(), FilterSpec{
		IncludeKeywords: []string{"cam"},
		ExcludeKeywords: []string{"cam"},
	})
	assert.Empty(t, got)
}

func TestRank_LanguageToken(t *testing.T) {
	got := Rank(candidates(), FilterSpec{Language: "hindi"})
	require.Len(t, got, 1)
	assert.Equal(t, "Movie.2017.CAM.HINDI", got[0].Title)
}

func TestRank_EmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil, FilterSpec{}))
}
