package rank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/wantarr/internal/metadata"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FilterSpec
		wantErr bool
	}{
		{"zero value", FilterSpec{}, false},
		{"both library flags", FilterSpec{OnlyInLibrary: true, ExcludeInLibrary: true}, true},
		{"only in library alone", FilterSpec{OnlyInLibrary: true}, false},
		{"exclude in library alone", FilterSpec{ExcludeInLibrary: true}, false},
		{"inverted year range", FilterSpec{YearMin: 2020, YearMax: 2010}, true},
		{"valid year range", FilterSpec{YearMin: 2010, YearMax: 2020}, false},
		{"open-ended year range", FilterSpec{YearMin: 2010}, false},
		{"inverted rating range", FilterSpec{RatingMin: 8, RatingMax: 6}, true},
		{"rating above scale", FilterSpec{RatingMax: 11}, true},
		{"negative rating", FilterSpec{RatingMin: -1}, true},
		{"inverted runtime range", FilterSpec{RuntimeMin: 180, RuntimeMax: 90}, true},
		{"unknown sort key", FilterSpec{SortBy: "seeders"}, true},
		{"known sort key", FilterSpec{SortBy: SortReleaseDate}, false},
		{"unknown media type", FilterSpec{MediaType: "podcast"}, true},
		{"series media type", FilterSpec{MediaType: metadata.MediaSeries}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidFilter), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_BothLibraryFlagsAlwaysRejected(t *testing.T) {
	// The flag conflict is terminal no matter what else is set.
	specs := []FilterSpec{
		{OnlyInLibrary: true, ExcludeInLibrary: true},
		{OnlyInLibrary: true, ExcludeInLibrary: true, YearMin: 2010, YearMax: 2020},
		{OnlyInLibrary: true, ExcludeInLibrary: true, SortBy: SortTitle, IncludeAdult: true},
		{OnlyInLibrary: true, ExcludeInLibrary: true, Genres: []string{"Drama"}, RatingMin: 7},
	}
	for _, spec := range specs {
		assert.ErrorIs(t, spec.Validate(), ErrInvalidFilter)
	}
}

func TestMatchTitle(t *testing.T) {
	title := metadata.Title{
		Name:        "Dark Waters",
		MediaType:   metadata.MediaMovie,
		Year:        2019,
		VoteAverage: 7.6,
		Genres:      []string{"Drama", "History"},
	}

	tests := []struct {
		name string
		spec FilterSpec
		want bool
	}{
		{"zero spec matches", FilterSpec{}, true},
		{"media type match", FilterSpec{MediaType: metadata.MediaMovie}, true},
		{"media type mismatch", FilterSpec{MediaType: metadata.MediaSeries}, false},
		{"year inside range", FilterSpec{YearMin: 2015, YearMax: 2020}, true},
		{"year below min", FilterSpec{YearMin: 2020}, false},
		{"rating floor met", FilterSpec{RatingMin: 7}, true},
		{"rating floor unmet", FilterSpec{RatingMin: 8}, false},
		{"genre overlap", FilterSpec{Genres: []string{"history"}}, true},
		{"no genre overlap", FilterSpec{Genres: []string{"Comedy"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.MatchTitle(title))
		})
	}
}

func TestMatchTitle_AdultExcludedByDefault(t *testing.T) {
	adult := metadata.Title{Name: "Something", MediaType: metadata.MediaMovie, Adult: true}
	assert.False(t, (&FilterSpec{}).MatchTitle(adult))
	assert.True(t, (&FilterSpec{IncludeAdult: true}).MatchTitle(adult))
}

func TestMatchTitle_UnknownYearFailsYearFloor(t *testing.T) {
	undated := metadata.Title{Name: "Undated", MediaType: metadata.MediaMovie}
	assert.False(t, (&FilterSpec{YearMin: 2000}).MatchTitle(undated))
	assert.True(t, (&FilterSpec{YearMax: 2000}).MatchTitle(undated))
}
