package release

import "testing"

func TestParseQuality(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Movie.2024.2160p.WEB-DL.x265-GROUP", Quality2160p},
		{"Movie.2024.4K.UHD.BluRay-GROUP", Quality2160p},
		{"Movie.2024.1080p.BluRay.x264-GROUP", Quality1080p},
		{"Show.S01E02.720p.HDTV.x264-GROUP", Quality720p},
		{"Movie.1999.480p.DVDRip.XviD-GROUP", QualitySD},
		{"Old.Show.576p.DVDRip-GROUP", QualitySD},
		{"Movie.2024.WEBRip.x264-GROUP", QualityUnknown},
		{"", QualityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuality(tt.name); got != tt.want {
				t.Errorf("ParseQuality(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseQuality_BestMarkerWins(t *testing.T) {
	// Remux releases often carry both markers.
	got := ParseQuality("Movie.2024.2160p.Remux.1080p.Encode-GROUP")
	if got != Quality2160p {
		t.Errorf("ParseQuality() = %q, want %q", got, Quality2160p)
	}
}

func TestQualityWeight_Ordering(t *testing.T) {
	ordered := []string{QualityUnknown, QualitySD, Quality720p, Quality1080p, Quality2160p}
	for i := 1; i < len(ordered); i++ {
		if QualityWeight(ordered[i-1]) >= QualityWeight(ordered[i]) {
			t.Errorf("QualityWeight(%q) should be below QualityWeight(%q)", ordered[i-1], ordered[i])
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"The.Matrix.1999.1080p.BluRay.x264-GROUP", 1999},
		{"Blade.Runner.2049.2017.2160p-GROUP", 2017},
		{"Show.S01E01.720p.HDTV-GROUP", 0},
		{"1984.1984.720p-GROUP", 1984},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseYear(tt.name); got != tt.want {
				t.Errorf("ParseYear(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}
