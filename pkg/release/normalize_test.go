package release

import "testing"

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Matrix", "matrix"},
		{"Léon: The Professional", "leon professional"},
		{"Spy & Family", "spy and family"},
		{"Don't Look Up", "dont look up"},
		{"Mad Max - Fury Road", "mad max fury road"},
		{"  An  Odd   Spacing ", "odd spacing"},
	}

	for _, tt := range tests {
		if got := CleanTitle(tt.in); got != tt.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSearchQuery(t *testing.T) {
	if got := NormalizeSearchQuery("Spy & Family"); got != "Spy and Family" {
		t.Errorf("NormalizeSearchQuery() = %q", got)
	}
	if got := NormalizeSearchQuery("  The   Matrix  "); got != "The Matrix" {
		t.Errorf("NormalizeSearchQuery() = %q", got)
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("The Matrix", "Matrix, The"); got < 0.7 {
		t.Errorf("Similarity() = %v, want >= 0.7 for near-identical titles", got)
	}
	if got := Similarity("The Matrix", "The Matrix"); got != 1.0 {
		t.Errorf("Similarity() = %v, want 1.0 for identical titles", got)
	}
	same := Similarity("The Matrix", "Mad Max")
	if same >= Similarity("The Matrix", "The Matrix Reloaded") {
		t.Error("unrelated title should score below a sequel")
	}
}
