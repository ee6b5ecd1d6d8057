package release

import "github.com/hbollon/go-edlib"

// Similarity returns the Jaro-Winkler similarity of two titles after
// normalization, in [0.0, 1.0]. Jaro-Winkler favors prefix matches,
// which suits media titles where sequels and subtitles diverge late
// in the string.
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(CleanTitle(a), CleanTitle(b)))
}
