package metadata

import "errors"

var (
	// ErrNotFound indicates the catalog knows no matching title.
	// Terminal: reported as an empty result, not a failure.
	ErrNotFound = errors.New("no matching title")

	// ErrBadLocale indicates the language/region pair is not a valid
	// BCP-47 combination. Rejected before any I/O.
	ErrBadLocale = errors.New("invalid language/region")
)
