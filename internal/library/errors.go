package library

import "errors"

// ErrAllSourcesUnavailable indicates every queried library manager
// failed. A single manager failing only degrades that manager's
// sub-result.
var ErrAllSourcesUnavailable = errors.New("all library managers unavailable")
