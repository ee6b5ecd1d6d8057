// Package library reads title state from library-manager
// collaborators (Sonarr, Radarr) and reconciles their divergent
// views into one snapshot per title. This system never mutates a
// manager's state.
package library

import (
	"context"

	"github.com/vmunix/wantarr/internal/metadata"
)

// Entry is one manager's view of a title. Ephemeral: recomputed per
// query.
type Entry struct {
	Source      string // manager name
	TitleID     string // the manager's own id for the title
	Monitored   bool
	HasAllFiles bool
	FileCount   int // files present (episodes for series, 0/1 for movies)
	TotalCount  int // files expected
}

// QueueItem is one in-flight or recently failed fetch reported by a
// manager's download queue.
type QueueItem struct {
	TitleID         string
	Title           string
	ProgressPercent int
	ErrorMessage    string
	Active          bool // still queued or downloading
}

// Manager is the capability interface one library-manager product
// implements.
type Manager interface {
	// Name identifies the manager ("sonarr", "radarr").
	Name() string

	// IDKey names the external-id mapping this manager keys titles
	// by (metadata.IDTVDB for Sonarr, metadata.IDTMDB for Radarr).
	IDKey() string

	// Supports reports whether the manager tracks this media type.
	Supports(mt metadata.MediaType) bool

	// Lookup returns the manager's entry for the title with the
	// given native id, or nil when the manager does not know it.
	Lookup(ctx context.Context, externalID string) (*Entry, error)

	// ActiveQueue returns the manager's current download queue,
	// including recently failed items.
	ActiveQueue(ctx context.Context) ([]QueueItem, error)
}
