package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/wantarr/internal/indexer"
	"github.com/vmunix/wantarr/internal/library"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestReconcile_NotInSystem(t *testing.T) {
	s := Reconcile(nil, nil, nil, now)
	assert.Equal(t, TagNotInSystem, s.Tag)
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, now, s.UpdatedAt)
}

func TestReconcile_NotInSystemWithCandidates(t *testing.T) {
	s := Reconcile(nil, nil, make([]indexer.Candidate, 7), now)
	assert.Equal(t, TagNotInSystem, s.Tag)
	assert.Contains(t, s.Details, "7 candidates available")
}

func TestReconcile_NotMonitored(t *testing.T) {
	entries := []library.Entry{{Source: "radarr", Monitored: false, HasAllFiles: true}}
	s := Reconcile(entries, nil, nil, now)
	assert.Equal(t, TagNotMonitored, s.Tag)
	assert.Contains(t, s.Message, "radarr")
}

func TestReconcile_DownloadingBeatsFileState(t *testing.T) {
	entries := []library.Entry{{Source: "sonarr", Monitored: true, FileCount: 3, TotalCount: 10}}
	queue := []library.QueueItem{
		{Title: "Show.S01E04", Active: true, ProgressPercent: 42},
	}
	s := Reconcile(entries, queue, nil, now)
	assert.Equal(t, TagDownloading, s.Tag)
	assert.Equal(t, 42, s.Progress)
}

func TestReconcile_Downloaded(t *testing.T) {
	entries := []library.Entry{{Source: "radarr", Monitored: true, HasAllFiles: true, FileCount: 1, TotalCount: 1}}
	s := Reconcile(entries, nil, nil, now)
	assert.Equal(t, TagDownloaded, s.Tag)
	assert.Equal(t, 100, s.Progress)
}

func TestReconcile_PartiallyDownloaded(t *testing.T) {
	entries := []library.Entry{{Source: "sonarr", Monitored: true, FileCount: 7, TotalCount: 10}}
	s := Reconcile(entries, nil, nil, now)
	assert.Equal(t, TagPartiallyDownloaded, s.Tag)
	assert.Equal(t, 70, s.Progress)
	assert.Contains(t, s.Message, "7 of 10")
}

func TestReconcile_ProgressFloors(t *testing.T) {
	entries := []library.Entry{{Source: "sonarr", Monitored: true, FileCount: 2, TotalCount: 3}}
	s := Reconcile(entries, nil, nil, now)
	assert.Equal(t, 66, s.Progress)
}

func TestReconcile_ProgressClampsOverreportedFiles(t *testing.T) {
	entries := []library.Entry{{Source: "sonarr", Monitored: true, FileCount: 12, TotalCount: 10}}
	s := Reconcile(entries, nil, nil, now)
	assert.Equal(t, TagPartiallyDownloaded, s.Tag)
	assert.Equal(t, 100, s.Progress)
}

func TestReconcile_FailedQueueItem(t *testing.T) {
	entries := []library.Entry{{Source: "radarr", Monitored: true}}
	queue := []library.QueueItem{
		{Title: "Movie.2019", Active: false, ErrorMessage: "disk full"},
	}
	s := Reconcile(entries, queue, nil, now)
	assert.Equal(t, TagFailed, s.Tag)
	assert.Contains(t, s.Details, "disk full")
}

func TestReconcile_ActiveItemBeatsFailedItem(t *testing.T) {
	entries := []library.Entry{{Source: "radarr", Monitored: true}}
	queue := []library.QueueItem{
		{Title: "Movie.2019.720p", Active: false, ErrorMessage: "stalled"},
		{Title: "Movie.2019.1080p", Active: true, ProgressPercent: 10},
	}
	s := Reconcile(entries, queue, nil, now)
	assert.Equal(t, TagDownloading, s.Tag)
}

func TestReconcile_Wanted(t *testing.T) {
	entries := []library.Entry{{Source: "radarr", Monitored: true}}
	s := Reconcile(entries, nil, make([]indexer.Candidate, 3), now)
	assert.Equal(t, TagWanted, s.Tag)
	assert.Contains(t, s.Details, "3 candidates available")
}

func TestReconcile_MonitoredEntryWins(t *testing.T) {
	entries := []library.Entry{
		{Source: "radarr", Monitored: false},
		{Source: "sonarr", Monitored: true, FileCount: 1, TotalCount: 2},
	}
	s := Reconcile(entries, nil, nil, now)
	assert.Equal(t, TagPartiallyDownloaded, s.Tag)
	assert.Contains(t, s.Message, "sonarr")
}

func TestReconcile_Idempotent(t *testing.T) {
	entries := []library.Entry{{Source: "sonarr", Monitored: true, FileCount: 4, TotalCount: 8}}
	queue := []library.QueueItem{{Title: "Show.S01E05", Active: true, ProgressPercent: 55}}

	first := Reconcile(entries, queue, nil, now)
	second := Reconcile(entries, queue, nil, now)
	assert.Equal(t, first, second)
}

func TestReconcile_TotalOverEntryShapes(t *testing.T) {
	shapes := [][]library.Entry{
		nil,
		{{Source: "radarr"}},
		{{Source: "radarr", Monitored: true}},
		{{Source: "radarr", Monitored: true, HasAllFiles: true}},
		{{Source: "sonarr", Monitored: true, FileCount: 1, TotalCount: 4}},
		{{Source: "sonarr", Monitored: true, FileCount: 4, TotalCount: 4}},
	}
	for _, entries := range shapes {
		s := Reconcile(entries, nil, nil, now)
		assert.NotEmpty(t, s.Tag)
		assert.NotEmpty(t, s.Message)
		assert.GreaterOrEqual(t, s.Progress, 0)
		assert.LessOrEqual(t, s.Progress, 100)
	}
}
