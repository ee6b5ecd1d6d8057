// Package status reduces library state to a single download status.
// Reconcile is a pure function: same inputs, same answer, no I/O.
package status

import (
	"fmt"
	"time"

	"github.com/vmunix/wantarr/internal/indexer"
	"github.com/vmunix/wantarr/internal/library"
)

// Tag is the single-word summary of where a title stands.
type Tag string

const (
	TagNotInSystem         Tag = "NotInSystem"
	TagWanted              Tag = "Wanted"
	TagDownloading         Tag = "Downloading"
	TagDownloaded          Tag = "Downloaded"
	TagPartiallyDownloaded Tag = "PartiallyDownloaded"
	TagNotMonitored        Tag = "NotMonitored"
	TagFailed              Tag = "Failed"
)

// DownloadStatus is the reconciled view of a title across every
// library manager that knows it. Recomputed on each query, never
// stored.
type DownloadStatus struct {
	Tag       Tag       `json:"tag"`
	Message   string    `json:"message"`
	Progress  int       `json:"progress"` // 0-100
	Details   []string  `json:"details,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reconcile folds manager entries, queue items and search candidates
// into one status. Rules apply in order, first match wins:
// unknown everywhere, not monitored, actively downloading, fully
// downloaded, partially downloaded, failed, wanted.
func Reconcile(entries []library.Entry, queue []library.QueueItem, candidates []indexer.Candidate, now time.Time) DownloadStatus {
	s := DownloadStatus{UpdatedAt: now}

	entry := pickEntry(entries)
	if entry == nil {
		s.Tag = TagNotInSystem
		s.Message = "Not in library"
		if len(candidates) > 0 {
			s.Details = append(s.Details, fmt.Sprintf("%d candidates available", len(candidates)))
		}
		return s
	}

	if !entry.Monitored {
		s.Tag = TagNotMonitored
		s.Message = fmt.Sprintf("In %s but not monitored", entry.Source)
		return s
	}

	if item := activeItem(queue); item != nil {
		s.Tag = TagDownloading
		s.Message = fmt.Sprintf("Downloading via %s", entry.Source)
		s.Progress = item.ProgressPercent
		return s
	}

	if entry.HasAllFiles || (entry.TotalCount > 0 && entry.FileCount == entry.TotalCount) {
		s.Tag = TagDownloaded
		s.Message = fmt.Sprintf("Complete in %s", entry.Source)
		s.Progress = 100
		return s
	}

	if entry.FileCount > 0 && entry.TotalCount > 0 {
		s.Tag = TagPartiallyDownloaded
		s.Message = fmt.Sprintf("%d of %d files in %s", entry.FileCount, entry.TotalCount, entry.Source)
		// Managers can report more files than expected; keep the
		// progress in range.
		s.Progress = min(entry.FileCount*100/entry.TotalCount, 100)
		return s
	}

	if item := failedItem(queue); item != nil {
		s.Tag = TagFailed
		s.Message = "Last download failed"
		s.Details = append(s.Details, item.ErrorMessage)
		return s
	}

	s.Tag = TagWanted
	s.Message = fmt.Sprintf("Monitored by %s, waiting for files", entry.Source)
	if len(candidates) > 0 {
		s.Details = append(s.Details, fmt.Sprintf("%d candidates available", len(candidates)))
	}
	return s
}

// pickEntry chooses the entry that drives the status when several
// managers know the title. A monitored entry beats an unmonitored one;
// past that the first reported wins.
func pickEntry(entries []library.Entry) *library.Entry {
	var chosen *library.Entry
	for i := range entries {
		e := &entries[i]
		if chosen == nil {
			chosen = e
			continue
		}
		if e.Monitored && !chosen.Monitored {
			chosen = e
		}
	}
	return chosen
}

// activeItem returns the first queue item still moving.
func activeItem(queue []library.QueueItem) *library.QueueItem {
	for i := range queue {
		if queue[i].Active {
			return &queue[i]
		}
	}
	return nil
}

// failedItem returns the first queue item carrying an error.
func failedItem(queue []library.QueueItem) *library.QueueItem {
	for i := range queue {
		if !queue[i].Active && queue[i].ErrorMessage != "" {
			return &queue[i]
		}
	}
	return nil
}
