package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/wantarr/internal/metadata"
	"github.com/vmunix/wantarr/internal/ratelimit"
)

// Snapshot is the merged library state for one title.
type Snapshot struct {
	Entries  []Entry     // one per manager that recognizes the title
	Queue    []QueueItem // queue items belonging to the title
	Degraded []string    // notes for managers that could not answer
}

// Tracker queries every enabled library manager concurrently, each
// under its own timeout, and merges the answers. A single manager
// failing degrades that manager's sub-result; only all managers
// failing fails the snapshot.
type Tracker struct {
	managers   []Manager
	dispatcher *ratelimit.Dispatcher
	timeout    time.Duration
	log        *slog.Logger
}

// NewTracker creates a tracker over the given managers. timeout
// bounds each manager's lookup; it should be shorter than the overall
// orchestration deadline so one slow manager degrades to "unknown"
// instead of stalling the request.
func NewTracker(managers []Manager, dispatcher *ratelimit.Dispatcher, timeout time.Duration, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Tracker{
		managers:   managers,
		dispatcher: dispatcher,
		timeout:    timeout,
		log:        log.With("component", "tracker"),
	}
}

// Managers returns the configured managers.
func (t *Tracker) Managers() []Manager {
	return t.managers
}

type managerResult struct {
	entry    *Entry
	queue    []QueueItem
	degraded string
	queried  bool
	failed   bool
}

// Snapshot merges every relevant manager's view of the title.
// Managers that do not track the title's media type, or have no id
// mapping for it, are skipped. Returns ErrAllSourcesUnavailable only
// when every queried manager failed.
func (t *Tracker) Snapshot(ctx context.Context, title metadata.Title) (*Snapshot, error) {
	results := make(chan managerResult, len(t.managers))
	var wg sync.WaitGroup

	for _, m := range t.managers {
		if !m.Supports(title.MediaType) {
			continue
		}
		externalID := title.ExternalID(m.IDKey())
		if externalID == "" {
			t.log.Debug("manager skipped, no id mapping", "manager", m.Name(), "title", title.Name, "key", m.IDKey())
			continue
		}

		wg.Add(1)
		go func(m Manager) {
			defer wg.Done()
			results <- t.query(ctx, m, externalID, title)
		}(m)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	snap := &Snapshot{}
	queried, failed := 0, 0
	for r := range results {
		queried++
		if r.degraded != "" {
			snap.Degraded = append(snap.Degraded, r.degraded)
		}
		if r.failed {
			failed++
			continue
		}
		if r.entry != nil {
			snap.Entries = append(snap.Entries, *r.entry)
			snap.Queue = append(snap.Queue, r.queue...)
		}
	}

	if queried > 0 && failed == queried {
		return nil, fmt.Errorf("%w: %d managers failed", ErrAllSourcesUnavailable, failed)
	}
	return snap, nil
}

// query runs one manager's lookup and, when the title is known, its
// queue fetch, both under the manager's timeout and budget.
func (t *Tracker) query(ctx context.Context, m Manager, externalID string, title metadata.Title) managerResult {
	mctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()

	var entry *Entry
	err := t.dispatcher.Do(mctx, m.Name(), func(ctx context.Context) error {
		var lerr error
		entry, lerr = m.Lookup(ctx, externalID)
		return lerr
	})
	if err != nil {
		t.log.Warn("manager lookup failed", "manager", m.Name(), "title", title.Name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return managerResult{
			queried:  true,
			failed:   true,
			degraded: fmt.Sprintf("%s unavailable: %v", m.Name(), err),
		}
	}
	if entry == nil {
		t.log.Debug("manager does not track title", "manager", m.Name(), "title", title.Name)
		return managerResult{queried: true}
	}

	var queue []QueueItem
	err = t.dispatcher.Do(mctx, m.Name(), func(ctx context.Context) error {
		var qerr error
		queue, qerr = m.ActiveQueue(ctx)
		return qerr
	})
	if err != nil {
		// The entry is still useful; only the queue view degrades.
		t.log.Warn("manager queue fetch failed", "manager", m.Name(), "error", err)
		return managerResult{
			queried:  true,
			entry:    entry,
			degraded: fmt.Sprintf("%s queue unavailable: %v", m.Name(), err),
		}
	}

	return managerResult{
		queried: true,
		entry:   entry,
		queue:   filterQueue(queue, entry.TitleID),
	}
}

func filterQueue(items []QueueItem, titleID string) []QueueItem {
	var matched []QueueItem
	for _, item := range items {
		if item.TitleID == titleID {
			matched = append(matched, item)
		}
	}
	return matched
}
