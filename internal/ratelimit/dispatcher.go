// Package ratelimit bounds outbound calls to external collaborators.
// Each collaborator gets an in-flight cap and a calls-per-second
// token bucket; calls that cannot get a permit before their deadline
// fail with ErrRateLimited instead of queuing indefinitely.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrRateLimited indicates the local budget for a collaborator is
	// exhausted. Surfaced immediately; the caller may retry later.
	ErrRateLimited = errors.New("rate limit budget exhausted")

	// ErrUpstream marks a collaborator as unreachable or returning a
	// malformed payload. Calls failing with it are retried once with
	// backoff before the error is surfaced.
	ErrUpstream = errors.New("upstream unavailable")
)

// Budget bounds calls to one collaborator.
type Budget struct {
	MaxInFlight int
	PerSecond   float64
	Burst       int
}

type collaborator struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// Dispatcher applies per-collaborator budgets and retries transient
// upstream failures once. Safe for concurrent use.
type Dispatcher struct {
	mu       sync.Mutex
	states   map[string]*collaborator
	defaults Budget
	backoff  time.Duration
	log      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBackoff sets the delay before the single retry of an upstream
// failure.
func WithBackoff(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.backoff = d
	}
}

// New creates a dispatcher with the given default budget.
func New(defaults Budget, log *slog.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		states:   make(map[string]*collaborator),
		defaults: defaults,
		backoff:  500 * time.Millisecond,
		log:      log.With("component", "dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Configure sets the budget for one collaborator, replacing the
// default. Must be called before the first Do for that name to take
// effect deterministically.
func (d *Dispatcher) Configure(name string, b Budget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states[name] = newCollaborator(b)
}

// Do runs fn under the named collaborator's budget. It acquires an
// in-flight permit and a rate token, failing with ErrRateLimited when
// either cannot be had before ctx's deadline. When fn fails with
// ErrUpstream the call is retried exactly once after a backoff.
// Cancelling ctx releases all permits and aborts any pending retry.
func (d *Dispatcher) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	c := d.state(name)

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return permitErr(ctx, name, err)
	}
	defer c.sem.Release(1)

	if err := c.limiter.Wait(ctx); err != nil {
		return permitErr(ctx, name, err)
	}

	err := fn(ctx)
	if err == nil || !errors.Is(err, ErrUpstream) {
		return err
	}

	d.log.Warn("upstream call failed, retrying", "collaborator", name, "error", err, "backoff", d.backoff)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.backoff):
	}

	if werr := c.limiter.Wait(ctx); werr != nil {
		return permitErr(ctx, name, werr)
	}
	return fn(ctx)
}

func (d *Dispatcher) state(name string) *collaborator {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.states[name]
	if !ok {
		c = newCollaborator(d.defaults)
		d.states[name] = c
	}
	return c
}

func newCollaborator(b Budget) *collaborator {
	inFlight := int64(b.MaxInFlight)
	if inFlight <= 0 {
		inFlight = 1
	}
	limit := rate.Limit(b.PerSecond)
	if b.PerSecond <= 0 {
		limit = rate.Inf
	}
	burst := b.Burst
	if burst <= 0 {
		burst = 1
	}
	return &collaborator{
		sem:     semaphore.NewWeighted(inFlight),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// permitErr maps a failed permit acquisition: a deadline that expired
// while waiting means the budget was exhausted; an outright
// cancellation propagates as-is.
func permitErr(ctx context.Context, name string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w: %v", name, ErrRateLimited, err)
}
