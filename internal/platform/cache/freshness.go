package cache

import (
	"context"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

const DefaultFreshnessTTL = 30 * time.Minute

const refreshKey = "refresh"

type entry[T any] struct {
	payload    T
	computedAt time.Time
}

// Freshness memoizes a single computed value for a fixed window. Entries are
// immutable and replaced by pointer swap, so readers see either the old or
// the new entry. Concurrent refreshes collapse into one compute call that is
// detached from any single caller's cancellation.
type Freshness[T any] struct {
	ttl            time.Duration
	refreshTimeout time.Duration
	current        atomic.Pointer[entry[T]]
	flight  singleflight.Group
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// Snapshot describes the cached entry without exposing the payload.
type Snapshot struct {
	Warm       bool
	ComputedAt time.Time
	Hits       uint64
	Misses     uint64
}

// NewFreshness builds a cache holding entries for ttl. A positive
// refreshTimeout bounds every compute call; zero leaves it unbounded.
func NewFreshness[T any](ttl, refreshTimeout time.Duration) *Freshness[T] {
	if ttl <= 0 {
		ttl = DefaultFreshnessTTL
	}
	if refreshTimeout < 0 {
		refreshTimeout = 0
	}
	return &Freshness[T]{ttl: ttl, refreshTimeout: refreshTimeout}
}

// Get returns the payload when an entry exists and is younger than the TTL at now.
func (f *Freshness[T]) Get(now time.Time) (T, bool) {
	e := f.current.Load()
	if e == nil || now.Sub(e.computedAt) >= f.ttl {
		var zero T
		return zero, false
	}
	return e.payload, true
}

// GetOrCompute returns the fresh payload or runs compute and stores its result
// stamped with now. A failed compute is returned to the caller and leaves the
// previous entry in place; that entry is not served as a fallback.
//
// compute runs on a context that keeps ctx's values but not its cancellation,
// so a caller that gives up does not fail the others waiting on the same
// refresh. Each caller still returns early when its own ctx is done.
func (f *Freshness[T]) GetOrCompute(ctx context.Context, now time.Time, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if compute == nil {
		return zero, false, crerr.New("compute function is required")
	}

	if payload, ok := f.Get(now); ok {
		f.hits.Add(1)
		return payload, true, nil
	}

	refreshCtx := context.WithoutCancel(ctx)
	ch := f.flight.DoChan(refreshKey, func() (any, error) {
		if payload, ok := f.Get(now); ok {
			return payload, nil
		}

		f.misses.Add(1)
		computeCtx := refreshCtx
		if f.refreshTimeout > 0 {
			var cancel context.CancelFunc
			computeCtx, cancel = context.WithTimeout(refreshCtx, f.refreshTimeout)
			defer cancel()
		}
		payload, err := compute(computeCtx)
		if err != nil {
			return nil, err
		}
		f.current.Store(&entry[T]{payload: payload, computedAt: now})
		return payload, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, false, res.Err
	}

	payload, ok := res.Val.(T)
	if !ok {
		return zero, false, crerr.Newf("unexpected cached payload type %T", res.Val)
	}
	return payload, false, nil
}

func (f *Freshness[T]) Snapshot() Snapshot {
	out := Snapshot{
		Hits:   f.hits.Load(),
		Misses: f.misses.Load(),
	}
	if e := f.current.Load(); e != nil {
		out.Warm = true
		out.ComputedAt = e.computedAt
	}
	return out
}
