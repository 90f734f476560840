package query

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Query is a bound read: a key, its fetch function and its options, tied to
// a cache. Adapters hand these out so callers can read, subscribe and refetch
// without re-deriving the key.
type Query struct {
	cache *Cache
	key   Key
	fetch FetchFunc
	opts  Options
}

func (c *Cache) Bind(key Key, fetch FetchFunc, opts Options) *Query {
	return &Query{
		cache: c,
		key:   key,
		fetch: fetch,
		opts:  opts,
	}
}

func (q *Query) Key() Key {
	return q.key
}

// Get returns the current snapshot, scheduling a deduplicated fetch when
// needed.
func (q *Query) Get(ctx context.Context) Snapshot {
	return q.cache.GetOrFetch(ctx, q.key, q.fetch, q.opts)
}

// Refetch bypasses freshness checks. Cached data is kept until the new
// result lands.
func (q *Query) Refetch(ctx context.Context) Snapshot {
	q.cache.Register(q.key, q.fetch, q.opts)

	return q.cache.Refetch(ctx, q.key)
}

func (q *Query) Subscribe(fn ObserverFunc) func() {
	return q.cache.Subscribe(q.key, fn)
}

func (q *Query) Peek() (Snapshot, bool) {
	return q.cache.Peek(q.key)
}

// Wait blocks until the query settles into success or error and returns the
// terminal snapshot. A disabled query fails immediately instead of hanging.
func (q *Query) Wait(ctx context.Context) (Snapshot, error) {
	if q.opts.Disabled {
		return Snapshot{}, MissingInputf("query %s is disabled, required inputs are missing", q.key.Entity)
	}

	signal := make(chan struct{}, 1)
	unsubscribe := q.Subscribe(func(Snapshot) {
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	snap := q.Get(ctx)
	for {
		if snap.Status.Terminal() {
			return snap, snap.Err
		}

		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-signal:
			if current, ok := q.Peek(); ok {
				snap = current
			}
		}
	}
}

// DataAs projects a snapshot's payload into its concrete type.
func DataAs[T any](snap Snapshot) (T, error) {
	var zero T
	if snap.Err != nil {
		return zero, snap.Err
	}
	if snap.Status != StatusSuccess {
		return zero, errors.Newf("query has no data yet (status %s)", snap.Status)
	}

	data, ok := snap.Data.(T)
	if !ok {
		return zero, errors.Newf("query data has unexpected type %T", snap.Data)
	}

	return data, nil
}
