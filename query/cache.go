package query

import (
	"context"
	"sync"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/YohanTz/starknet-query/metrics"
)

type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a settled fetch outcome.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// FetchFunc issues the underlying request. It runs outside of any cache lock
// and must be safe to call concurrently for different keys.
type FetchFunc func(ctx context.Context) (any, error)

// ObserverFunc receives a consistent snapshot on every state transition of
// the observed entry.
type ObserverFunc func(Snapshot)

// Snapshot is an immutable view of a cache entry. During a revalidation the
// previous Data and Err are preserved until the new result lands.
type Snapshot struct {
	Status    Status
	Data      any
	Err       error
	UpdatedAt time.Time
}

type Options struct {
	// Watch marks the entry polling-eligible, see Watcher.
	Watch bool
	// Retry, when set, retries fetches failing with a retryable error.
	Retry *RetryPolicy
	// Fresh is the window during which a successful result is served without
	// refetching. Zero means a successful result never goes stale on its own;
	// it is only replaced through Refetch, polling or invalidation.
	Fresh time.Duration
	// Disabled guards against fetching with incomplete inputs: the entry
	// stays idle and no request is issued.
	Disabled bool
}

type entry struct {
	key   Key
	fetch FetchFunc
	opts  Options

	status    Status
	data      any
	err       error
	updatedAt time.Time

	observers map[uint64]ObserverFunc

	// Fetch bookkeeping. issuedSeq grows on every fetch start, appliedSeq
	// tracks the newest issuance whose result has been applied. A completion
	// with seq <= appliedSeq lost the race to a newer fetch and is dropped.
	issuedSeq  uint64
	appliedSeq uint64

	gcAt time.Time
}

// pending reports whether the newest issued fetch has not settled yet.
// Invalidation fast-forwards appliedSeq, so a superseded fetch still on the
// wire does not count: the entry may schedule a fresh one.
func (e *entry) pending() bool {
	return e.issuedSeq > e.appliedSeq
}

// Cache is the keyed query store: one entry per Key, at most one deduplicated
// fetch in flight per key, observer notification on every transition.
// Instances are independent, there is no package-level state.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	nextObsID  uint64
	logger     *junoUtils.ZapLogger
	tracer     metrics.Tracer
	gcGrace    time.Duration
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

const defaultGCGrace = 5 * time.Minute

func NewCache(logger *junoUtils.ZapLogger, tracer metrics.Tracer, gcGrace time.Duration) *Cache {
	if gcGrace <= 0 {
		gcGrace = defaultGCGrace
	}
	baseCtx, cancel := context.WithCancel(context.Background())

	return &Cache{
		entries:    make(map[string]*entry),
		logger:     logger,
		tracer:     tracer,
		gcGrace:    gcGrace,
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
}

// Close discards all entries and stops in-flight fetch retries. Meant for
// sign-out and test teardown.
func (c *Cache) Close() {
	c.cancelBase()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *Cache) ensureLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{
			key:       key,
			status:    StatusIdle,
			observers: make(map[uint64]ObserverFunc),
		}
		c.entries[id] = e
	}

	return e
}

func snapshotOf(e *entry) Snapshot {
	return Snapshot{
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}

func observersOf(e *entry) []ObserverFunc {
	obs := make([]ObserverFunc, 0, len(e.observers))
	for _, fn := range e.observers {
		obs = append(obs, fn)
	}

	return obs
}

// GetOrFetch returns the entry's current snapshot and, when the entry is
// absent or stale, schedules exactly one fetch for the key. Concurrent calls
// with the same key share the in-flight fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch FetchFunc, opts Options) Snapshot {
	c.mu.Lock()
	e := c.ensureLocked(key)
	e.fetch = fetch
	e.opts = opts

	if opts.Disabled {
		snap := snapshotOf(e)
		c.mu.Unlock()

		return snap
	}

	if e.pending() {
		// Deduplicated: the caller observes the fetch already in flight.
		snap := snapshotOf(e)
		c.mu.Unlock()

		return snap
	}

	if e.status == StatusSuccess {
		if opts.Fresh == 0 || Now().Sub(e.updatedAt) < opts.Fresh {
			snap := snapshotOf(e)
			c.mu.Unlock()
			c.tracer.RecordCacheHit(key.Entity)

			return snap
		}
	}

	snap, obs := c.startFetchLocked(ctx, e)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}

	return snap
}

// Register binds a fetch function and options to the key without scheduling
// anything.
func (c *Cache) Register(key Key, fetch FetchFunc, opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensureLocked(key)
	e.fetch = fetch
	e.opts = opts
}

// Refetch forces a new fetch for the key, bypassing freshness and dedup.
// Cached data and error are kept until the new result lands.
func (c *Cache) Refetch(ctx context.Context, key Key) Snapshot {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || e.fetch == nil || e.opts.Disabled {
		c.mu.Unlock()

		return Snapshot{}
	}

	snap, obs := c.startFetchLocked(ctx, e)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}

	return snap
}

// Poll refetches the key on behalf of the watch scheduler. A tick that lands
// while a fetch is still in flight, or once no observer remains, is a no-op.
func (c *Cache) Poll(ctx context.Context, key Key) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || e.fetch == nil || !e.opts.Watch || e.pending() || len(e.observers) == 0 {
		c.mu.Unlock()

		return
	}

	snap, obs := c.startFetchLocked(ctx, e)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}

// startFetchLocked moves the entry to loading and spawns the fetch. It
// returns the loading snapshot and the observers to notify after unlocking.
func (c *Cache) startFetchLocked(ctx context.Context, e *entry) (Snapshot, []ObserverFunc) {
	e.issuedSeq++
	e.status = StatusLoading

	seq := e.issuedSeq
	fetch := e.fetch
	policy := e.opts.Retry
	c.tracer.RecordQueryFetch(e.key.Entity)
	c.logger.Debugw("starting query fetch", "key", e.key.String(), "seq", seq)

	go c.runFetch(ctx, e, seq, fetch, policy)

	return snapshotOf(e), observersOf(e)
}

func (c *Cache) runFetch(ctx context.Context, e *entry, seq uint64, fetch FetchFunc, policy *RetryPolicy) {
	// A canceled cache stops the whole fetch, an unmounted caller does not:
	// eviction never aborts a request already on the wire.
	if ctx == nil {
		ctx = c.baseCtx
	}

	data, err := fetch(ctx)

	if policy != nil {
		for attempt := uint(1); err != nil && Retryable(err) && attempt < policy.MaxAttempts; attempt++ {
			c.tracer.RecordFetchRetry(e.key.Entity)
			c.logger.Debugw(
				"retrying query fetch",
				"key", e.key.String(),
				"attempt", attempt,
				"error", err.Error(),
			)
			Sleep(policy.Delay(attempt))
			if c.baseCtx.Err() != nil {
				return
			}

			data, err = fetch(ctx)
		}
	}

	c.complete(e, seq, data, err)
}

func (c *Cache) complete(e *entry, seq uint64, data any, err error) {
	c.mu.Lock()

	if seq <= e.appliedSeq {
		// A newer fetch already applied its result; the late completion of a
		// superseded fetch must not overwrite it.
		c.mu.Unlock()
		c.logger.Debugw("discarding superseded fetch result", "key", e.key.String(), "seq", seq)

		return
	}
	e.appliedSeq = seq

	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.data = data
		e.err = nil
	}
	e.updatedAt = Now()

	snap := snapshotOf(e)
	obs := observersOf(e)
	c.mu.Unlock()

	if err != nil {
		c.tracer.RecordFetchError(e.key.Entity)
		c.logger.Debugw("query fetch failed", "key", e.key.String(), "error", err.Error())
	}

	for _, fn := range obs {
		fn(snap)
	}
}

// Subscribe registers an observer and returns its unsubscribe function. When
// the last observer leaves, the entry becomes eligible for eviction after the
// grace period.
func (c *Cache) Subscribe(key Key, fn ObserverFunc) func() {
	c.mu.Lock()
	e := c.ensureLocked(key)
	c.nextObsID++
	id := c.nextObsID
	e.observers[id] = fn
	e.gcAt = time.Time{}
	active := c.activeLocked()
	c.mu.Unlock()

	c.tracer.UpdateActiveQueries(active)

	var once sync.Once

	return func() {
		once.Do(func() { c.unsubscribe(key, id) })
	}
}

func (c *Cache) unsubscribe(key Key, id uint64) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok {
		c.mu.Unlock()

		return
	}

	delete(e.observers, id)
	if len(e.observers) == 0 {
		e.gcAt = Now().Add(c.gcGrace)
		time.AfterFunc(c.gcGrace, func() { c.collect(key) })
	}
	active := c.activeLocked()
	c.mu.Unlock()

	c.tracer.UpdateActiveQueries(active)
}

func (c *Cache) collect(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || len(e.observers) > 0 || e.gcAt.IsZero() {
		return
	}
	if Now().Before(e.gcAt) {
		return
	}

	delete(c.entries, key.String())
}

func (c *Cache) activeLocked() int {
	active := 0
	for _, e := range c.entries {
		if len(e.observers) > 0 {
			active++
		}
	}

	return active
}

// Peek returns the current snapshot without scheduling anything.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{}, false
	}

	return snapshotOf(e), true
}

// Invalidate resets the entry to idle. Results of fetches still in flight
// are discarded, a subsequent read issues a fresh fetch. Entries without
// observers are dropped outright.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok {
		c.mu.Unlock()

		return
	}

	snap, obs := c.invalidateLocked(e)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}

// InvalidateMatching resets every entry whose key satisfies the predicate and
// returns how many were hit.
func (c *Cache) InvalidateMatching(pred func(Key) bool) int {
	type pending struct {
		snap Snapshot
		obs  []ObserverFunc
	}

	c.mu.Lock()
	var notifications []pending
	count := 0
	for _, e := range c.entries {
		if !pred(e.key) {
			continue
		}
		count++
		snap, obs := c.invalidateLocked(e)
		if len(obs) > 0 {
			notifications = append(notifications, pending{snap, obs})
		}
	}
	c.mu.Unlock()

	for _, n := range notifications {
		for _, fn := range n.obs {
			fn(n.snap)
		}
	}

	return count
}

// InvalidateAccount resets every entry scoped to the given account
// identifier, e.g. after a connector switch.
func (c *Cache) InvalidateAccount(account string) int {
	return c.InvalidateMatching(func(k Key) bool { return k.HasAccount(account) })
}

func (c *Cache) invalidateLocked(e *entry) (Snapshot, []ObserverFunc) {
	// Fast-forward appliedSeq so an in-flight fetch cannot resurrect the
	// invalidated state when it completes.
	e.appliedSeq = e.issuedSeq
	e.status = StatusIdle
	e.data = nil
	e.err = nil
	e.updatedAt = time.Time{}

	if len(e.observers) == 0 {
		delete(c.entries, e.key.String())
	}

	return snapshotOf(e), observersOf(e)
}

// WatchedKeys lists the polling-eligible keys: watch-enabled entries with at
// least one observer.
func (c *Cache) WatchedKeys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []Key
	for _, e := range c.entries {
		if e.opts.Watch && len(e.observers) > 0 {
			keys = append(keys, e.key)
		}
	}

	return keys
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
