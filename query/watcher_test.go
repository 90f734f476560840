package query_test

import (
	"context"
	"sync"
	"testing"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/query"
)

func TestWatcher(t *testing.T) {
	logger := junoUtils.NewNopZapLogger()
	tracer := metrics.NewNoOpMetrics()

	t.Run("A new block triggers a poll of watched queries", func(t *testing.T) {
		cache := newTestCache(t)
		key := testKey(t, "balance")

		var mu sync.Mutex
		calls := 0
		fetch := func(ctx context.Context) (any, error) {
			mu.Lock()
			calls++
			mine := calls
			mu.Unlock()

			return mine, nil
		}

		unsubscribe := cache.Subscribe(key, func(query.Snapshot) {})
		defer unsubscribe()

		cache.GetOrFetch(t.Context(), key, fetch, query.Options{Watch: true})
		waitForStatus(t, cache, key, query.StatusSuccess)

		blocks := make(chan uint64)
		watcher := query.NewWatcher(cache, 0, blocks, logger, tracer)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			watcher.Run(ctx)
		}()

		blocks <- 100
		require.Eventually(t, func() bool {
			snap, _ := cache.Peek(key)

			return snap.Data == 2
		}, time.Second, time.Millisecond)

		cancel()
		<-done
	})

	t.Run("Queries without observers are not polled", func(t *testing.T) {
		cache := newTestCache(t)
		key := testKey(t, "balance")

		calls := 0
		fetch := func(ctx context.Context) (any, error) {
			calls++

			return calls, nil
		}

		cache.GetOrFetch(t.Context(), key, fetch, query.Options{Watch: true})
		waitForStatus(t, cache, key, query.StatusSuccess)

		require.Empty(t, cache.WatchedKeys())

		blocks := make(chan uint64, 1)
		watcher := query.NewWatcher(cache, 0, blocks, logger, tracer)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go watcher.Run(ctx)

		blocks <- 100
		require.Never(t, func() bool {
			snap, _ := cache.Peek(key)

			return snap.Data != 1
		}, 50*time.Millisecond, 5*time.Millisecond)
	})

	t.Run("A tick landing mid-fetch does not start a second fetch", func(t *testing.T) {
		cache := newTestCache(t)
		key := testKey(t, "balance")

		release := make(chan struct{})
		var mu sync.Mutex
		calls := 0
		fetch := func(ctx context.Context) (any, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			<-release

			return "data", nil
		}

		unsubscribe := cache.Subscribe(key, func(query.Snapshot) {})
		defer unsubscribe()

		cache.GetOrFetch(t.Context(), key, fetch, query.Options{Watch: true})

		for range 5 {
			cache.Poll(t.Context(), key)
		}

		close(release)
		waitForStatus(t, cache, key, query.StatusSuccess)

		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, 1, calls)
	})

	t.Run("The interval ticker drives polling without a block feed", func(t *testing.T) {
		cache := newTestCache(t)
		key := testKey(t, "balance")

		var mu sync.Mutex
		calls := 0
		fetch := func(ctx context.Context) (any, error) {
			mu.Lock()
			calls++
			mine := calls
			mu.Unlock()

			return mine, nil
		}

		unsubscribe := cache.Subscribe(key, func(query.Snapshot) {})
		defer unsubscribe()

		cache.GetOrFetch(t.Context(), key, fetch, query.Options{Watch: true})
		waitForStatus(t, cache, key, query.StatusSuccess)

		watcher := query.NewWatcher(cache, 5*time.Millisecond, nil, logger, tracer)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go watcher.Run(ctx)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()

			return calls >= 3
		}, time.Second, time.Millisecond)
	})

	t.Run("Polled values follow the node's responses tick by tick", func(t *testing.T) {
		cache := newTestCache(t)
		key := testKey(t, "balance")

		responses := []int{10, 10, 15}
		var mu sync.Mutex
		calls := 0
		fetch := func(ctx context.Context) (any, error) {
			mu.Lock()
			defer mu.Unlock()
			value := responses[calls]
			calls++

			return value, nil
		}

		var seen []any
		unsubscribe := cache.Subscribe(key, func(snap query.Snapshot) {
			if snap.Status == query.StatusSuccess {
				mu.Lock()
				seen = append(seen, snap.Data)
				mu.Unlock()
			}
		})
		defer unsubscribe()

		settled := func(n int) func() bool {
			return func() bool {
				mu.Lock()
				defer mu.Unlock()

				return len(seen) >= n
			}
		}

		cache.GetOrFetch(t.Context(), key, fetch, query.Options{Watch: true})
		require.Eventually(t, settled(1), time.Second, time.Millisecond)

		for i := range 2 {
			cache.Poll(t.Context(), key)
			require.Eventually(t, settled(i+2), time.Second, time.Millisecond)
		}

		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, 3, calls)
		require.Equal(t, []any{10, 10, 15}, seen)
	})

	t.Run("A closed block feed without a ticker stops the scheduler", func(t *testing.T) {
		cache := newTestCache(t)

		blocks := make(chan uint64)
		watcher := query.NewWatcher(cache, 0, blocks, logger, tracer)

		done := make(chan struct{})
		go func() {
			defer close(done)
			watcher.Run(t.Context())
		}()

		close(blocks)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop after the block feed closed")
		}
	})
}
