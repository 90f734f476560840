package query_test

import (
	"context"
	"testing"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/query"
)

func newTestMutation(fn query.MutationFunc[int, string]) *query.Mutation[int, string] {
	return query.NewMutation(fn, junoUtils.NewNopZapLogger(), metrics.NewNoOpMetrics())
}

func TestMutationLifecycle(t *testing.T) {
	t.Run("A successful run moves idle to loading to success", func(t *testing.T) {
		var transitions []query.Status
		m := newTestMutation(func(ctx context.Context, v int) (string, error) {
			return "tx-hash", nil
		})
		m.OnChange(func(snap query.MutationSnapshot[string]) {
			transitions = append(transitions, snap.Status)
		})

		require.Equal(t, query.StatusIdle, m.Snapshot().Status)

		result, err := m.RunAsync(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, "tx-hash", result)

		snap := m.Snapshot()
		require.Equal(t, query.StatusSuccess, snap.Status)
		require.Equal(t, "tx-hash", snap.Data)
		require.Equal(t, []query.Status{query.StatusLoading, query.StatusSuccess}, transitions)
	})

	t.Run("A failed run keeps the error until reset", func(t *testing.T) {
		failure := errors.New("insufficient funds")
		m := newTestMutation(func(ctx context.Context, v int) (string, error) {
			return "", failure
		})

		_, err := m.RunAsync(t.Context(), 1)
		require.ErrorIs(t, err, failure)

		snap := m.Snapshot()
		require.Equal(t, query.StatusError, snap.Status)
		require.ErrorIs(t, snap.Err, failure)

		m.Reset()
		snap = m.Snapshot()
		require.Equal(t, query.StatusIdle, snap.Status)
		require.NoError(t, snap.Err)
	})

	t.Run("Each run is an independent invocation", func(t *testing.T) {
		calls := 0
		m := newTestMutation(func(ctx context.Context, v int) (string, error) {
			calls++

			return "tx-hash", nil
		})

		for range 3 {
			_, err := m.RunAsync(t.Context(), 1)
			require.NoError(t, err)
		}
		require.Equal(t, 3, calls)
	})
}

func TestMutationReset(t *testing.T) {
	t.Run("Reset is idempotent", func(t *testing.T) {
		m := newTestMutation(func(ctx context.Context, v int) (string, error) {
			return "tx-hash", nil
		})

		_, err := m.RunAsync(t.Context(), 1)
		require.NoError(t, err)

		m.Reset()
		first := m.Snapshot()
		m.Reset()
		second := m.Snapshot()

		require.Equal(t, first, second)
		require.Equal(t, query.StatusIdle, second.Status)
		require.Empty(t, second.Data)
	})

	t.Run("A reset mid-flight discards the tracked result", func(t *testing.T) {
		release := make(chan struct{})
		m := newTestMutation(func(ctx context.Context, v int) (string, error) {
			<-release

			return "tx-hash", nil
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			result, err := m.RunAsync(context.Background(), 1)
			// The caller still gets the outcome of its own invocation
			require.NoError(t, err)
			require.Equal(t, "tx-hash", result)
		}()

		require.Eventually(t, func() bool {
			return m.Snapshot().Status == query.StatusLoading
		}, time.Second, time.Millisecond)

		m.Reset()
		close(release)
		<-done

		snap := m.Snapshot()
		require.Equal(t, query.StatusIdle, snap.Status)
		require.Empty(t, snap.Data)
	})
}
