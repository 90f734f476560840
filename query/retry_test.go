package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/query"
)

func TestRetryable(t *testing.T) {
	t.Run("Not found and network failures are retryable", func(t *testing.T) {
		require.True(t, query.Retryable(query.NotFoundf("transaction not found")))
		require.True(t, query.Retryable(query.MarkNetwork(errors.New("connection refused"))))
	})

	t.Run("Terminal failures are not retryable", func(t *testing.T) {
		require.False(t, query.Retryable(nil))
		require.False(t, query.Retryable(query.Rejectedf("reverted")))
		require.False(t, query.Retryable(query.MissingInputf("no address")))
		require.False(t, query.Retryable(query.Unsupportedf("no deploy support")))
		require.False(t, query.Retryable(errors.New("some other failure")))
	})

	t.Run("Context cancellation stops retrying even when marked retryable", func(t *testing.T) {
		err := query.MarkNetwork(errors.Mark(errors.New("canceled mid-request"), context.Canceled))
		require.False(t, query.Retryable(err))
	})
}

func TestRetryPolicyDelay(t *testing.T) {
	policy := query.RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
	}

	require.Equal(t, time.Second, policy.Delay(1))
	require.Equal(t, 2*time.Second, policy.Delay(2))
	require.Equal(t, 4*time.Second, policy.Delay(3))
	require.Equal(t, 8*time.Second, policy.Delay(4))
	// Capped at MaxDelay from here on
	require.Equal(t, 8*time.Second, policy.Delay(5))
	require.Equal(t, 8*time.Second, policy.Delay(20))
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := query.DefaultRetryPolicy()
	require.NotZero(t, policy.MaxAttempts)
	require.NotZero(t, policy.BaseDelay)
	require.GreaterOrEqual(t, policy.MaxDelay, policy.BaseDelay)
}
