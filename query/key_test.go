package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/query"
)

func TestNewKey(t *testing.T) {
	t.Run("Equal inputs produce equal keys", func(t *testing.T) {
		type params struct {
			Token string `json:"token"`
			Block uint64 `json:"block"`
		}

		a, err := query.NewKey("balance", "SN_SEPOLIA", "0x123", params{Token: "0xabc", Block: 7})
		require.NoError(t, err)
		b, err := query.NewKey("balance", "SN_SEPOLIA", "0x123", params{Token: "0xabc", Block: 7})
		require.NoError(t, err)

		require.Equal(t, a, b)
		require.Equal(t, a.String(), b.String())
	})

	t.Run("Map parameter order does not change the key", func(t *testing.T) {
		a, err := query.NewKey("read", "SN_MAIN", "", map[string]string{"x": "1", "y": "2"})
		require.NoError(t, err)
		b, err := query.NewKey("read", "SN_MAIN", "", map[string]string{"y": "2", "x": "1"})
		require.NoError(t, err)

		require.Equal(t, a, b)
	})

	t.Run("Different parameters produce different keys", func(t *testing.T) {
		a, err := query.NewKey("balance", "SN_SEPOLIA", "0x123", "0xaaa")
		require.NoError(t, err)
		b, err := query.NewKey("balance", "SN_SEPOLIA", "0x123", "0xbbb")
		require.NoError(t, err)

		require.NotEqual(t, a.String(), b.String())
	})

	t.Run("Different chains produce different keys", func(t *testing.T) {
		a, err := query.NewKey("balance", "SN_SEPOLIA", "0x123", nil)
		require.NoError(t, err)
		b, err := query.NewKey("balance", "SN_MAIN", "0x123", nil)
		require.NoError(t, err)

		require.NotEqual(t, a.String(), b.String())
	})

	t.Run("An empty entity is rejected", func(t *testing.T) {
		_, err := query.NewKey("", "SN_SEPOLIA", "0x123", nil)
		require.Error(t, err)
	})
}

func TestKeyHasAccount(t *testing.T) {
	key, err := query.NewKey("balance", "SN_SEPOLIA", "0x123", nil)
	require.NoError(t, err)

	require.True(t, key.HasAccount("0x123"))
	require.False(t, key.HasAccount("0x456"))
	// The empty account never matches, unscoped keys are not account-bound
	require.False(t, key.HasAccount(""))
}
