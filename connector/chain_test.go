package connector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/connector"
)

func TestChainFromID(t *testing.T) {
	t.Run("Known networks come with their metadata", func(t *testing.T) {
		chain := connector.ChainFromID("SN_MAIN", "http://localhost:6060")
		require.Equal(t, "SN_MAIN", chain.ID)
		require.Equal(t, "Starknet Mainnet", chain.Name)
		require.False(t, chain.NativeCurrency.IsZero())
		require.Equal(t, "http://localhost:6060", chain.RPCEndpoint)
	})

	t.Run("Unknown networks still get a descriptor", func(t *testing.T) {
		chain := connector.ChainFromID("SN_DEVNET", "http://localhost:5050")
		require.Equal(t, "SN_DEVNET", chain.ID)
		require.Equal(t, "SN_DEVNET", chain.Name)
		require.True(t, chain.NativeCurrency.IsZero())
	})
}
