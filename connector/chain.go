package connector

import "github.com/YohanTz/starknet-query/types"

// Chain is an immutable descriptor of a Starknet network. The native
// currency address is the STRK fee token contract on that network.
type Chain struct {
	ID             string
	Name           string
	NativeCurrency types.Address
	RPCEndpoint    string
}

// The STRK token lives at the same address on both public networks.
const strkTokenAddress = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"

var knownChains = map[string]Chain{
	"SN_MAIN": {
		ID:             "SN_MAIN",
		Name:           "Starknet Mainnet",
		NativeCurrency: types.MustAddressFromString(strkTokenAddress),
	},
	"SN_SEPOLIA": {
		ID:             "SN_SEPOLIA",
		Name:           "Starknet Sepolia Testnet",
		NativeCurrency: types.MustAddressFromString(strkTokenAddress),
	},
}

// ChainFromID resolves a descriptor for the given chain ID string. Unknown
// networks (devnets, forks) get a descriptor carrying only the ID.
func ChainFromID(chainID, rpcEndpoint string) Chain {
	chain, ok := knownChains[chainID]
	if !ok {
		chain = Chain{ID: chainID, Name: chainID}
	}
	chain.RPCEndpoint = rpcEndpoint

	return chain
}
