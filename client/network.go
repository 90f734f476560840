package client

import (
	"context"

	"github.com/NethermindEth/starknet.go/rpc"

	"github.com/YohanTz/starknet-query/connector"
	"github.com/YohanTz/starknet-query/query"
)

// Network returns a query resolving to the descriptor of the chain the
// client's reader is connected to.
func (c *Client) Network(opts query.Options) (*query.Query, error) {
	key, err := query.NewKey("network", c.chainID, "", nil)
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		chainID, err := c.reader.ChainID(ctx)
		if err != nil {
			return nil, query.MarkNetwork(err)
		}

		return connector.ChainFromID(chainID, ""), nil
	}, opts), nil
}

// LatestBlock returns a query resolving to the latest block's header data as
// returned by the node. With opts.Watch set it refreshes on every poll tick.
func (c *Client) LatestBlock(opts query.Options) (*query.Query, error) {
	key, err := query.NewKey("latestBlock", c.chainID, "", nil)
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		block, err := c.reader.BlockWithTxHashes(ctx, rpc.BlockID{Tag: rpc.BlockTagLatest})
		if err != nil {
			return nil, query.MarkNetwork(err)
		}

		return block, nil
	}, opts), nil
}
