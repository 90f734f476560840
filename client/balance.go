package client

import (
	"context"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	snGoUtils "github.com/NethermindEth/starknet.go/utils"
	"github.com/cockroachdb/errors"

	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

// BalanceArgs selects whose balance of which token to fetch. A nil Address
// uses the connected account; a nil Token defaults to the chain's STRK token.
type BalanceArgs struct {
	Address *types.Address
	Token   *types.Address
}

func (c *Client) fetchBalance(
	ctx context.Context, token, owner types.Address,
) (types.Balance, error) {
	result, err := c.reader.Call(ctx, rpc.FunctionCall{
		ContractAddress:    token.Felt(),
		EntryPointSelector: snGoUtils.GetSelectorFromNameFelt("balance_of"),
		Calldata:           []*felt.Felt{owner.Felt()},
	}, rpc.BlockID{Tag: rpc.BlockTagLatest})
	if err != nil {
		return types.Balance{}, query.MarkNetwork(err)
	}
	if len(result) != 2 {
		return types.Balance{}, query.MarkNetwork(
			errors.Errorf("unexpected balance_of response length %d from token %s", len(result), token.String()),
		)
	}

	return types.NewBalance(result[0], result[1]), nil
}

// Balance returns a query resolving to the owner's ERC-20 balance as a
// types.Balance. With opts.Watch set, the watcher refreshes it on every poll
// tick while subscribed.
func (c *Client) Balance(args BalanceArgs, opts query.Options) (*query.Query, error) {
	owner, err := c.accountAddress(args.Address)
	if err != nil {
		return nil, err
	}
	token := c.strk
	if args.Token != nil {
		token = *args.Token
	}

	key, err := query.NewKey("balance", c.chainID, owner.String(), token.String())
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		balance, err := c.fetchBalance(ctx, token, owner)
		if err != nil {
			return nil, err
		}

		return balance, nil
	}, opts), nil
}

// EthBalance is Balance against the chain's ETH token.
func (c *Client) EthBalance(address *types.Address, opts query.Options) (*query.Query, error) {
	eth := c.eth

	return c.Balance(BalanceArgs{Address: address, Token: &eth}, opts)
}
