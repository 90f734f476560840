package client

import (
	"context"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	snGoUtils "github.com/NethermindEth/starknet.go/utils"

	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

// ReadArgs describes a single contract view call.
type ReadArgs struct {
	Contract   types.Address
	EntryPoint string
	Calldata   []*felt.Felt
}

type readParams struct {
	Contract   string   `json:"contract"`
	EntryPoint string   `json:"entry_point"`
	Calldata   []string `json:"calldata"`
}

func (a ReadArgs) params() readParams {
	calldata := make([]string, len(a.Calldata))
	for i, f := range a.Calldata {
		calldata[i] = f.String()
	}

	return readParams{
		Contract:   a.Contract.String(),
		EntryPoint: a.EntryPoint,
		Calldata:   calldata,
	}
}

// ContractRead returns a query resolving to the raw felts of a view call.
func (c *Client) ContractRead(args ReadArgs, opts query.Options) (*query.Query, error) {
	if args.Contract.IsZero() || args.EntryPoint == "" {
		return nil, query.MissingInputf("contract read needs a contract address and an entry point")
	}

	key, err := query.NewKey("contractRead", c.chainID, "", args.params())
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		result, err := c.reader.Call(ctx, rpc.FunctionCall{
			ContractAddress:    args.Contract.Felt(),
			EntryPointSelector: snGoUtils.GetSelectorFromNameFelt(args.EntryPoint),
			Calldata:           args.Calldata,
		}, rpc.BlockID{Tag: rpc.BlockTagLatest})
		if err != nil {
			return nil, query.MarkNetwork(err)
		}

		return result, nil
	}, opts), nil
}

// WriteResult is the submission receipt of a multicall.
type WriteResult struct {
	TransactionHash types.TransactionHash
}

// ContractWrite builds a mutation submitting the given calls through the
// connected connector. Running it with no connected account or an empty call
// list fails without touching the network.
func (c *Client) ContractWrite() *query.Mutation[[]rpc.InvokeFunctionCall, WriteResult] {
	fn := func(ctx context.Context, calls []rpc.InvokeFunctionCall) (WriteResult, error) {
		if len(calls) == 0 {
			return WriteResult{}, query.MissingInputf("contract write needs at least one call")
		}
		invoker, err := c.manager.Invoker()
		if err != nil {
			return WriteResult{}, err
		}

		resp, err := invoker.Execute(ctx, calls)
		if err != nil {
			return WriteResult{}, err
		}

		c.invalidateAfterWrite()

		return WriteResult{
			TransactionHash: types.TransactionHash(*resp.Hash),
		}, nil
	}

	return query.NewMutation(fn, c.logger, c.tracer)
}

// invalidateAfterWrite drops the connected account's cached reads so the next
// observation refetches post-transaction state.
func (c *Client) invalidateAfterWrite() {
	acc, err := c.manager.Account()
	if err != nil {
		return
	}
	c.cache.InvalidateAccount(acc.Address.String())
}
