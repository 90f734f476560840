package client

import (
	"context"

	"github.com/YohanTz/starknet-query/connector"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

// DeployResult is the submission receipt of an account deployment.
type DeployResult struct {
	TransactionHash types.TransactionHash
	ContractAddress types.Address
}

// DeployAccount builds a mutation deploying a new account contract through
// the connected connector.
func (c *Client) DeployAccount() *query.Mutation[connector.DeployAccountArgs, DeployResult] {
	fn := func(ctx context.Context, args connector.DeployAccountArgs) (DeployResult, error) {
		if args.ClassHash.IsZero() {
			return DeployResult{}, query.MissingInputf("account deployment needs a class hash")
		}
		invoker, err := c.manager.Invoker()
		if err != nil {
			return DeployResult{}, err
		}

		resp, err := invoker.DeployAccount(ctx, args)
		if err != nil {
			return DeployResult{}, err
		}

		result := DeployResult{
			TransactionHash: types.TransactionHash(*resp.Hash),
		}
		if resp.ContractAddress != nil {
			result.ContractAddress = types.Address(*resp.ContractAddress)
		}

		return result, nil
	}

	return query.NewMutation(fn, c.logger, c.tracer)
}
