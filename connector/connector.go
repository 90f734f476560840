package connector

import (
	"context"

	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/YohanTz/starknet-query/types"
)

// Account is the identity a connector resolves once connected.
type Account struct {
	Address types.Address
	ChainID string
}

// Connector is the fixed capability set of a wallet provider. Exactly one
// connector is active at a time, see Manager.
//
//go:generate go tool mockgen -destination=../mocks/mock_connector.go -package=mocks github.com/YohanTz/starknet-query/connector Connector
type Connector interface {
	ID() string
	Name() string
	Connect(ctx context.Context) (*Account, error)
	Disconnect(ctx context.Context) error
	// Account returns the connected identity or an error while disconnected.
	Account() (*Account, error)
	// SwitchNetwork re-targets the connector to another chain. Connectors
	// without the capability fail with an unsupported-operation error.
	SwitchNetwork(ctx context.Context, chainID string) error
}

// Invoker is the write capability of connectors that can sign and submit
// transactions.
type Invoker interface {
	// Execute signs and submits a v3 invoke transaction for the given calls.
	Execute(ctx context.Context, calls []rpc.InvokeFunctionCall) (*rpc.AddInvokeTransactionResponse, error)
	// DeployAccount deploys the connector's account contract.
	DeployAccount(ctx context.Context, args DeployAccountArgs) (*rpc.AddDeployAccountTransactionResponse, error)
}

// DeployAccountArgs parameterize a deploy-account transaction.
type DeployAccountArgs struct {
	ClassHash           types.Address
	Salt                types.Address
	ConstructorCalldata []string
}
