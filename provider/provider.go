package provider

import (
	"context"

	"github.com/NethermindEth/juno/core/felt"
	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/cockroachdb/errors"
)

// Reader is the read-only subset of the RPC provider the library consumes.
// Narrowing the surface keeps adapters mockable.
//
//go:generate go tool mockgen -destination=../mocks/mock_reader.go -package=mocks github.com/YohanTz/starknet-query/provider Reader
type Reader interface {
	ChainID(ctx context.Context) (string, error)
	Call(ctx context.Context, call rpc.FunctionCall, blockID rpc.BlockID) ([]*felt.Felt, error)
	GetTransactionStatus(ctx context.Context, transactionHash *felt.Felt) (*rpc.TxnStatusResult, error)
	BlockWithTxHashes(ctx context.Context, blockID rpc.BlockID) (any, error)
}

var _ Reader = (*rpc.Provider)(nil)

// New returns a connected starknet.go RPC provider. The chain ID query
// doubles as a connection check.
func New(ctx context.Context, providerURL string, logger *junoUtils.ZapLogger) (*rpc.Provider, string, error) {
	provider, err := rpc.NewProvider(providerURL)
	if err != nil {
		return nil, "", errors.Errorf("cannot create RPC provider at %s: %w", providerURL, err)
	}

	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return nil, "", errors.Errorf("cannot connect to RPC provider at %s: %w", providerURL, err)
	}

	logger.Infof("Connected to RPC at %s (chain %s)", providerURL, chainID)

	return provider, chainID, nil
}
