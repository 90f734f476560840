package connector

import (
	"context"
	"math/big"
	"sync"

	"github.com/NethermindEth/juno/core/felt"
	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/curve"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
	"github.com/cockroachdb/errors"
)

// Multiplier applied on top of fee estimations before submission.
const FeeEstimationMultiplier = 1.5

var (
	_ Connector = (*KeystoreConnector)(nil)
	_ Invoker   = (*KeystoreConnector)(nil)
)

// KeystoreConnector signs locally with an in-memory private key through a
// starknet.go account. Endpoints optionally maps chain IDs to RPC URLs to
// support network switching; without it SwitchNetwork is unsupported.
type KeystoreConnector struct {
	privKey   string
	address   types.Address
	endpoints map[string]string
	logger    *junoUtils.ZapLogger

	mu       sync.Mutex
	provider *rpc.Provider
	account  *account.Account
	chainID  string
}

func NewKeystoreConnector(
	provider *rpc.Provider,
	privKey string,
	address types.Address,
	endpoints map[string]string,
	logger *junoUtils.ZapLogger,
) *KeystoreConnector {
	return &KeystoreConnector{
		privKey:   privKey,
		address:   address,
		endpoints: endpoints,
		logger:    logger,
		provider:  provider,
	}
}

func (c *KeystoreConnector) ID() string {
	return "keystore"
}

func (c *KeystoreConnector) Name() string {
	return "Local keystore"
}

func (c *KeystoreConnector) Connect(ctx context.Context) (*Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account != nil {
		return &Account{Address: c.address, ChainID: c.chainID}, nil
	}

	privateKey, ok := new(big.Int).SetString(c.privKey, 0)
	if !ok {
		return nil, query.MissingInputf("cannot turn private key into a big int")
	}

	publicKey, _ := curve.PrivateKeyToPoint(privateKey)
	publicKeyStr := publicKey.String()
	ks := account.SetNewMemKeystore(publicKeyStr, privateKey)

	acc, err := account.NewAccount(c.provider, c.address.Felt(), publicKeyStr, ks, 2)
	if err != nil {
		return nil, errors.Errorf("cannot create keystore account: %w", err)
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	c.account = acc
	c.chainID = chainID
	c.logger.Debugw("keystore connector connected", "address", c.address.String(), "chain", chainID)

	return &Account{Address: c.address, ChainID: chainID}, nil
}

func (c *KeystoreConnector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.account = nil
	c.chainID = ""

	return nil
}

func (c *KeystoreConnector) Account() (*Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account == nil {
		return nil, query.MissingInputf("keystore connector is not connected")
	}

	return &Account{Address: c.address, ChainID: c.chainID}, nil
}

// SwitchNetwork reconnects against the RPC endpoint registered for the chain.
func (c *KeystoreConnector) SwitchNetwork(ctx context.Context, chainID string) error {
	endpoint, ok := c.endpoints[chainID]
	if !ok {
		return query.Unsupportedf("keystore connector has no endpoint for chain %s", chainID)
	}

	provider, err := rpc.NewProvider(endpoint)
	if err != nil {
		return errors.Errorf("cannot create RPC provider at %s: %w", endpoint, err)
	}

	c.mu.Lock()
	c.provider = provider
	c.account = nil
	c.chainID = ""
	c.mu.Unlock()

	_, err = c.Connect(ctx)

	return err
}

// Execute builds, signs and submits a v3 invoke transaction: sign once to
// estimate the fee, apply the estimated resource bounds, re-sign and send.
func (c *KeystoreConnector) Execute(
	ctx context.Context, calls []rpc.InvokeFunctionCall,
) (*rpc.AddInvokeTransactionResponse, error) {
	if len(calls) == 0 {
		return nil, query.MissingInputf("execute needs at least one call")
	}

	c.mu.Lock()
	acc := c.account
	c.mu.Unlock()
	if acc == nil {
		return nil, query.MissingInputf("no connected account to execute with")
	}

	txn, err := c.buildInvokeTxn(ctx, acc, calls)
	if err != nil {
		return nil, err
	}

	if err := acc.SignInvokeTransaction(ctx, txn); err != nil {
		return nil, errors.Errorf("failed to sign transaction: %w", err)
	}

	estimates, err := acc.Provider.EstimateFee(
		ctx,
		[]rpc.BroadcastTxn{txn},
		[]rpc.SimulationFlag{},
		rpc.WithBlockTag("pending"),
	)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}
	txn.ResourceBounds = utils.FeeEstToResBoundsMap(estimates[0], FeeEstimationMultiplier)

	if err := acc.SignInvokeTransaction(ctx, txn); err != nil {
		return nil, errors.Errorf("failed to re-sign transaction: %w", err)
	}

	resp, err := acc.Provider.AddInvokeTransaction(ctx, txn)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	return resp, nil
}

func (c *KeystoreConnector) buildInvokeTxn(
	ctx context.Context, acc *account.Account, calls []rpc.InvokeFunctionCall,
) (*rpc.BroadcastInvokeTxnV3, error) {
	calldata, err := acc.FmtCalldata(utils.InvokeFuncCallsToFunctionCalls(calls))
	if err != nil {
		return nil, errors.Errorf("failed to format calldata: %w", err)
	}

	nonce, err := acc.Nonce(ctx)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	zeroResources := makeResourceBoundsMapWithZeroValues()

	return utils.BuildInvokeTxn(acc.Address, nonce, calldata, &zeroResources), nil
}

// DeployAccount submits a v3 deploy-account transaction for the connector's
// precomputed account address.
func (c *KeystoreConnector) DeployAccount(
	ctx context.Context, args DeployAccountArgs,
) (*rpc.AddDeployAccountTransactionResponse, error) {
	if args.ClassHash.IsZero() {
		return nil, query.MissingInputf("deploy account needs a class hash")
	}

	c.mu.Lock()
	acc := c.account
	c.mu.Unlock()
	if acc == nil {
		return nil, query.MissingInputf("no connected account to deploy")
	}

	calldata := make([]*felt.Felt, 0, len(args.ConstructorCalldata))
	for _, raw := range args.ConstructorCalldata {
		f, err := new(felt.Felt).SetString(raw)
		if err != nil {
			return nil, query.MissingInputf("invalid constructor calldata %q: %s", raw, err)
		}
		calldata = append(calldata, f)
	}

	zeroResources := makeResourceBoundsMapWithZeroValues()
	txn := utils.BuildDeployAccountTxn(
		new(felt.Felt),
		args.Salt.Felt(),
		calldata,
		args.ClassHash.Felt(),
		&zeroResources,
	)

	if err := acc.SignDeployAccountTransaction(ctx, txn, c.address.Felt()); err != nil {
		return nil, errors.Errorf("failed to sign deploy account: %w", err)
	}

	estimates, err := acc.Provider.EstimateFee(
		ctx,
		[]rpc.BroadcastTxn{txn},
		[]rpc.SimulationFlag{},
		rpc.WithBlockTag("pending"),
	)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}
	txn.ResourceBounds = utils.FeeEstToResBoundsMap(estimates[0], FeeEstimationMultiplier)

	if err := acc.SignDeployAccountTransaction(ctx, txn, c.address.Felt()); err != nil {
		return nil, errors.Errorf("failed to re-sign deploy account: %w", err)
	}

	resp, err := acc.Provider.AddDeployAccountTransaction(ctx, txn)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	return resp, nil
}

func makeResourceBoundsMapWithZeroValues() rpc.ResourceBoundsMapping {
	return rpc.ResourceBoundsMapping{
		L1Gas: rpc.ResourceBounds{
			MaxAmount:       "0x0",
			MaxPricePerUnit: "0x0",
		},
		L1DataGas: rpc.ResourceBounds{
			MaxAmount:       "0x0",
			MaxPricePerUnit: "0x0",
		},
		L2Gas: rpc.ResourceBounds{
			MaxAmount:       "0x0",
			MaxPricePerUnit: "0x0",
		},
	}
}
