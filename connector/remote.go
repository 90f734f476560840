package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/NethermindEth/juno/core/felt"
	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
	"github.com/cockroachdb/errors"
)

const signEndpoint = "/sign"

// SignRequest is the wire format sent to the remote signing service.
type SignRequest struct {
	Transaction *rpc.BroadcastInvokeTxnV3 `json:"transaction"`
	ChainID     *felt.Felt                `json:"chain_id"`
}

type SignResponse struct {
	Signature []*felt.Felt `json:"signature"`
}

var (
	_ Connector = (*RemoteConnector)(nil)
	_ Invoker   = (*RemoteConnector)(nil)
)

// RemoteConnector keeps the private key outside the process: transactions are
// hashed and signed by an external HTTP signing service, everything else goes
// through the RPC provider directly.
type RemoteConnector struct {
	provider *rpc.Provider
	address  types.Address
	url      string
	logger   *junoUtils.ZapLogger

	mu        sync.Mutex
	connected bool
	chainID   string
	chainIDF  felt.Felt
}

func NewRemoteConnector(
	provider *rpc.Provider,
	address types.Address,
	signerURL string,
	logger *junoUtils.ZapLogger,
) *RemoteConnector {
	return &RemoteConnector{
		provider: provider,
		address:  address,
		url:      signerURL,
		logger:   logger,
	}
}

func (c *RemoteConnector) ID() string {
	return "remote-signer"
}

func (c *RemoteConnector) Name() string {
	return "Remote signing service"
}

func (c *RemoteConnector) Connect(ctx context.Context) (*Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return &Account{Address: c.address, ChainID: c.chainID}, nil
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	c.connected = true
	c.chainID = chainID
	c.chainIDF = *new(felt.Felt).SetBytes([]byte(chainID))
	c.logger.Debugw("remote connector connected", "address", c.address.String(), "signer", c.url)

	return &Account{Address: c.address, ChainID: chainID}, nil
}

func (c *RemoteConnector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	c.chainID = ""

	return nil
}

func (c *RemoteConnector) Account() (*Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, query.MissingInputf("remote connector is not connected")
	}

	return &Account{Address: c.address, ChainID: c.chainID}, nil
}

// The remote signing service is pinned to one chain: its signatures embed the
// chain ID.
func (c *RemoteConnector) SwitchNetwork(ctx context.Context, chainID string) error {
	return query.Unsupportedf("remote signer connector cannot switch networks")
}

func (c *RemoteConnector) Execute(
	ctx context.Context, calls []rpc.InvokeFunctionCall,
) (*rpc.AddInvokeTransactionResponse, error) {
	if len(calls) == 0 {
		return nil, query.MissingInputf("execute needs at least one call")
	}

	c.mu.Lock()
	connected := c.connected
	chainIDF := c.chainIDF
	c.mu.Unlock()
	if !connected {
		return nil, query.MissingInputf("no connected account to execute with")
	}

	nonce, err := c.provider.Nonce(ctx, rpc.WithBlockTag("pending"), c.address.Felt())
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	calldata := account.FmtCallDataCairo2(utils.InvokeFuncCallsToFunctionCalls(calls))
	zeroResources := makeResourceBoundsMapWithZeroValues()
	// The transaction needs a signature before the fee can be estimated, as
	// the signature takes part in validation.
	txn := utils.BuildInvokeTxn(c.address.Felt(), nonce, calldata, &zeroResources)

	if err := c.sign(txn, &chainIDF); err != nil {
		return nil, err
	}

	estimates, err := c.provider.EstimateFee(
		ctx,
		[]rpc.BroadcastTxn{txn},
		[]rpc.SimulationFlag{},
		rpc.WithBlockTag("pending"),
	)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}
	txn.ResourceBounds = utils.FeeEstToResBoundsMap(estimates[0], FeeEstimationMultiplier)

	// The fee takes part in the transaction hash, sign again with the
	// estimated bounds.
	if err := c.sign(txn, &chainIDF); err != nil {
		return nil, err
	}

	resp, err := c.provider.AddInvokeTransaction(ctx, txn)
	if err != nil {
		return nil, query.MarkNetwork(err)
	}

	return resp, nil
}

// Deploying through the remote signer is not offered: the service only signs
// invoke transactions.
func (c *RemoteConnector) DeployAccount(
	ctx context.Context, args DeployAccountArgs,
) (*rpc.AddDeployAccountTransactionResponse, error) {
	return nil, query.Unsupportedf("remote signer connector cannot deploy accounts")
}

func (c *RemoteConnector) sign(txn *rpc.BroadcastInvokeTxnV3, chainID *felt.Felt) error {
	reqBody := SignRequest{Transaction: txn, ChainID: chainID}
	jsonData, err := json.Marshal(&reqBody)
	if err != nil {
		return err
	}

	resp, err := http.Post(c.url+signEndpoint, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return query.MarkNetwork(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return query.MarkNetwork(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf(
			"signing service error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	var signResp SignResponse
	if err := json.Unmarshal(body, &signResp); err != nil {
		return fmt.Errorf("cannot decode signing service response: %w", err)
	}
	if len(signResp.Signature) != 2 {
		return errors.Newf("signing service returned %d signature parts, want 2", len(signResp.Signature))
	}

	txn.Signature = []*felt.Felt{signResp.Signature[0], signResp.Signature[1]}

	return nil
}
