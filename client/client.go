package client

import (
	junoUtils "github.com/NethermindEth/juno/utils"

	"github.com/YohanTz/starknet-query/config"
	"github.com/YohanTz/starknet-query/connector"
	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/provider"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

// Client ties a Starknet reader, the query cache and the connector manager
// together and exposes the derived queries built on top of them.
type Client struct {
	reader   provider.Reader
	cache    *query.Cache
	manager  *connector.Manager
	statuses *StatusStore

	chainID string
	strk    types.Address
	eth     types.Address
	naming  types.Address

	logger *junoUtils.ZapLogger
	tracer metrics.Tracer
}

// New builds a client around an already-connected reader. The chain id pins
// cache keys and contract defaults; contracts left empty in the config fall
// back to the chain's canonical deployments.
func New(
	reader provider.Reader,
	chainID string,
	rpcEndpoint string,
	contracts config.ContractAddresses,
	logger *junoUtils.ZapLogger,
	tracer metrics.Tracer,
) (*Client, error) {
	contracts.SetDefaults(chainID)
	if err := contracts.Check(); err != nil {
		return nil, err
	}
	strk, eth, naming := contracts.Parsed()

	statuses, err := NewStatusStore(logger)
	if err != nil {
		return nil, err
	}

	cache := query.NewCache(logger, tracer, 0)

	return &Client{
		reader:   reader,
		cache:    cache,
		manager:  connector.NewManager(cache, rpcEndpoint, logger, tracer),
		statuses: statuses,
		chainID:  chainID,
		strk:     strk,
		eth:      eth,
		naming:   naming,
		logger:   logger,
		tracer:   tracer,
	}, nil
}

func (c *Client) Cache() *query.Cache { return c.cache }

func (c *Client) Manager() *connector.Manager { return c.manager }

func (c *Client) ChainID() string { return c.chainID }

// Close tears down the cache and the terminal status store.
func (c *Client) Close() error {
	c.cache.Close()

	return c.statuses.Close()
}

// accountAddress resolves the account a query should run against: the
// explicit address when given, otherwise the connected account.
func (c *Client) accountAddress(explicit *types.Address) (types.Address, error) {
	if explicit != nil {
		return *explicit, nil
	}
	acc, err := c.manager.Account()
	if err != nil {
		return types.Address{}, query.MissingInputf("no account address given and no connector connected")
	}

	return acc.Address, nil
}
