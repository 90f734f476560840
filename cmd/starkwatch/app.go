package main

import (
	"context"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/rpc"

	"github.com/YohanTz/starknet-query/client"
	"github.com/YohanTz/starknet-query/config"
	"github.com/YohanTz/starknet-query/connector"
	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/provider"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

// app bundles everything a subcommand needs once the provider connection is
// up.
type app struct {
	client   *client.Client
	provider *rpc.Provider
	chainID  string

	cfg        *config.Config
	contracts  config.ContractAddresses
	maxRetries types.Retries
	logger     *junoUtils.ZapLogger
	tracer     metrics.Tracer
}

// newApp builds the client around an already-dialed provider.
func newApp(
	reader *rpc.Provider,
	chainID string,
	cfg *config.Config,
	contracts config.ContractAddresses,
	maxRetries types.Retries,
	logger *junoUtils.ZapLogger,
	tracer metrics.Tracer,
) (*app, error) {
	cl, err := client.New(reader, chainID, cfg.Provider.HTTP, contracts, logger, tracer)
	if err != nil {
		return nil, err
	}

	return &app{
		client:     cl,
		provider:   reader,
		chainID:    chainID,
		cfg:        cfg,
		contracts:  contracts,
		maxRetries: maxRetries,
		logger:     logger,
		tracer:     tracer,
	}, nil
}

// connectAccount wires the configured signing identity as the active
// connector. Write commands call this, read commands do not need it.
func (a *app) connectAccount(ctx context.Context) error {
	if !a.cfg.Account.Configured() {
		return query.MissingInputf("no account configured, set an address and a key or signer url")
	}
	if err := a.cfg.Account.Check(); err != nil {
		return err
	}

	address, err := types.AddressFromString(a.cfg.Account.Address)
	if err != nil {
		return err
	}

	var conn connector.Connector
	if a.cfg.Account.External() {
		conn = connector.NewRemoteConnector(a.provider, address, a.cfg.Account.SignerURL, a.logger)
	} else {
		endpoints := map[string]string{a.chainID: a.cfg.Provider.HTTP}
		conn = connector.NewKeystoreConnector(
			a.provider, a.cfg.Account.PrivKey, address, endpoints, a.logger,
		)
	}

	_, err = a.client.Manager().Connect(ctx, conn)

	return err
}

// startWatcher launches block-driven polling. With no WS endpoint configured
// the watcher falls back to its interval ticker alone.
func (a *app) startWatcher(ctx context.Context) {
	var blocks chan uint64
	if a.cfg.Provider.WS != "" {
		blocks = make(chan uint64, 1)
		go func() {
			if err := provider.StreamBlockNumbers(
				ctx, a.cfg.Provider.WS, blocks, a.maxRetries, a.logger,
			); err != nil && ctx.Err() == nil {
				a.logger.Errorw("Block header stream stopped", "error", err)
			}
		}()
	}

	watcher := query.NewWatcher(a.client.Cache(), query.DefaultPollInterval, blocks, a.logger, a.tracer)
	go watcher.Run(ctx)
}

func (a *app) close() {
	if err := a.client.Close(); err != nil {
		a.logger.Debugw("Closing client", "error", err)
	}
}
