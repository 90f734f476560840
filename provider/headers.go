package provider

import (
	"context"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/client"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
	"github.com/cockroachdb/errors"
)

const reconnectDelay = 5 * time.Second

// SubscribeToBlockHeaders opens a websocket connection and subscribes to new
// block headers.
func SubscribeToBlockHeaders(ctx context.Context, wsProviderURL string, logger *junoUtils.ZapLogger) (
	*rpc.WsProvider,
	chan *rpc.BlockHeader,
	*client.ClientSubscription,
	error,
) {
	logger.Debugw("Initialising websocket connection", "url", wsProviderURL)
	wsProvider, err := rpc.NewWebsocketProvider(wsProviderURL)
	if err != nil {
		return nil, nil, nil, errors.Errorf("dialling WS provider at %s: %s", wsProviderURL, err)
	}

	headersFeed := make(chan *rpc.BlockHeader)
	clientSubscription, err := wsProvider.SubscribeNewHeads(
		ctx, headersFeed, rpc.BlockID{Tag: "latest"},
	)
	if err != nil {
		wsProvider.Close()

		return nil, nil, nil, errors.Errorf("subscribing to new block headers: %s", err)
	}

	logger.Infof("Subscribed to new block headers. Subscription ID: %s", clientSubscription.ID())

	return wsProvider, headersFeed, clientSubscription, nil
}

// StreamBlockNumbers feeds new block numbers into blocks until the context
// ends, resubscribing on websocket failures with a bounded retry budget.
// The blocks channel is closed on return so downstream watchers unblock.
func StreamBlockNumbers(
	ctx context.Context,
	wsProviderURL string,
	blocks chan<- uint64,
	maxRetries types.Retries,
	logger *junoUtils.ZapLogger,
) error {
	defer close(blocks)

	retries := maxRetries
	for {
		wsProvider, headersFeed, clientSubscription, err := SubscribeToBlockHeaders(
			ctx, wsProviderURL, logger,
		)
		if err != nil {
			if retries.IsZero() {
				return err
			}
			logger.Errorf("cannot connect to ws provider, %s retries left.", &retries)
			logger.Debug(err.Error())
			retries.Sub()
			query.Sleep(reconnectDelay)

			continue
		}
		retries = maxRetries

		err = forwardHeaders(ctx, headersFeed, blocks, clientSubscription, logger)
		wsProvider.Close()
		if err == nil {
			// Context finished.
			return nil
		}
		logger.Errorw("headers subscription dropped, reconnecting", "error", err.Error())
	}
}

func forwardHeaders(
	ctx context.Context,
	headersFeed chan *rpc.BlockHeader,
	blocks chan<- uint64,
	clientSubscription *client.ClientSubscription,
	logger *junoUtils.ZapLogger,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-clientSubscription.Err():
			return err
		case header, ok := <-headersFeed:
			if !ok {
				return errors.New("headers feed closed")
			}
			logger.Debugw("new block header", "block number", header.Number)
			select {
			case blocks <- header.Number:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
