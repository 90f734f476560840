package query

import (
	"context"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/YohanTz/starknet-query/metrics"
	"github.com/sourcegraph/conc"
)

// Watcher re-issues watch-enabled queries either on a fixed interval or when
// a new block arrives on the feed, whichever trigger sources are configured.
// Entries without observers are skipped; the cache itself guarantees a tick
// never overlaps an in-flight fetch for the same key.
type Watcher struct {
	cache    *Cache
	interval time.Duration
	blocks   <-chan uint64
	logger   *junoUtils.ZapLogger
	tracer   metrics.Tracer
}

const DefaultPollInterval = 2 * time.Second

// NewWatcher builds a scheduler over the given cache. interval <= 0 disables
// the ticker, a nil blocks channel disables the block trigger; at least one
// source must be configured before Run is useful.
func NewWatcher(
	cache *Cache,
	interval time.Duration,
	blocks <-chan uint64,
	logger *junoUtils.ZapLogger,
	tracer metrics.Tracer,
) *Watcher {
	return &Watcher{
		cache:    cache,
		interval: interval,
		blocks:   blocks,
		logger:   logger,
		tracer:   tracer,
	}
}

// Run drives the scheduler until the context is done or the block feed
// closes with no ticker configured.
func (w *Watcher) Run(ctx context.Context) {
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	blocks := w.blocks
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch scheduler stopped")

			return
		case <-tick:
			w.pollAll(ctx)
		case blockNumber, ok := <-blocks:
			if !ok {
				if tick == nil {
					w.logger.Debug("block feed closed, watch scheduler stopped")

					return
				}
				blocks = nil

				continue
			}
			w.tracer.UpdateLatestBlockNumber(blockNumber)
			w.logger.Debugw("new block, polling watched queries", "block number", blockNumber)
			w.pollAll(ctx)
		}
	}
}

func (w *Watcher) pollAll(ctx context.Context) {
	w.tracer.RecordPollTick()

	keys := w.cache.WatchedKeys()
	if len(keys) == 0 {
		return
	}

	wg := conc.NewWaitGroup()
	for _, key := range keys {
		wg.Go(func() { w.cache.Poll(ctx, key) })
	}
	wg.Wait()
}
