package client

import (
	"context"
	"encoding/json"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/allegro/bigcache/v3"
	"github.com/cockroachdb/errors"
)

// StatusStore memoizes terminal transaction outcomes. A transaction that
// reached ACCEPTED, REVERTED or REJECTED never changes again, so its status
// can be answered without touching the node.
type StatusStore struct {
	cache  *bigcache.BigCache
	logger *junoUtils.ZapLogger
}

const statusStoreEviction = 12 * time.Hour

func NewStatusStore(logger *junoUtils.ZapLogger) (*StatusStore, error) {
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(statusStoreEviction))
	if err != nil {
		return nil, errors.Errorf("creating transaction status store: %s", err)
	}

	return &StatusStore{cache: cache, logger: logger}, nil
}

// Get returns the stored terminal status, or false when the transaction has
// not been recorded.
func (s *StatusStore) Get(txHash string) (TransactionOutcome, bool) {
	data, err := s.cache.Get(txHash)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			s.logger.Debugw("Transaction status store read failed", "hash", txHash, "error", err)
		}

		return TransactionOutcome{}, false
	}

	var outcome TransactionOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		s.logger.Debugw("Dropping corrupt transaction status entry", "hash", txHash, "error", err)

		return TransactionOutcome{}, false
	}

	return outcome, true
}

// Put records a terminal outcome. Non-terminal outcomes are ignored.
func (s *StatusStore) Put(txHash string, outcome TransactionOutcome) {
	if !outcome.Terminal() {
		return
	}
	data, err := json.Marshal(outcome)
	if err != nil {
		return
	}
	if err := s.cache.Set(txHash, data); err != nil {
		s.logger.Debugw("Transaction status store write failed", "hash", txHash, "error", err)
	}
}

func (s *StatusStore) Len() int { return s.cache.Len() }

func (s *StatusStore) Close() error { return s.cache.Close() }
