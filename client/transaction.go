package client

import (
	"context"
	"strings"
	"time"

	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/cockroachdb/errors"

	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

// TransactionOutcome is the flattened status of a submitted transaction.
type TransactionOutcome struct {
	FinalityStatus  rpc.TxnStatus          `json:"finality_status"`
	ExecutionStatus rpc.TxnExecutionStatus `json:"execution_status"`
	FailureReason   string                 `json:"failure_reason,omitempty"`
}

// Terminal reports whether the status can no longer change.
func (o TransactionOutcome) Terminal() bool {
	if o.FinalityStatus == rpc.TxnStatus_Rejected {
		return true
	}
	if o.ExecutionStatus == rpc.TxnExecutionStatusREVERTED {
		return true
	}

	return o.FinalityStatus == rpc.TxnStatus_Accepted_On_L2 ||
		o.FinalityStatus == rpc.TxnStatus_Accepted_On_L1
}

// Succeeded reports whether the transaction was accepted and executed.
func (o TransactionOutcome) Succeeded() bool {
	return o.Terminal() &&
		o.FinalityStatus != rpc.TxnStatus_Rejected &&
		o.ExecutionStatus != rpc.TxnExecutionStatusREVERTED
}

const errTxnHashNotFound = "Transaction hash not found"

// fetchOutcome asks the node for a transaction status and maps it onto the
// query error taxonomy. A hash the node does not know yet and a transaction
// still in RECEIVED are both retryable, the caller's retry policy decides how
// long to keep asking.
func (c *Client) fetchOutcome(ctx context.Context, hash types.TransactionHash) (TransactionOutcome, error) {
	if cached, ok := c.statuses.Get(hash.String()); ok {
		return cached, nil
	}

	status, err := c.reader.GetTransactionStatus(ctx, hash.Felt())
	if err != nil {
		if strings.Contains(err.Error(), errTxnHashNotFound) {
			return TransactionOutcome{}, query.NotFoundf("transaction %s not found", hash.String())
		}

		return TransactionOutcome{}, query.MarkNetwork(err)
	}

	outcome := TransactionOutcome{
		FinalityStatus:  status.FinalityStatus,
		ExecutionStatus: status.ExecutionStatus,
		FailureReason:   status.FailureReason,
	}

	switch {
	case outcome.FinalityStatus == rpc.TxnStatus_Received:
		return outcome, query.NotFoundf("transaction %s still in RECEIVED", hash.String())
	case outcome.FinalityStatus == rpc.TxnStatus_Rejected:
		c.statuses.Put(hash.String(), outcome)

		return outcome, errors.Mark(
			errors.Newf("transaction %s rejected: %s", hash.String(), outcome.FailureReason),
			query.ErrRejected,
		)
	case outcome.ExecutionStatus == rpc.TxnExecutionStatusREVERTED:
		c.statuses.Put(hash.String(), outcome)

		return outcome, errors.Mark(
			errors.Newf("transaction %s reverted: %s", hash.String(), outcome.FailureReason),
			query.ErrRejected,
		)
	}

	c.statuses.Put(hash.String(), outcome)

	return outcome, nil
}

// TransactionStatus returns a query resolving to the transaction's
// TransactionOutcome. Not-yet-known hashes retry under the query's policy.
func (c *Client) TransactionStatus(hash types.TransactionHash, opts query.Options) (*query.Query, error) {
	key, err := query.NewKey("txStatus", c.chainID, "", hash.String())
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		outcome, err := c.fetchOutcome(ctx, hash)
		if err != nil {
			return nil, err
		}

		return outcome, nil
	}, opts), nil
}

// WaitForTransaction blocks until the transaction reaches a terminal state or
// the context is done. Rejected and reverted transactions surface as an
// ErrRejected-marked error alongside the outcome carrying the failure reason.
func (c *Client) WaitForTransaction(
	ctx context.Context, hash types.TransactionHash, pollInterval time.Duration,
) (TransactionOutcome, error) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	for {
		outcome, err := c.fetchOutcome(ctx, hash)
		switch {
		case err == nil:
			return outcome, nil
		case errors.Is(err, query.ErrRejected):
			return outcome, err
		case !query.Retryable(err):
			return TransactionOutcome{}, err
		}

		c.logger.Debugw("Transaction not finalized yet", "hash", hash.String(), "error", err)

		select {
		case <-ctx.Done():
			return TransactionOutcome{}, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
