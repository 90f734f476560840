package client_test

import (
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/YohanTz/starknet-query/client"
	"github.com/YohanTz/starknet-query/config"
	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/mocks"
	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

func newTestClient(t *testing.T) (*client.Client, *mocks.MockReader) {
	t.Helper()

	mockCtrl := gomock.NewController(t)
	t.Cleanup(mockCtrl.Finish)
	reader := mocks.NewMockReader(mockCtrl)

	cl, err := client.New(
		reader,
		"SN_SEPOLIA",
		"http://localhost:6060",
		config.ContractAddresses{},
		junoUtils.NewNopZapLogger(),
		metrics.NewNoOpMetrics(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cl.Close()) })

	return cl, reader
}

func TestBalance(t *testing.T) {
	t.Run("Resolves the two-felt balance into a single integer", func(t *testing.T) {
		cl, reader := newTestClient(t)

		low := new(felt.Felt).SetUint64(42)
		high := new(felt.Felt)
		reader.EXPECT().
			Call(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*felt.Felt{low, high}, nil)

		address := types.MustAddressFromString("0x123")
		q, err := cl.Balance(client.BalanceArgs{Address: &address}, query.Options{})
		require.NoError(t, err)

		snap, err := q.Wait(t.Context())
		require.NoError(t, err)

		balance, err := query.DataAs[types.Balance](snap)
		require.NoError(t, err)
		require.Equal(t, "42", balance.Text(10))
	})

	t.Run("Repeated reads are served from cache", func(t *testing.T) {
		cl, reader := newTestClient(t)

		reader.EXPECT().
			Call(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*felt.Felt{new(felt.Felt).SetUint64(1), new(felt.Felt)}, nil).
			Times(1)

		address := types.MustAddressFromString("0x123")
		q, err := cl.Balance(client.BalanceArgs{Address: &address}, query.Options{})
		require.NoError(t, err)

		_, err = q.Wait(t.Context())
		require.NoError(t, err)

		for range 3 {
			snap := q.Get(t.Context())
			require.Equal(t, query.StatusSuccess, snap.Status)
		}
	})

	t.Run("A malformed token response is a network error", func(t *testing.T) {
		cl, reader := newTestClient(t)

		reader.EXPECT().
			Call(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*felt.Felt{new(felt.Felt)}, nil)

		address := types.MustAddressFromString("0x123")
		q, err := cl.Balance(client.BalanceArgs{Address: &address}, query.Options{})
		require.NoError(t, err)

		snap, err := q.Wait(t.Context())
		require.Error(t, err)
		require.True(t, errors.Is(snap.Err, query.ErrNetwork))
	})

	t.Run("Needs an address when no connector is active", func(t *testing.T) {
		cl, _ := newTestClient(t)

		_, err := cl.Balance(client.BalanceArgs{}, query.Options{})
		require.True(t, errors.Is(err, query.ErrMissingInput))
	})
}

func TestContractRead(t *testing.T) {
	t.Run("Returns the raw felts of the view call", func(t *testing.T) {
		cl, reader := newTestClient(t)

		want := []*felt.Felt{new(felt.Felt).SetUint64(7)}
		reader.EXPECT().
			Call(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(want, nil)

		q, err := cl.ContractRead(client.ReadArgs{
			Contract:   types.MustAddressFromString("0xdead"),
			EntryPoint: "get_counter",
		}, query.Options{})
		require.NoError(t, err)

		snap, err := q.Wait(t.Context())
		require.NoError(t, err)

		result, err := query.DataAs[[]*felt.Felt](snap)
		require.NoError(t, err)
		require.Equal(t, want, result)
	})

	t.Run("Fails fast without contract or entry point", func(t *testing.T) {
		cl, _ := newTestClient(t)

		_, err := cl.ContractRead(client.ReadArgs{}, query.Options{})
		require.True(t, errors.Is(err, query.ErrMissingInput))

		_, err = cl.ContractRead(client.ReadArgs{
			Contract: types.MustAddressFromString("0xdead"),
		}, query.Options{})
		require.True(t, errors.Is(err, query.ErrMissingInput))
	})
}

func TestContractWrite(t *testing.T) {
	t.Run("Fails fast without a connected account", func(t *testing.T) {
		cl, _ := newTestClient(t)

		mutation := cl.ContractWrite()
		_, err := mutation.RunAsync(t.Context(), []rpc.InvokeFunctionCall{{
			ContractAddress: new(felt.Felt).SetUint64(1),
			FunctionName:    "transfer",
		}})
		require.True(t, errors.Is(err, query.ErrMissingInput))
		require.Equal(t, query.StatusError, mutation.Snapshot().Status)
	})

	t.Run("Fails fast on an empty call list", func(t *testing.T) {
		cl, _ := newTestClient(t)

		mutation := cl.ContractWrite()
		_, err := mutation.RunAsync(t.Context(), nil)
		require.True(t, errors.Is(err, query.ErrMissingInput))
	})
}

func TestWaitForTransaction(t *testing.T) {
	txHash := types.TransactionHash(*new(felt.Felt).SetUint64(0x123))

	t.Run("Follows a transaction from unknown to accepted", func(t *testing.T) {
		cl, reader := newTestClient(t)

		gomock.InOrder(
			reader.EXPECT().
				GetTransactionStatus(gomock.Any(), gomock.Any()).
				Return(nil, errors.New("Transaction hash not found")),
			reader.EXPECT().
				GetTransactionStatus(gomock.Any(), gomock.Any()).
				Return(&rpc.TxnStatusResult{
					FinalityStatus: rpc.TxnStatus_Received,
				}, nil),
			reader.EXPECT().
				GetTransactionStatus(gomock.Any(), gomock.Any()).
				Return(&rpc.TxnStatusResult{
					FinalityStatus:  rpc.TxnStatus_Accepted_On_L2,
					ExecutionStatus: rpc.TxnExecutionStatusSUCCEEDED,
				}, nil),
		)

		outcome, err := cl.WaitForTransaction(t.Context(), txHash, time.Millisecond)
		require.NoError(t, err)
		require.True(t, outcome.Succeeded())
		require.Equal(t, rpc.TxnStatus_Accepted_On_L2, outcome.FinalityStatus)
	})

	t.Run("A reverted transaction surfaces as a rejection with its reason", func(t *testing.T) {
		cl, reader := newTestClient(t)

		reader.EXPECT().
			GetTransactionStatus(gomock.Any(), gomock.Any()).
			Return(&rpc.TxnStatusResult{
				FinalityStatus:  rpc.TxnStatus_Accepted_On_L2,
				ExecutionStatus: rpc.TxnExecutionStatusREVERTED,
				FailureReason:   "assertion failed",
			}, nil)

		outcome, err := cl.WaitForTransaction(t.Context(), txHash, time.Millisecond)
		require.True(t, errors.Is(err, query.ErrRejected))
		require.False(t, outcome.Succeeded())
		require.Equal(t, "assertion failed", outcome.FailureReason)
	})

	t.Run("A terminal outcome is memoized and never re-fetched", func(t *testing.T) {
		cl, reader := newTestClient(t)

		reader.EXPECT().
			GetTransactionStatus(gomock.Any(), gomock.Any()).
			Return(&rpc.TxnStatusResult{
				FinalityStatus:  rpc.TxnStatus_Accepted_On_L2,
				ExecutionStatus: rpc.TxnExecutionStatusSUCCEEDED,
			}, nil).
			Times(1)

		first, err := cl.WaitForTransaction(t.Context(), txHash, time.Millisecond)
		require.NoError(t, err)

		second, err := cl.WaitForTransaction(t.Context(), txHash, time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func TestTransactionStatusQuery(t *testing.T) {
	txHash := types.TransactionHash(*new(felt.Felt).SetUint64(0x456))

	t.Run("Retries while the hash is unknown under the query's policy", func(t *testing.T) {
		query.Sleep = func(time.Duration) {}
		defer func() { query.Sleep = time.Sleep }()

		cl, reader := newTestClient(t)

		gomock.InOrder(
			reader.EXPECT().
				GetTransactionStatus(gomock.Any(), gomock.Any()).
				Return(nil, errors.New("Transaction hash not found")),
			reader.EXPECT().
				GetTransactionStatus(gomock.Any(), gomock.Any()).
				Return(&rpc.TxnStatusResult{
					FinalityStatus:  rpc.TxnStatus_Accepted_On_L2,
					ExecutionStatus: rpc.TxnExecutionStatusSUCCEEDED,
				}, nil),
		)

		q, err := cl.TransactionStatus(txHash, query.Options{Retry: query.DefaultRetryPolicy()})
		require.NoError(t, err)

		snap, err := q.Wait(t.Context())
		require.NoError(t, err)

		outcome, err := query.DataAs[client.TransactionOutcome](snap)
		require.NoError(t, err)
		require.True(t, outcome.Succeeded())
	})
}

func TestNetwork(t *testing.T) {
	cl, reader := newTestClient(t)

	reader.EXPECT().ChainID(gomock.Any()).Return("SN_SEPOLIA", nil)

	q, err := cl.Network(query.Options{})
	require.NoError(t, err)

	snap, err := q.Wait(t.Context())
	require.NoError(t, err)
	require.Equal(t, query.StatusSuccess, snap.Status)
}
