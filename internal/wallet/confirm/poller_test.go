package confirm_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/test"
	"github.com/chapool/txengine/internal/wallet/confirm"
)

const testTxHash = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"

func newPoller(t *testing.T, server *test.RPCServer) *confirm.Poller {
	t.Helper()

	endpoint, err := rpc.NewEndpoint(server.URL, "")
	require.NoError(t, err)

	poller := confirm.NewPoller(rpc.NewClient(endpoint))
	poller.Interval = 10 * time.Millisecond
	return poller
}

func TestWaitTxSuccess(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": test.Result(map[string]string{"status": "0x1", "blockNumber": "0x10"}),
	})

	ok, err := newPoller(t, server).WaitTx(context.Background(), testTxHash, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	var hash string
	server.Calls()[0].Param(t, 0, &hash)
	assert.Equal(t, testTxHash, hash)
}

func TestWaitTxSuccessStatusEncodings(t *testing.T) {
	for _, status := range []string{"0x1", "0x01", "0x0001", "1"} {
		server := test.NewRPCServer(t, map[string]test.RPCHandler{
			"eth_getTransactionReceipt": test.Result(map[string]string{"status": status}),
		})

		result, err := newPoller(t, server).Wait(context.Background(), testTxHash, time.Second)
		require.NoError(t, err, status)
		assert.Equal(t, confirm.Success, result, status)
	}
}

func TestWaitTxMalformedStatus(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": test.Result(map[string]string{"status": "0xzz"}),
	})

	result, err := newPoller(t, server).Wait(context.Background(), testTxHash, 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid receipt status")
	assert.Equal(t, confirm.Pending, result)
	assert.Len(t, server.Calls(), 1)
}

func TestWaitTxFailedStatus(t *testing.T) {
	for _, status := range []string{"0x0", "0x2", ""} {
		server := test.NewRPCServer(t, map[string]test.RPCHandler{
			"eth_getTransactionReceipt": test.Result(map[string]string{"status": status}),
		})

		result, err := newPoller(t, server).Wait(context.Background(), testTxHash, time.Second)
		require.NoError(t, err, status)
		assert.Equal(t, confirm.Failed, result, status)

		ok, err := newPoller(t, server).WaitTx(context.Background(), testTxHash, time.Second)
		require.NoError(t, err, status)
		assert.False(t, ok, status)
	}
}

func TestWaitTxPendingThenMined(t *testing.T) {
	var polls atomic.Int32
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": func(test.RPCCall) (any, error) {
			if polls.Add(1) < 3 {
				return nil, nil
			}
			return map[string]string{"status": "0x1"}, nil
		},
		"eth_getTransactionByHash": test.Result(map[string]string{"hash": testTxHash}),
	})

	ok, err := newPoller(t, server).WaitTx(context.Background(), testTxHash, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(3), polls.Load())
	assert.Len(t, server.CallsTo("eth_getTransactionByHash"), 2)
}

func TestWaitTxTimeout(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": test.Result(nil),
		"eth_getTransactionByHash":  test.Result(nil),
	})

	started := time.Now()
	result, err := newPoller(t, server).Wait(context.Background(), testTxHash, 60*time.Millisecond)
	require.Error(t, err)

	var timeoutErr *confirm.TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, testTxHash, timeoutErr.TxHash)
	assert.Equal(t, confirm.TimedOut, result)
	assert.GreaterOrEqual(t, time.Since(started), 60*time.Millisecond)
	assert.Greater(t, len(server.CallsTo("eth_getTransactionReceipt")), 1)
}

func TestWaitTxRetriesTransportErrors(t *testing.T) {
	var polls atomic.Int32
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": func(test.RPCCall) (any, error) {
			if polls.Add(1) <= 2 {
				return nil, &test.RawResponse{Status: http.StatusBadGateway, Body: "upstream unavailable"}
			}
			return map[string]string{"status": "0x1"}, nil
		},
	})

	ok, err := newPoller(t, server).WaitTx(context.Background(), testTxHash, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(3), polls.Load())
}

func TestWaitTxTimeoutKeepsLastTransportError(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": test.Raw(http.StatusServiceUnavailable, "down"),
	})

	_, err := newPoller(t, server).WaitTx(context.Background(), testTxHash, 40*time.Millisecond)

	var timeoutErr *confirm.TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.True(t, rpc.IsTransport(timeoutErr.LastErr))
}

func TestWaitTxReturnsNodeErrors(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": test.Fail(-32602, "invalid argument 0: hex string has length 3"),
	})

	_, err := newPoller(t, server).WaitTx(context.Background(), "0x1", 5*time.Second)

	var rpcErr *rpc.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Len(t, server.Calls(), 1)
}

func TestWaitTxParentCancellation(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionReceipt": test.Result(nil),
		"eth_getTransactionByHash":  test.Result(nil),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newPoller(t, server).WaitTx(ctx, testTxHash, 5*time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var timeoutErr *confirm.TimeoutError
	assert.False(t, errors.As(err, &timeoutErr))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "success", confirm.Success.String())
	assert.Equal(t, "failed", confirm.Failed.String())
	assert.Equal(t, "pending", confirm.Pending.String())
	assert.Equal(t, "timed_out", confirm.TimedOut.String())
}
