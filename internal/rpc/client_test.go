package rpc_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/test"
)

func newClient(t *testing.T, server *test.RPCServer, opts ...rpc.Option) *rpc.Client {
	t.Helper()

	endpoint, err := rpc.NewEndpoint(server.URL, "")
	require.NoError(t, err)

	client := rpc.NewClient(endpoint, opts...)
	t.Cleanup(client.Close)
	return client
}

func TestCallDecodesResults(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_chainId":      test.Result("0xaa36a7"),
		"eth_gasPrice":     test.Result("0xf4240"),
		"suix_getBalance":  test.Result(map[string]string{"totalBalance": "1500000000"}),
		"net_version":      test.Result("11155111"),
		"eth_blockNumber":  test.Result(12345),
		"eth_getReceipt":   test.Result(nil),
		"eth_hugeQuantity": test.Result("0xffffffffffffffffff"),
	})
	client := newClient(t, server)
	ctx := context.Background()

	chainID, err := rpc.CallUint64(ctx, client, "eth_chainId")
	require.NoError(t, err)
	assert.Equal(t, uint64(11155111), chainID)

	gasPrice, err := rpc.CallBigInt(ctx, client, "eth_gasPrice")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), gasPrice)

	blockNumber, err := rpc.CallBigInt(ctx, client, "eth_blockNumber")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(12345), blockNumber)

	version, err := rpc.CallString(ctx, client, "net_version")
	require.NoError(t, err)
	assert.Equal(t, "11155111", version)

	var balance struct {
		TotalBalance string `json:"totalBalance"`
	}
	found, err := rpc.CallInto(ctx, client, &balance, "suix_getBalance", "0x1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1500000000", balance.TotalBalance)

	raw, err := client.Call(ctx, "eth_getReceipt", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	found, err = rpc.CallInto(ctx, client, &balance, "eth_getReceipt", "0xabc")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = rpc.CallUint64(ctx, client, "eth_hugeQuantity")
	assert.Error(t, err)
}

func TestCallSendsJSONRPCEnvelope(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getTransactionCount": test.Result("0x7"),
	})
	client := newClient(t, server, rpc.WithUserAgent("txengine-test"))

	nonce, err := rpc.CallUint64(context.Background(), client, "eth_getTransactionCount", "0x0000000000000000000000000000000000000001", "pending")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	calls := server.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "eth_getTransactionCount", calls[0].Method)

	var tag string
	calls[0].Param(t, 1, &tag)
	assert.Equal(t, "pending", tag)
}

func TestCallWithoutParamsSendsEmptyArray(t *testing.T) {
	var params []json.RawMessage
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_chainId": func(call test.RPCCall) (any, error) {
			params = call.Params
			return "0x1", nil
		},
	})

	_, err := newClient(t, server).Call(context.Background(), "eth_chainId")
	require.NoError(t, err)
	assert.NotNil(t, params)
	assert.Empty(t, params)
}

func TestRequestIDsPerClient(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_chainId": test.Result("0x1"),
	})

	first := newClient(t, server)
	second := newClient(t, server)
	ctx := context.Background()

	for range 3 {
		_, err := first.Call(ctx, "eth_chainId")
		require.NoError(t, err)
	}
	_, err := second.Call(ctx, "eth_chainId")
	require.NoError(t, err)

	ids := make([]uint64, 0, 4)
	for _, call := range server.Calls() {
		id, err := strconv.ParseUint(string(call.ID), 10, 64)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.Equal(t, []uint64{1, 2, 3, 1}, ids)
}

func TestRPCErrorAndTransportErrorAreDistinct(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_sendRawTransaction": test.Fail(-32000, "nonce too low"),
		"eth_broken":             test.Raw(http.StatusBadGateway, "<html>bad gateway</html>"),
		"eth_empty":              test.Raw(http.StatusOK, ""),
		"eth_missingResult":      test.Raw(http.StatusOK, `{"jsonrpc":"2.0","id":1}`),
		"eth_rejected":           test.Raw(http.StatusBadRequest, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`),
	})
	client := newClient(t, server)
	ctx := context.Background()

	_, err := client.Call(ctx, "eth_sendRawTransaction", "0x00")
	var rpcErr *rpc.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "nonce too low", rpcErr.Message)
	assert.False(t, rpc.IsTransport(err))

	_, err = client.Call(ctx, "eth_broken")
	var transportErr *rpc.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.False(t, errors.As(err, &rpcErr))

	_, err = client.Call(ctx, "eth_empty")
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, rpc.ErrEmptyBody))

	_, err = client.Call(ctx, "eth_missingResult")
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, rpc.NoResultMessage, rpcErr.Message)
	assert.Equal(t, 0, rpcErr.Code)

	_, err = client.Call(ctx, "eth_rejected")
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)

	_, err = client.Call(ctx, "eth_unknown")
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestUnreachableEndpointIsTransportError(t *testing.T) {
	server := test.NewRPCServer(t, nil)
	endpoint, err := rpc.NewEndpoint(server.URL, "")
	require.NoError(t, err)
	server.Close()

	client := rpc.NewClient(endpoint, rpc.WithTimeout(time.Second))
	_, err = client.Call(context.Background(), "eth_chainId")
	assert.True(t, rpc.IsTransport(err))
}

func TestTraceRecordsExchanges(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_chainId":            test.Result("0x1"),
		"eth_sendRawTransaction": test.Fail(-32000, "already known"),
	})
	client := newClient(t, server)

	trace := rpc.NewTrace()
	ctx := rpc.WithTrace(context.Background(), trace)
	assert.Same(t, trace, rpc.TraceFromContext(ctx))

	_, err := client.Call(ctx, "eth_chainId")
	require.NoError(t, err)
	_, err = client.Call(ctx, "eth_sendRawTransaction", "0x01")
	require.Error(t, err)

	entries := trace.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "eth_chainId", entries[0].Method)
	assert.Contains(t, entries[0].Response, `"0x1"`)
	assert.Empty(t, entries[0].Err)
	assert.Contains(t, entries[1].Request, `"0x01"`)
	assert.Contains(t, entries[1].Err, "already known")
	assert.Contains(t, trace.String(), "eth_sendRawTransaction")

	assert.Nil(t, rpc.TraceFromContext(context.Background()))
}

func TestRateLimitHonoursContext(t *testing.T) {
	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_chainId": test.Result("0x1"),
	})
	client := newClient(t, server, rpc.WithRateLimit(0.001, 1))

	_, err := client.Call(context.Background(), "eth_chainId")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Call(ctx, "eth_chainId")
	assert.True(t, rpc.IsTransport(err))
	assert.Len(t, server.Calls(), 1)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, rpc.RegisterMetrics(reg))
	require.NoError(t, rpc.RegisterMetrics(reg))

	server := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_chainId": test.Result("0x1"),
	})
	_, err := newClient(t, server).Call(context.Background(), "eth_chainId")
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "txengine_rpc_calls_total")
	assert.Contains(t, names, "txengine_rpc_call_duration_seconds")
}
