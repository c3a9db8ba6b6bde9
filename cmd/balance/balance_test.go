package balance_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/cmd/balance"
	"github.com/chapool/txengine/internal/test"
)

func TestBalanceEVM(t *testing.T) {
	node := test.NewRPCServer(t, map[string]test.RPCHandler{
		"eth_getBalance": test.Result("0x1bc16d674ec80000"),
	})

	cmd := balance.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"evm", "--rpc", node.URL, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "2 (2000000000000000000 minor units, 18 decimals)\n", out.String())
}

func TestBalanceRequiresEndpoint(t *testing.T) {
	cmd := balance.New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"sui", "0x2"})

	assert.Error(t, cmd.Execute())
}
