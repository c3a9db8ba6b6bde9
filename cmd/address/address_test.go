package address_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/cmd/address"
)

func TestAddressFromEnvKey(t *testing.T) {
	t.Setenv("TXENGINE_SIGNER_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	t.Setenv("TXENGINE_SIGNER_KEYSTORE", "")

	cmd := address.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "address: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Contains(t, out.String(), "chain:   evm")
}

func TestAddressExportRequiresSui(t *testing.T) {
	t.Setenv("TXENGINE_SIGNER_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	cmd := address.New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--export-sui"})

	assert.Error(t, cmd.Execute())
}

func TestAddressExportSui(t *testing.T) {
	t.Setenv("TXENGINE_SIGNER_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	t.Setenv("TXENGINE_SIGNER_KEYSTORE", "")

	cmd := address.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--type", "sui", "--export-sui"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "chain:   sui")
	assert.Contains(t, out.String(), "private: suiprivkey1")
}
