package keystore_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/cmd/keystore"
	"github.com/chapool/txengine/internal/wallet/address"
	walletkeystore "github.com/chapool/txengine/internal/wallet/keystore"
	"github.com/chapool/txengine/internal/wallet/seed"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func writeKeystore(t *testing.T, password string) string {
	t.Helper()

	addressService, err := address.NewService(seed.NewManager())
	require.NoError(t, err)
	svc, err := walletkeystore.NewService(addressService, walletkeystore.LightScryptParams())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	_, err = svc.Create(context.Background(), walletkeystore.CreateRequest{Path: path, Secret: testPrivateKey, Password: password})
	require.NoError(t, err)

	return path
}

func TestShow(t *testing.T) {
	path := writeKeystore(t, "hunter22")

	cmd := keystore.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"show", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "kind:    private_key")
	assert.Contains(t, out.String(), "address: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.NotContains(t, out.String(), "verified")
}

func TestShowVerify(t *testing.T) {
	path := writeKeystore(t, "hunter22")
	t.Setenv("TXENGINE_SIGNER_PASSWORD", "hunter22")

	cmd := keystore.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"show", "--verify", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "verified")

	t.Setenv("TXENGINE_SIGNER_PASSWORD", "wrong-password")

	cmd = keystore.New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "--verify", path})

	err := cmd.Execute()
	assert.ErrorIs(t, err, walletkeystore.ErrInvalidPassword)
}

func TestCreateGenerated(t *testing.T) {
	t.Setenv("TXENGINE_SIGNER_PASSWORD", "hunter22")
	t.Setenv("TXENGINE_SIGNER_LIGHT_KDF", "true")
	path := filepath.Join(t.TempDir(), "new.json")

	cmd := keystore.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"create", "--out", path, "--generate", "12", "--type", "sui"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "mnemonic: ")
	assert.Contains(t, out.String(), "kind:    mnemonic")
	assert.Contains(t, out.String(), "chain:   sui")
	assert.FileExists(t, path)
}
