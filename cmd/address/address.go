package address

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
	"github.com/chapool/txengine/internal/wallet/address"
)

func New() *cobra.Command {
	var (
		signer    command.SignerFlags
		kind      string
		exportSui bool
	)

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of the configured signing key",
		Long: `Print the address of the configured signing key.

The key is a 64-hex-char private key, a 12/24-word mnemonic or a suiprivkey1... string,
read from --keystore or TXENGINE_SIGNER_KEY.`,
		Args: cobra.NoArgs,
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, _ []string, cfg config.Service) error {
			signer.Apply(&cfg)

			chain := address.Chain(kind)
			if exportSui && chain != address.ChainSui {
				return errors.New("--export-sui requires --type sui")
			}

			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			km, err := e.KeyMaterial(ctx, chain, signer.Options(), command.PromptPassword)
			if err != nil {
				return err
			}
			defer km.Clear()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chain:   %s\n", km.Chain)
			fmt.Fprintf(out, "address: %s\n", km.Address)
			if km.DerivationPath != "" {
				fmt.Fprintf(out, "path:    %s\n", km.DerivationPath)
			}

			if exportSui {
				exported, err := address.ExportSuiPrivateKey(km.PrivateKey)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "private: %s\n", exported)
			}

			return nil
		}),
	}

	signer.Register(cmd)
	cmd.Flags().StringVar(&kind, "type", string(address.ChainEVM), "key type: evm, sui or cosmos")
	cmd.Flags().BoolVar(&exportSui, "export-sui", false, "also print the key as a suiprivkey1... string")

	return cmd
}
