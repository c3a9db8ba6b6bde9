package keystore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
	"github.com/chapool/txengine/internal/wallet/keystore"
	"github.com/chapool/txengine/internal/wallet/seed"
)

func newCreate() *cobra.Command {
	var (
		out      string
		kind     string
		generate int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Encrypt a mnemonic or private key into a keystore file",
		Long: `Encrypt a mnemonic or private key into a keystore file.

The secret is read from the terminal without echo, or generated with --generate.
The password is read from the terminal unless TXENGINE_SIGNER_PASSWORD is set.`,
		Args: cobra.NoArgs,
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, _ []string, cfg config.Service) error {
			secret, err := readSecret(generate)
			if err != nil {
				return err
			}

			password := cfg.Signer.Password
			if password == "" {
				if password, err = command.PromptNewPassword(); err != nil {
					return err
				}
			}

			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			ks, err := e.Keystores.Create(ctx, keystore.CreateRequest{
				Path:     out,
				Secret:   secret,
				Password: password,
				Chain:    kind,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if generate > 0 {
				fmt.Fprintf(w, "mnemonic: %s\n", secret)
				fmt.Fprintln(w, "Write the mnemonic down. It is the only backup of this key.")
			}
			printKeystore(w, out, ks)

			return nil
		}),
	}

	cmd.Flags().StringVar(&out, "out", "", "keystore file to create")
	cmd.Flags().StringVar(&kind, "type", "evm", "key type the stored address is derived for: evm, sui or cosmos")
	cmd.Flags().IntVar(&generate, "generate", 0, "generate a new mnemonic of 12 or 24 words instead of prompting")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func readSecret(generate int) (string, error) {
	switch generate {
	case 0:
		secret, err := command.PromptPassword("Enter mnemonic or private key: ")
		if err != nil {
			return "", err
		}
		if secret == "" {
			return "", errors.New("empty secret")
		}
		return secret, nil
	case 12:
		return seed.NewMnemonic(128)
	case 24:
		return seed.NewMnemonic(256)
	default:
		return "", errors.Errorf("--generate must be 12 or 24, got %d", generate)
	}
}
