package keystore

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
	"github.com/chapool/txengine/internal/wallet/keystore"
)

func newShow() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the metadata of a keystore file",
		Args:  cobra.ExactArgs(1),
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, args []string, cfg config.Service) error {
			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			ks, err := e.Keystores.Read(ctx, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printKeystore(w, args[0], ks)

			if !verify {
				return nil
			}

			password := cfg.Signer.Password
			if password == "" {
				if password, err = command.PromptPassword("Enter keystore password: "); err != nil {
					return err
				}
			}

			if _, err := e.Keystores.Decrypt(ctx, ks, password); err != nil {
				return err
			}

			fmt.Fprintln(w, "verified: password and address match")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "decrypt the file and check it against the stored address")

	return cmd
}

func printKeystore(w io.Writer, path string, ks *keystore.KeystoreJSON) {
	fmt.Fprintf(w, "file:    %s\n", path)
	fmt.Fprintf(w, "id:      %s\n", ks.ID)
	fmt.Fprintf(w, "kind:    %s\n", ks.Kind)
	fmt.Fprintf(w, "chain:   %s\n", ks.Chain)
	fmt.Fprintf(w, "address: %s\n", ks.Address)
}
