package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/cmd/address"
	"github.com/chapool/txengine/cmd/balance"
	"github.com/chapool/txengine/cmd/keystore"
	"github.com/chapool/txengine/cmd/send"
	"github.com/chapool/txengine/cmd/wait"
	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version:       config.GetFormattedBuildArgs(),
	Use:           "txengine",
	Short:         config.ModuleName,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: fmt.Sprintf(`%v

Derives keys, signs and broadcasts EVM and Sui transactions and waits for their confirmation.
Configuration is read from TXENGINE_* environment variables, an optional .env file
and an optional config file.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.PersistentFlags().String(command.ConfigFlag, "", "config file (yaml or toml)")

	// attach the subcommands
	rootCmd.AddCommand(
		address.New(),
		balance.New(),
		keystore.New(),
		send.New(),
		wait.New(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		stop()
		os.Exit(1) //nolint:gocritic // stop is called above
	}
}
