package balance

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
	"github.com/chapool/txengine/internal/wallet/codec"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("balance",
		newEVM(),
		newSui(),
		newToken(),
	)
}

func newEVM() *cobra.Command {
	var endpoint command.EndpointFlags

	cmd := &cobra.Command{
		Use:   "evm <address>",
		Short: "Print the native balance of an EVM account",
		Args:  cobra.ExactArgs(1),
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, args []string, cfg config.Service) error {
			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			balance, err := e.BalanceEVM(ctx, endpoint.Target(), args[0])
			if err != nil {
				return err
			}

			printBalance(cmd.OutOrStdout(), balance)
			return nil
		}),
	}

	endpoint.Register(cmd)

	return cmd
}

func newSui() *cobra.Command {
	var endpoint command.EndpointFlags

	cmd := &cobra.Command{
		Use:   "sui <address>",
		Short: "Print the SUI balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, args []string, cfg config.Service) error {
			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			balance, err := e.BalanceSui(ctx, endpoint.Target(), args[0])
			if err != nil {
				return err
			}

			printBalance(cmd.OutOrStdout(), balance)
			return nil
		}),
	}

	endpoint.Register(cmd)

	return cmd
}

func newToken() *cobra.Command {
	var endpoint command.EndpointFlags

	cmd := &cobra.Command{
		Use:   "token <token-contract> <address>",
		Short: "Print the ERC-20 balance of an account",
		Args:  cobra.ExactArgs(2),
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, args []string, cfg config.Service) error {
			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			balance, err := e.TokenBalance(ctx, endpoint.Target(), args[0], args[1])
			if err != nil {
				return err
			}

			printBalance(cmd.OutOrStdout(), balance)
			return nil
		}),
	}

	endpoint.Register(cmd)

	return cmd
}

func printBalance(out io.Writer, balance codec.Balance) {
	fmt.Fprintf(out, "%s (%s minor units, %d decimals)\n", balance.Formatted(), balance.Minor, balance.Decimals)
}
