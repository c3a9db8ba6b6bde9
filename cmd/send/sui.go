package send

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
)

func newSui() *cobra.Command {
	var (
		endpoint  command.EndpointFlags
		amount    command.AmountFlags
		signer    command.SignerFlags
		to        string
		gasBudget uint64
	)

	cmd := &cobra.Command{
		Use:     "sui",
		Short:   "Transfer SUI",
		Example: `  txengine send sui --chain sui-testnet --to 0x2 --amount 0.5`,
		Args:    cobra.NoArgs,
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, _ []string, cfg config.Service) error {
			signer.Apply(&cfg)
			if gasBudget > 0 {
				cfg.Sui.GasBudget = gasBudget
			}

			value, err := amount.Amount()
			if err != nil {
				return err
			}
			if !value.IsSet() {
				return errors.New("one of --amount or --minor is required")
			}

			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			result, err := e.SendSui(ctx, engine.SuiTransfer{
				Target: endpoint.Target(),
				To:     to,
				Amount: value,
				Key:    signer.Options(),
			}, command.PromptPassword)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		}),
	}

	endpoint.Register(cmd)
	amount.Register(cmd)
	signer.Register(cmd)
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().Uint64Var(&gasBudget, "gas-budget", 0, "gas budget in mist (default from TXENGINE_SUI_GAS_BUDGET)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
