package send

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
)

func newEVM() *cobra.Command {
	var (
		endpoint command.EndpointFlags
		amount   command.AmountFlags
		signer   command.SignerFlags
		to       string
		token    string
		data     string
		txType   string
		speedup  int64
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "evm",
		Short: "Sign and broadcast an EVM transaction",
		Example: `  txengine send evm --chain sepolia --to 0x7099...79C8 --amount 0.01
  txengine send evm --chain sepolia --token 0x1c7D...7238 --to 0x7099...79C8 --amount 2.5 --wait`,
		Args: cobra.NoArgs,
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, _ []string, cfg config.Service) error {
			signer.Apply(&cfg)
			if cmd.Flags().Changed("speedup") {
				cfg.EVM.Speedup = speedup
			}

			value, err := amount.Amount()
			if err != nil {
				return err
			}

			var callData []byte
			if data != "" {
				if callData, err = hexutil.Decode(data); err != nil {
					return errors.Wrap(err, "invalid --data")
				}
			}

			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			result, err := e.SendEVM(ctx, engine.EVMTransfer{
				Target: endpoint.Target(),
				To:     to,
				Amount: value,
				Token:  token,
				Data:   callData,
				TxType: txType,
				Key:    signer.Options(),
				Wait:   wait,
			}, command.PromptPassword)
			if result != nil {
				printResult(cmd.OutOrStdout(), result)
			}

			return err
		}),
	}

	endpoint.Register(cmd)
	amount.Register(cmd)
	signer.Register(cmd)
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&token, "token", "", "ERC-20 contract; sends the amount of this token to --to")
	cmd.Flags().StringVar(&data, "data", "", "0x-hex call data")
	cmd.Flags().StringVar(&txType, "tx-type", "", "legacy or eip1559 (default from chain registry or TXENGINE_EVM_TX_TYPE)")
	cmd.Flags().Int64Var(&speedup, "speedup", 0, "percent added on top of the node fee")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the receipt")
	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("token", "data")

	return cmd
}
