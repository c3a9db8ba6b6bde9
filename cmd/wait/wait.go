package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
	"github.com/chapool/txengine/internal/wallet/confirm"
)

func New() *cobra.Command {
	var (
		endpoint command.EndpointFlags
		timeout  time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait <tx-hash>",
		Short: "Wait for the receipt of an EVM transaction",
		Args:  cobra.ExactArgs(1),
		RunE: command.RunE(func(ctx context.Context, cmd *cobra.Command, args []string, cfg config.Service) error {
			if interval > 0 {
				cfg.Confirm.Interval = interval
			}

			e, err := engine.New(cfg)
			if err != nil {
				return err
			}

			result, err := e.Wait(ctx, endpoint.Target(), args[0], timeout)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], result)
			if err != nil {
				return err
			}

			if result == confirm.Failed {
				return errors.Errorf("transaction %s reverted", args[0])
			}
			return nil
		}),
	}

	endpoint.Register(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (default from TXENGINE_CONFIRM_TIMEOUT)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from TXENGINE_CONFIRM_INTERVAL)")

	return cmd
}
