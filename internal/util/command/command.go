package command

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/util"
)

// ConfigFlag is the persistent root flag naming an optional config file.
const ConfigFlag = "config"

// NewSubcommandGroup returns a command that only groups its subcommands and prints help when run.
func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// WithConfig configures the global logger from cfg, attaches it to ctx and runs f.
// The log file, if any, is closed once f returns. When cfg.Metrics.File is set the
// transport metrics are written there afterwards.
func WithConfig(ctx context.Context, cfg config.Service, f func(ctx context.Context, cfg config.Service) error) error {
	closer, err := util.ConfigureLogger(cfg.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to configure logger")
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close log file")
		}
	}()

	if cfg.Metrics.File != "" {
		registry := prometheus.NewRegistry()
		if err := rpc.RegisterMetrics(registry); err != nil {
			return err
		}
		defer func() {
			if err := prometheus.WriteToTextfile(cfg.Metrics.File, registry); err != nil {
				log.Warn().Err(err).Str("file", cfg.Metrics.File).Msg("Failed to write metrics")
			}
		}()
	}

	ctx = util.WithLogger(ctx, log.Logger)

	return f(ctx, cfg)
}

// RunFunc is the body of a command that needs the service config.
type RunFunc func(ctx context.Context, cmd *cobra.Command, args []string, cfg config.Service) error

// RunE loads the config file named by the --config flag, if any, and runs f through WithConfig.
func RunE(f RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var configFile string
		if flag := cmd.Flags().Lookup(ConfigFlag); flag != nil {
			configFile = flag.Value.String()
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		return WithConfig(cmd.Context(), cfg, func(ctx context.Context, cfg config.Service) error {
			return f(ctx, cmd, args, cfg)
		})
	}
}
