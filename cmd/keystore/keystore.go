package keystore

import (
	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newCreate(),
		newShow(),
	)
}
