package send

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chapool/txengine/internal/engine"
	"github.com/chapool/txengine/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("send",
		newEVM(),
		newSui(),
	)
}

func printResult(out io.Writer, result *engine.SendResult) {
	fmt.Fprintf(out, "chain:  %s\n", result.Chain)
	fmt.Fprintf(out, "from:   %s\n", result.From)
	fmt.Fprintf(out, "tx:     %s\n", result.TxHash)
	fmt.Fprintf(out, "status: %s\n", result.Status)
	if result.Explorer != "" {
		fmt.Fprintf(out, "link:   %s\n", result.Explorer)
	}
}
