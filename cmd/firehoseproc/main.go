package main

import (
	"os"

	"github.com/spf13/cobra"

	"firehoseproc/internal/logging"
)

func main() {
	logging.InitFromEnv()

	root := &cobra.Command{
		Use:           "firehoseproc",
		Short:         "Run the Firehose record transform locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInvokeCmd(), newReplayCmd())

	if err := root.Execute(); err != nil {
		logging.L().Error("firehoseproc failed", "err", err)
		os.Exit(1)
	}
}
