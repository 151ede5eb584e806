package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firehoseproc/internal/engine"
)

func newReplayCmd() *cobra.Command {
	var pipelineYml string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Feed Kafka batches through the processor and deliver to sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := engine.Bootstrap(ctx, engine.Config{PipelineYml: pipelineYml})
			if err != nil {
				return err
			}
			return e.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&pipelineYml, "pipeline", "pipeline.yml", "replay pipeline YAML")
	return cmd
}
