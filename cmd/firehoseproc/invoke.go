package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/config"
	"firehoseproc/internal/engine"
	"firehoseproc/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type invokeOpts struct {
	config   string
	event    string
	generate int
}

func newInvokeCmd() *cobra.Command {
	var o invokeOpts
	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run the Lambda handler once on a Firehose event",
		Long: "Reads a Firehose transformation event from --event (or stdin when\n" +
			"it is \"-\" or empty), runs the handler, and prints the response.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInvoke(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&o.config, "config", os.Getenv("FIREHOSE_CONFIG"), "processor config YAML")
	cmd.Flags().StringVar(&o.event, "event", "", "event JSON file, - for stdin")
	cmd.Flags().IntVar(&o.generate, "generate", 0, "ignore --event and build a synthetic event with N records")
	return cmd
}

func runInvoke(ctx context.Context, o invokeOpts, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	h, closer, err := engine.BuildHandler(cfg, logging.L())
	if err != nil {
		return err
	}
	defer closer.Close()

	var payload []byte
	switch {
	case o.generate > 0:
		payload, err = json.Marshal(syntheticEvent(o.generate))
	case o.event == "" || o.event == "-":
		payload, err = io.ReadAll(stdin)
	default:
		payload, err = os.ReadFile(o.event)
	}
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}

	out, err := h.Invoke(ctx, payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}

func syntheticEvent(n int) firehose.InputBatch {
	in := firehose.InputBatch{
		InvocationID: uuid.NewString(),
		Region:       "us-east-1",
		Records:      make([]firehose.InputRecord, 0, n),
	}
	for i := 0; i < n; i++ {
		in.Records = append(in.Records, firehose.InputRecord{
			RecordID: uuid.NewString(),
			Data:     firehose.EncodeData([]byte(fmt.Sprintf(`{"seq":%d,"msg":"Hello World"}`, i))),
		})
	}
	return in
}
