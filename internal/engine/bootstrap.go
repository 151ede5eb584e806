package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"firehoseproc/internal/config"
	"firehoseproc/internal/handler"
	"firehoseproc/internal/logging"
	"firehoseproc/internal/pipeline"
	"firehoseproc/internal/processor"
	"firehoseproc/internal/telemetry"
	"firehoseproc/internal/transform"
	_ "firehoseproc/internal/transport" // registers the "grpc" transformer
)

// Config selects the replay pipeline to run.
type Config struct {
	PipelineYml string
}

// BuildProcessor compiles the transformer chain and applies the policy
// and partition keys from cfg. The returned Closer releases plugin
// connections.
func BuildProcessor(cfg config.Config, log *slog.Logger, obs processor.Observer) (*processor.Processor, io.Closer, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}
	chain, err := transform.Build(cfg.Transformers)
	if err != nil {
		return nil, nil, err
	}

	opts := []processor.Option{processor.WithPolicy(policy), processor.WithLogger(log)}
	if obs != nil {
		opts = append(opts, processor.WithObserver(obs))
	}
	if len(cfg.PartitionKeys) > 0 {
		opts = append(opts, processor.WithPartitionKeys(processor.PartitionKeys(cfg.PartitionKeys)))
	}
	return processor.New(chain, opts...), chain, nil
}

// BuildHandler is BuildProcessor plus the response size cap.
func BuildHandler(cfg config.Config, log *slog.Logger) (*handler.Handler, io.Closer, error) {
	limit, err := cfg.ResponseLimit()
	if err != nil {
		return nil, nil, err
	}
	proc, closer, err := BuildProcessor(cfg, log, nil)
	if err != nil {
		return nil, nil, err
	}
	return handler.New(proc, handler.WithResponseLimit(limit), handler.WithLogger(log)), closer, nil
}

// Bootstrap loads the pipeline and processor config, wires metrics and
// compiles the runner. Sources connect here; nothing is consumed before Run.
func Bootstrap(_ context.Context, cfg Config) (*Engine, error) {
	ps, err := config.LoadPipelineSpec(cfg.PipelineYml)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	pc, err := config.Load(ps.Processor)
	if err != nil {
		return nil, fmt.Errorf("processor config: %w", err)
	}
	logging.Configure(logging.Options{Level: pc.Log.Level, JSON: pc.Log.JSON})

	reg := prometheus.NewRegistry()
	proc, chain, err := BuildProcessor(pc, logging.L(), telemetry.NewMetrics(reg))
	if err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}

	runner, err := pipeline.Compile(ps, proc)
	if err != nil {
		_ = chain.Close()
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	runner.AddCloser(chain)

	e := &Engine{runner: runner}
	port := ps.MetricsPort
	if port == 0 {
		port = pc.Metrics.Port
	}
	if port > 0 {
		e.metrics = telemetry.Expose(port, reg)
	}
	return e, nil
}
