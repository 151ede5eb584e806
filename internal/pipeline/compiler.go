package pipeline

import (
	"fmt"

	"firehoseproc/internal/config"
	"firehoseproc/internal/processor"
	"firehoseproc/internal/spec"
	"firehoseproc/sink"
	_ "firehoseproc/sink/kafka"
	_ "firehoseproc/sink/s3"
	"firehoseproc/sink/stdout"
	"firehoseproc/source/kafka"
)

// Compile wires the source and sinks named in a replay pipeline around
// proc. Nothing is connected until the returned Runner runs.
func Compile(cfg spec.File, proc *processor.Processor) (*Runner, error) {
	r := NewRunner(proc)

	if cfg.Source.Kind != "kafka" {
		return nil, fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
	kc, err := config.LoadKafkaConfig(cfg.Source.Config)
	if err != nil {
		return nil, err
	}
	src, err := kafka.NewAdapter(cfg.Source.Driver)
	if err != nil {
		return nil, err
	}
	if err = src.Configure(kc); err != nil {
		return nil, err
	}
	r.SetSource(src)

	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			_ = r.Close()
			return nil, err
		}

		switch name {
		case "stdout":
			err = sDrv.Configure(stdout.Config{
				PrintCounter:  cfg.Debug.PrintCounter,
				PrintValue:    cfg.Debug.PrintValue,
				ValueMaxBytes: cfg.Debug.ValueMaxBytes,
			})
		case "kafka":
			err = sDrv.Configure(cfg.SinkConfigs.Kafka)
		case "s3":
			err = sDrv.Configure(cfg.SinkConfigs.S3)
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		r.AddSink(sDrv)
	}
	return r, nil
}
