package spec

// KafkaSink configures the sarama producer sink.
type KafkaSink struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
}

// S3Sink mirrors a Firehose S3 destination. Prefix may reference
// !{partitionKeyFromLambda:name}.
type S3Sink struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // e.g. a localstack URL
}

type sinkConfigs struct {
	Kafka KafkaSink `yaml:"kafka"`
	S3    S3Sink    `yaml:"s3"`
}

type debugSection struct {
	PrintCounter  bool `yaml:"print_counter"`
	PrintValue    bool `yaml:"print_value"`
	ValueMaxBytes int  `yaml:"value_max_bytes"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	// Processor points at the same config file the Lambda loads.
	Processor string `yaml:"processor"`

	Sinks       []string     `yaml:"sinks"`
	SinkConfigs sinkConfigs  `yaml:"sink_configs"`
	Debug       debugSection `yaml:"debug"`
	MetricsPort int          `yaml:"metrics_port"`
}
