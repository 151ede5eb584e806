package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPipelineSpec_ResolvesRelativePathsAndSchema(t *testing.T) {
	dir := t.TempDir()
	pipe := []byte(`schema_version: v1
source:
  kind: kafka
  driver: sarama
  config: kafka_source.yml
processor: processor.yml
sinks: [stdout, s3]
sink_configs:
  s3:
    bucket: archive
    prefix: "events/!{partitionKeyFromLambda:customer}/"
metrics_port: 9100
`)
	if err := os.WriteFile(filepath.Join(dir, "pipeline.yml"), pipe, 0o644); err != nil {
		t.Fatalf("write pipeline: %v", err)
	}

	cfg, err := LoadPipelineSpec(filepath.Join(dir, "pipeline.yml"))
	if err != nil {
		t.Fatalf("LoadPipelineSpec: %v", err)
	}
	if cfg.SchemaVersion != SupportedSchema {
		t.Fatalf("want schema %s, got %s", SupportedSchema, cfg.SchemaVersion)
	}
	if want := filepath.Join(dir, "kafka_source.yml"); cfg.Source.Config != want {
		t.Fatalf("want kafka config path %q, got %q", want, cfg.Source.Config)
	}
	if want := filepath.Join(dir, "processor.yml"); cfg.Processor != want {
		t.Fatalf("want processor config path %q, got %q", want, cfg.Processor)
	}
	if cfg.SinkConfigs.S3.Bucket != "archive" || cfg.MetricsPort != 9100 {
		t.Fatalf("unexpected sink/metrics config: %+v", cfg)
	}
}

func TestLoadPipelineSpec_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	pipe := []byte(`schema_version: v999
source: { kind: kafka, driver: sarama, config: cf.yml }
sinks: [stdout]
`)
	if err := os.WriteFile(filepath.Join(dir, "pipeline.yml"), pipe, 0o644); err != nil {
		t.Fatalf("write pipeline: %v", err)
	}
	if _, err := LoadPipelineSpec(filepath.Join(dir, "pipeline.yml")); err == nil {
		t.Fatal("expected error for invalid schema_version")
	}
}
