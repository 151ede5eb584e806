package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"firehoseproc/internal/spec"
)

const SupportedSchema = "v1"

// LoadPipelineSpec parses a replay pipeline YAML, validates schema_version,
// and rewrites the source and processor config paths relative to the
// pipeline file.
func LoadPipelineSpec(path string) (spec.File, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, fmt.Errorf("pipeline schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	cfg.Source.Config = resolve(path, cfg.Source.Config)
	cfg.Processor = resolve(path, cfg.Processor)
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(base), p)
}
