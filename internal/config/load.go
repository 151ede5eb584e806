package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"firehoseproc/internal/processor"
	"firehoseproc/internal/transform"
)

const envPrefix = "FIREHOSE_"

type LogCfg struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type MetricsCfg struct {
	Port int `koanf:"port"` // replay only; 0 disables
}

type Config struct {
	SchemaVersion   string            `koanf:"schema_version"`
	Log             LogCfg            `koanf:"log"`
	FailurePolicy   string            `koanf:"failure_policy"` // fail_fast|per_record
	MaxResponseSize string            `koanf:"max_response_size"`
	PartitionKeys   map[string]string `koanf:"partition_keys"` // name -> gjson path
	Transformers    []transform.Spec  `koanf:"transformers"`
	Metrics         MetricsCfg        `koanf:"metrics"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// Load merges YAML (if present) with env-vars
// (prefix `FIREHOSE_`, nesting delimiter `__`, e.g. FIREHOSE_LOG__LEVEL).
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider(envPrefix, "__", envKey), nil); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if _, err := cfg.Policy(); err != nil {
		return cfg, err
	}
	if _, err := cfg.ResponseLimit(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

func (c Config) Policy() (processor.Policy, error) {
	return processor.ParsePolicy(c.FailurePolicy)
}

// ResponseLimit returns the marshalled response cap; 0 disables the check.
func (c Config) ResponseLimit() (datasize.ByteSize, error) {
	if c.MaxResponseSize == "0" {
		return 0, nil
	}
	v, err := datasize.ParseString(c.MaxResponseSize)
	if err != nil {
		return 0, fmt.Errorf("max_response_size %q: %w", c.MaxResponseSize, err)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.SchemaVersion == "" {
		c.SchemaVersion = SupportedSchema
	}
	if c.FailurePolicy == "" {
		c.FailurePolicy = string(processor.FailFast)
	}
	if c.MaxResponseSize == "" {
		c.MaxResponseSize = "6MB" // Lambda synchronous response limit
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
