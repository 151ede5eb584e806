package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FIREHOSE_KAFKA__"

// BatchCfg mirrors the Firehose buffering hints that decide when a
// Lambda invocation is made.
type BatchCfg struct {
	MaxRecords    int           `koanf:"max_records"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

type Config struct {
	Brokers   []string `koanf:"brokers"`
	Topics    []string `koanf:"topics"`
	GroupID   string   `koanf:"group_id"`
	StartFrom string   `koanf:"start_from"` // oldest|newest (default newest)
	Version   string   `koanf:"version"`
	TLSEn     bool     `koanf:"tls_enabled"`
	SASLUser  string   `koanf:"sasl_user"`
	SASLPass  string   `koanf:"sasl_pass"`

	Batch BatchCfg `koanf:"batch"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `FIREHOSE_KAFKA__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider(envPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.Batch.MaxRecords <= 0 {
		c.Batch.MaxRecords = 500
	}
	if c.Batch.FlushInterval <= 0 {
		c.Batch.FlushInterval = time.Second
	}
	if c.StartFrom == "" {
		c.StartFrom = "newest"
	}
	if c.Version == "" {
		c.Version = "2.8.0"
	}
	if c.GroupID == "" {
		c.GroupID = "firehoseproc-replay"
	}
}
