package config

import (
	"errors"
	"fmt"

	kcfg "firehoseproc/source/kafka"
)

// Firehose never invokes a transform Lambda with more than this many records.
const maxFirehoseBatch = 10000

// LoadKafkaConfig loads the replay source config and rejects settings the
// consumer would only trip over after connecting.
func LoadKafkaConfig(path string) (kcfg.Config, error) {
	c, err := kcfg.LoadConfig(path)
	if err != nil {
		return c, err
	}
	if len(c.Brokers) == 0 {
		return c, errors.New("kafka: brokers are required")
	}
	if len(c.Topics) == 0 {
		return c, errors.New("kafka: topics are required")
	}
	switch c.StartFrom {
	case "oldest", "newest":
	default:
		return c, fmt.Errorf("kafka: start_from %q (want oldest|newest)", c.StartFrom)
	}
	if c.Batch.MaxRecords > maxFirehoseBatch {
		return c, fmt.Errorf("kafka: batch.max_records %d exceeds %d", c.Batch.MaxRecords, maxFirehoseBatch)
	}
	return c, nil
}
