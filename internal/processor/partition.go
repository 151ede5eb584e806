package processor

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// KeyExtractor derives Firehose dynamic partitioning keys from a
// transformed payload.
type KeyExtractor interface {
	Keys(payload []byte) (map[string]string, error)
}

// PartitionKeys maps a partition key name to a gjson path.
type PartitionKeys map[string]string

func (pk PartitionKeys) Keys(payload []byte) (map[string]string, error) {
	out := make(map[string]string, len(pk))
	for name, path := range pk {
		res := gjson.GetBytes(payload, path)
		if !res.Exists() {
			return nil, fmt.Errorf("partition key %q: path %q not found", name, path)
		}
		out[name] = res.String()
	}
	return out, nil
}
