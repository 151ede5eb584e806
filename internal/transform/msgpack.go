package transform

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v4"
)

// msgpackToJSON re-encodes a msgpack document as JSON.
func msgpackToJSON(_ context.Context, payload []byte) ([]byte, error) {
	var v any
	if err := msgpack.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return json.Marshal(stringKeys(v))
}

// stringKeys rewrites non-string map keys, which JSON cannot carry.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case map[string]any:
		for k, e := range x {
			x[k] = stringKeys(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = stringKeys(e)
		}
		return x
	default:
		return v
	}
}

func init() {
	Register("msgpack", func(Spec) (Transformer, error) { return Func(msgpackToJSON), nil })
}
