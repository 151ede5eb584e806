package transform

import (
	"bytes"
	"context"
)

// Uppercase tags JSON objects with "_transformed" and upper-cases any
// other payload.
type Uppercase struct{}

func (Uppercase) Transform(_ context.Context, payload []byte) ([]byte, error) {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err == nil && obj != nil {
		obj["_transformed"] = "uppercase"
		return json.Marshal(obj)
	}
	return bytes.ToUpper(payload), nil
}

func init() {
	Register("uppercase", func(Spec) (Transformer, error) { return Uppercase{}, nil })
}
