package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

type jsonFieldOptions struct {
	Path    string `koanf:"path"`
	Unquote bool   `koanf:"unquote"` // emit string values without quotes
}

// jsonField replaces the payload with the value found at a gjson path.
type jsonField struct {
	opts jsonFieldOptions
}

func newJSONField(spec Spec) (Transformer, error) {
	var opts jsonFieldOptions
	if err := spec.DecodeOptions(&opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New("path is required")
	}
	return &jsonField{opts: opts}, nil
}

func (j *jsonField) Transform(_ context.Context, payload []byte) ([]byte, error) {
	if !gjson.ValidBytes(payload) {
		return nil, errors.New("payload is not valid JSON")
	}
	res := gjson.GetBytes(payload, j.opts.Path)
	if !res.Exists() {
		return nil, fmt.Errorf("path %q not found", j.opts.Path)
	}
	if j.opts.Unquote && res.Type == gjson.String {
		return []byte(res.Str), nil
	}
	return []byte(res.Raw), nil
}

func init() { Register("jsonfield", newJSONField) }
