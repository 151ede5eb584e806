package transform

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type jsonSchemaOptions struct {
	Schema      string `koanf:"schema"`      // inline schema document
	SchemaFile  string `koanf:"schema_file"` // or a path to one
	DropInvalid bool   `koanf:"drop_invalid"`
}

type jsonSchema struct {
	schema      *gojsonschema.Schema
	dropInvalid bool
}

func newJSONSchema(spec Spec) (Transformer, error) {
	var opts jsonSchemaOptions
	if err := spec.DecodeOptions(&opts); err != nil {
		return nil, err
	}
	var loader gojsonschema.JSONLoader
	switch {
	case opts.Schema != "":
		loader = gojsonschema.NewStringLoader(opts.Schema)
	case opts.SchemaFile != "":
		abs, err := filepath.Abs(opts.SchemaFile)
		if err != nil {
			return nil, err
		}
		loader = gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs))
	default:
		return nil, errors.New("schema or schema_file is required")
	}
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return &jsonSchema{schema: schema, dropInvalid: opts.DropInvalid}, nil
}

func (j *jsonSchema) Transform(_ context.Context, payload []byte) ([]byte, error) {
	res, err := j.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, err
	}
	if res.Valid() {
		return payload, nil
	}
	if j.dropInvalid {
		return nil, ErrDrop
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return nil, fmt.Errorf("schema validation: %s", strings.Join(msgs, "; "))
}

func init() { Register("jsonschema", newJSONSchema) }
