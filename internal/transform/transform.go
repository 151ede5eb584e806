package transform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDrop tells the processor to report the record as Dropped.
var ErrDrop = errors.New("transform: drop record")

type Transformer interface {
	Transform(ctx context.Context, payload []byte) ([]byte, error)
}

type Func func(ctx context.Context, payload []byte) ([]byte, error)

func (f Func) Transform(ctx context.Context, payload []byte) ([]byte, error) {
	return f(ctx, payload)
}

type recordIDKey struct{}

// WithRecordID attaches the Firehose recordId of the record being
// transformed. Remote stages forward it to the plugin.
func WithRecordID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, recordIDKey{}, id)
}

// RecordID returns the id set by WithRecordID, or "".
func RecordID(ctx context.Context) string {
	id, _ := ctx.Value(recordIDKey{}).(string)
	return id
}

var Identity Transformer = Func(func(_ context.Context, payload []byte) ([]byte, error) {
	return payload, nil
})

// Chain runs its stages in order and stops at the first error.
type Chain []Transformer

func (c Chain) Transform(ctx context.Context, payload []byte) ([]byte, error) {
	for _, t := range c {
		out, err := t.Transform(ctx, payload)
		if err != nil {
			return nil, err
		}
		payload = out
	}
	return payload, nil
}

func (c Chain) Close() error {
	var merr *multierror.Error
	for _, t := range c {
		if cl, ok := t.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				merr = multierror.Append(merr, err)
			}
		}
	}
	return merr.ErrorOrNil()
}

type stage struct {
	name string
	Transformer
}

func (s stage) Transform(ctx context.Context, payload []byte) ([]byte, error) {
	out, err := s.Transformer.Transform(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return out, nil
}

func (s stage) Close() error {
	if cl, ok := s.Transformer.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
