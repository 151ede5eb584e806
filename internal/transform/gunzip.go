package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/c2h5oh/datasize"
	"github.com/klauspost/compress/gzip"
)

type gunzipOptions struct {
	MaxSize string `koanf:"max_size"`
}

// gunzip inflates gzip payloads such as CloudWatch Logs subscription data.
type gunzip struct {
	limit int64
}

func newGunzip(spec Spec) (Transformer, error) {
	opts := gunzipOptions{MaxSize: "6MB"}
	if err := spec.DecodeOptions(&opts); err != nil {
		return nil, err
	}
	size, err := datasize.ParseString(opts.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("max_size: %w", err)
	}
	return &gunzip{limit: int64(size.Bytes())}, nil
}

func (g *gunzip) Transform(_ context.Context, payload []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, g.limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > g.limit {
		return nil, fmt.Errorf("inflated payload exceeds %d bytes", g.limit)
	}
	return out, nil
}

func init() { Register("gunzip", newGunzip) }
