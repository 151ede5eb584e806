package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

type filterOptions struct {
	Patterns []string `koanf:"patterns"`
}

// filter drops every payload matching one of its glob patterns.
type filter struct {
	globs []glob.Glob
}

func newFilter(spec Spec) (Transformer, error) {
	var opts filterOptions
	if err := spec.DecodeOptions(&opts); err != nil {
		return nil, err
	}
	if len(opts.Patterns) == 0 {
		return nil, errors.New("patterns is empty")
	}
	f := &filter{}
	for _, p := range opts.Patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

func (f *filter) Transform(_ context.Context, payload []byte) ([]byte, error) {
	s := string(payload)
	for _, g := range f.globs {
		if g.Match(s) {
			return nil, ErrDrop
		}
	}
	return payload, nil
}

func init() { Register("filter", newFilter) }
