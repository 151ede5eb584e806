package transform

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

type RetryPolicy struct {
	Attempts  int `koanf:"attempts"`
	BackoffMS int `koanf:"backoff_ms"`
}

// Spec is one configured stage. Type selects the factory ("gunzip",
// "grpc", ...); Name labels the stage in errors and defaults to Type.
type Spec struct {
	Name        string         `koanf:"name"`
	Type        string         `koanf:"type"`
	Address     string         `koanf:"address"` // grpc only, e.g. "localhost:50051"
	TimeoutMS   int            `koanf:"timeout_ms"`
	RetryPolicy RetryPolicy    `koanf:"retry_policy"`
	Options     map[string]any `koanf:"options"`
}

// Factory builds a Transformer from its stage spec.
type Factory func(Spec) (Transformer, error)

var registry = map[string]Factory{}

// Register is called from each transformer's init().
func Register(name string, f Factory) {
	registry[name] = f
}

func New(spec Spec) (Transformer, error) {
	f, ok := registry[spec.Type]
	if !ok {
		return nil, fmt.Errorf("transform: unsupported type %q", spec.Type)
	}
	t, err := f(spec)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", spec.label(), err)
	}
	return stage{name: spec.label(), Transformer: t}, nil
}

// Build compiles specs into a Chain. No specs yields the identity.
func Build(specs []Spec) (Chain, error) {
	if len(specs) == 0 {
		return Chain{Identity}, nil
	}
	chain := make(Chain, 0, len(specs))
	for _, s := range specs {
		t, err := New(s)
		if err != nil {
			_ = chain.Close()
			return nil, err
		}
		chain = append(chain, t)
	}
	return chain, nil
}

func (s Spec) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}

// DecodeOptions fills out from the free-form options block.
func (s Spec) DecodeOptions(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "koanf",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(s.Options)
}

func init() {
	Register("identity", func(Spec) (Transformer, error) { return Identity, nil })
}
