package sink

import (
	"context"
	"fmt"
)

// Record is a processed record with result Ok, already decoded back to
// the bytes Firehose would deliver (payload plus newline).
type Record struct {
	RecordID      string
	Data          []byte
	PartitionKeys map[string]string
}

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error                  // driver-specific YAML ⇒ struct
	Push(context.Context, []Record) error // deliver one processed batch
	Close() error                         // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
