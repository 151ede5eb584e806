package kafka

import (
	"context"

	"firehoseproc/api/firehose"
)

// EmitFunc receives one Firehose-shaped batch. Offsets are marked only
// after it returns nil.
type EmitFunc func(context.Context, firehose.InputBatch) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, EmitFunc) error
	Close() error
}
