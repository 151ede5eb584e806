// Package handler adapts the Processor to the Lambda runtime.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/c2h5oh/datasize"
	jsoniter "github.com/json-iterator/go"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
	"firehoseproc/internal/processor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrResponseTooLarge is returned instead of a response Lambda would
// reject anyway.
var ErrResponseTooLarge = errors.New("response exceeds max_response_size")

type Handler struct {
	proc  *processor.Processor
	limit datasize.ByteSize
	log   *slog.Logger
}

var _ lambda.Handler = (*Handler)(nil)

type Option func(*Handler)

// WithResponseLimit caps the marshalled response; 0 disables the check.
func WithResponseLimit(n datasize.ByteSize) Option { return func(h *Handler) { h.limit = n } }

func WithLogger(l *slog.Logger) Option { return func(h *Handler) { h.log = l } }

func New(p *processor.Processor, opts ...Option) *Handler {
	h := &Handler{proc: p, log: logging.L()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Invoke is the raw Lambda entrypoint: event JSON in, response JSON out.
func (h *Handler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	var in firehose.InputBatch
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	out, err := h.Handle(ctx, in)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	if h.limit > 0 && uint64(len(b)) > h.limit.Bytes() {
		return nil, fmt.Errorf("%w: %d > %s", ErrResponseTooLarge, len(b), h.limit)
	}
	return b, nil
}

// Handle runs one decoded batch.
func (h *Handler) Handle(ctx context.Context, in firehose.InputBatch) (firehose.OutputBatch, error) {
	log := h.log.With("invocation_id", in.InvocationID)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With("aws_request_id", lc.AwsRequestID)
	}
	log.Debug("invocation received",
		"records", len(in.Records),
		"delivery_stream", in.DeliveryStreamArn,
		"region", in.Region)

	out, err := h.proc.Process(ctx, in)
	if err != nil {
		log.Error("batch failed", "err", err)
		return firehose.OutputBatch{}, err
	}
	return out, nil
}
