// Package processor maps a Firehose input batch to its output batch: decode,
// transform, re-encode with a newline delimiter, and tag each record with
// its result.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
	"firehoseproc/internal/transform"
)

// Policy decides what a decode or transform failure does to the batch.
type Policy string

const (
	// FailFast aborts the whole batch on the first failing record.
	FailFast Policy = "fail_fast"
	// PerRecord marks the failing record ProcessingFailed and carries on.
	PerRecord Policy = "per_record"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", FailFast:
		return FailFast, nil
	case PerRecord:
		return PerRecord, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (want %s|%s)", s, FailFast, PerRecord)
}

type Observer interface {
	ObserveRecord(result firehose.Result)
	ObserveBatch(records int, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRecord(firehose.Result)          {}
func (nopObserver) ObserveBatch(int, time.Duration, error) {}

type Processor struct {
	transform transform.Transformer
	policy    Policy
	log       *slog.Logger
	obs       Observer
	keys      KeyExtractor
}

type Option func(*Processor)

func WithPolicy(p Policy) Option { return func(pr *Processor) { pr.policy = p } }

func WithLogger(l *slog.Logger) Option { return func(pr *Processor) { pr.log = l } }

func WithObserver(o Observer) Option { return func(pr *Processor) { pr.obs = o } }

func WithPartitionKeys(k KeyExtractor) Option { return func(pr *Processor) { pr.keys = k } }

// New returns a Processor applying t to every payload; nil means identity.
func New(t transform.Transformer, opts ...Option) *Processor {
	p := &Processor{
		transform: t,
		policy:    FailFast,
		log:       logging.L(),
		obs:       nopObserver{},
	}
	if p.transform == nil {
		p.transform = transform.Identity
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process transforms batch in order. Under FailFast the first failing
// record aborts the call and no partial output is returned. The transformer
// sees ctx carrying the record id (transform.RecordID).
func (p *Processor) Process(ctx context.Context, batch firehose.InputBatch) (out firehose.OutputBatch, err error) {
	start := time.Now()
	defer func() { p.obs.ObserveBatch(len(batch.Records), time.Since(start), err) }()

	suffix := firehose.EncodeData([]byte(firehose.Newline))
	out.Records = make([]firehose.OutputRecord, 0, len(batch.Records))

	for i, rec := range batch.Records {
		p.log.Info("processing record", "record_id", rec.RecordID)

		o, err := p.processRecord(ctx, i, rec, suffix)
		if err != nil {
			return firehose.OutputBatch{}, err
		}
		p.obs.ObserveRecord(o.Result)
		out.Records = append(out.Records, o)
	}

	p.log.Info("successfully processed records", "records", len(batch.Records))
	return out, nil
}

func (p *Processor) processRecord(ctx context.Context, i int, rec firehose.InputRecord, suffix string) (firehose.OutputRecord, error) {
	payload, err := firehose.DecodeData(rec.Data)
	if err != nil {
		return p.fail(rec, &DecodeError{Index: i, RecordID: rec.RecordID, Err: err})
	}

	res, err := p.transform.Transform(transform.WithRecordID(ctx, rec.RecordID), payload)
	switch {
	case errors.Is(err, transform.ErrDrop):
		p.log.Debug("record dropped", "record_id", rec.RecordID)
		return firehose.OutputRecord{RecordID: rec.RecordID, Result: firehose.ResultDropped, Data: rec.Data}, nil
	case err != nil:
		return p.fail(rec, &TransformError{Index: i, RecordID: rec.RecordID, Err: err})
	}

	o := firehose.OutputRecord{
		RecordID: rec.RecordID,
		Result:   firehose.ResultOk,
		Data:     firehose.EncodeData(res) + suffix,
	}
	if p.keys != nil {
		keys, err := p.keys.Keys(res)
		if err != nil {
			return p.fail(rec, &TransformError{Index: i, RecordID: rec.RecordID, Err: err})
		}
		o.Metadata = &firehose.OutputMetadata{PartitionKeys: keys}
	}
	return o, nil
}

// fail applies the policy. PerRecord echoes the original data so the
// failed record lands in the error output unchanged.
func (p *Processor) fail(rec firehose.InputRecord, err error) (firehose.OutputRecord, error) {
	if p.policy == FailFast {
		return firehose.OutputRecord{}, err
	}
	p.log.Warn("record processing failed", "record_id", rec.RecordID, "err", err)
	return firehose.OutputRecord{
		RecordID: rec.RecordID,
		Result:   firehose.ResultProcessingFailed,
		Data:     rec.Data,
	}, nil
}
