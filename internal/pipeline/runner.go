package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
	"firehoseproc/internal/processor"
	"firehoseproc/sink"
	"firehoseproc/source/kafka"
)

// Stats counts records by result since the runner started.
type Stats struct {
	Delivered uint64
	Dropped   uint64
	Failed    uint64
}

// Runner plays the Firehose role: it feeds source batches through the
// processor and delivers the Ok records to every sink.
type Runner struct {
	source  kafka.Adapter
	proc    *processor.Processor
	sinks   []sink.Adapter
	closers []io.Closer
	log     *slog.Logger

	delivered, dropped, failed atomic.Uint64
}

func NewRunner(proc *processor.Processor) *Runner {
	return &Runner{proc: proc, log: logging.L()}
}

func (r *Runner) AddSink(s sink.Adapter)    { r.sinks = append(r.sinks, s) }
func (r *Runner) SetSource(s kafka.Adapter) { r.source = s }

// AddCloser registers a resource closed with the runner, e.g. the
// transform chain and its plugin connections.
func (r *Runner) AddCloser(c io.Closer) { r.closers = append(r.closers, c) }

func (r *Runner) Stats() Stats {
	return Stats{
		Delivered: r.delivered.Load(),
		Dropped:   r.dropped.Load(),
		Failed:    r.failed.Load(),
	}
}

// Run blocks until ctx ends or the source fails.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	err := r.source.Run(ctx, r.HandleBatch)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleBatch is the source's EmitFunc. A returned error leaves the
// batch unacknowledged.
func (r *Runner) HandleBatch(ctx context.Context, in firehose.InputBatch) error {
	out, err := r.proc.Process(ctx, in)
	if err != nil {
		r.log.Error("batch rejected", "invocation_id", in.InvocationID, "err", err)
		return err
	}

	recs := make([]sink.Record, 0, len(out.Records))
	for _, o := range out.Records {
		switch o.Result {
		case firehose.ResultOk:
			data, err := firehose.DecodeConcatenated(o.Data)
			if err != nil {
				return fmt.Errorf("runner: record %s: %w", o.RecordID, err)
			}
			rec := sink.Record{RecordID: o.RecordID, Data: data}
			if o.Metadata != nil {
				rec.PartitionKeys = o.Metadata.PartitionKeys
			}
			recs = append(recs, rec)
		case firehose.ResultDropped:
			r.dropped.Add(1)
		case firehose.ResultProcessingFailed:
			r.failed.Add(1)
			r.log.Warn("record processing failed", "record_id", o.RecordID)
		}
	}

	for _, s := range r.sinks {
		if err := s.Push(ctx, recs); err != nil {
			return err
		}
	}
	r.delivered.Add(uint64(len(recs)))
	return nil
}

func (r *Runner) Close() error {
	var merr *multierror.Error
	if r.source != nil {
		if err := r.source.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
