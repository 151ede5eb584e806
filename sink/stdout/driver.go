package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"firehoseproc/sink"
)

/* ────────── public config ────────── */
type Config struct {
	PrintCounter  bool      // prepend seq#
	PrintValue    bool      // print the payload itself
	ValueMaxBytes int       // 0 = no truncation
	Out           io.Writer // nil → os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config

	mu  sync.Mutex // guards seq and writes
	seq uint64
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(_ context.Context, recs []sink.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range recs {
		d.seq++
		line := fmt.Sprintf("[sink] %s (%d bytes)", r.RecordID, len(r.Data))
		if d.cfg.PrintCounter {
			line = fmt.Sprintf("[sink %06d] %s (%d bytes)", d.seq, r.RecordID, len(r.Data))
		}
		if d.cfg.PrintValue {
			line += " " + preview(r.Data, d.cfg.ValueMaxBytes)
		}
		if _, err := fmt.Fprintln(d.cfg.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func (d *driver) Close() error { return nil }

func preview(b []byte, max int) string {
	if max > 0 && len(b) > max {
		return fmt.Sprintf("%q…", b[:max])
	}
	return fmt.Sprintf("%q", b)
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
