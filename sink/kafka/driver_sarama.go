package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"firehoseproc/internal/spec"
	"firehoseproc/sink"
)

type driver struct {
	cfg spec.KafkaSink
	p   sarama.SyncProducer
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(spec.KafkaSink)
	if !ok {
		return fmt.Errorf("kafka-sink: want spec.KafkaSink, got %T", c)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("kafka-sink: topic is required")
	}

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true // required by SyncProducer
	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return err
	}
	d.cfg, d.p = cfg, p
	return nil
}

// Push returns once the broker has acknowledged every record, so the
// source marks offsets only for delivered batches.
func (d *driver) Push(ctx context.Context, recs []sink.Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(recs))
	for _, r := range recs {
		msg := &sarama.ProducerMessage{
			Topic: d.cfg.Topic,
			Key:   sarama.StringEncoder(r.RecordID),
			Value: sarama.ByteEncoder(r.Data),
		}
		for k, v := range r.PartitionKeys {
			msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		}
		msgs = append(msgs, msg)
	}
	if err := d.p.SendMessages(msgs); err != nil {
		return fmt.Errorf("kafka-sink: produce to %s: %w", d.cfg.Topic, err)
	}
	return nil
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	return d.p.Close()
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
