package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
)

type SaramaDriver struct {
	cfg   Config
	cl    sarama.Client
	group sarama.ConsumerGroup
}

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "oldest":
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	if d.group, err = sarama.NewConsumerGroupFromClient(config.GroupID, d.cl); err != nil {
		_ = d.cl.Close()
		d.cl = nil
		return err
	}
	return nil
}

func (d *SaramaDriver) Run(ctx context.Context, emit EmitFunc) error {
	handler := &groupHandler{batch: d.cfg.Batch, emit: emit}

	go func() {
		for err := range d.group.Errors() {
			logging.L().Warn("sarama-driver: consumer error", "err", err)
		}
	}()

	for {
		if err := d.group.Consume(ctx, d.cfg.Topics, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close is safe on a driver whose Configure failed or never ran.
func (d *SaramaDriver) Close() error {
	if d.group != nil {
		_ = d.group.Close()
	}
	if d.cl == nil {
		return nil
	}
	return d.cl.Close()
}

type groupHandler struct {
	batch BatchCfg
	emit  EmitFunc
}

func (*groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (*groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim cuts a batch when it reaches MaxRecords or when
// FlushInterval elapses, whichever comes first.
func (h *groupHandler) ConsumeClaim(
	sess sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	pending := make([]*sarama.ConsumerMessage, 0, h.batch.MaxRecords)
	tick := time.NewTicker(h.batch.FlushInterval)
	defer tick.Stop()

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := h.emit(sess.Context(), toInputBatch(pending)); err != nil {
			return err
		}
		sess.MarkMessage(pending[len(pending)-1], "")
		pending = pending[:0]
		return nil
	}

	for {
		select {
		case <-sess.Context().Done():
			return nil

		case <-tick.C:
			if err := flush(); err != nil {
				return err
			}

		case msg, ok := <-claim.Messages():
			if !ok {
				return flush()
			}
			pending = append(pending, msg)
			if len(pending) >= h.batch.MaxRecords {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// RecordID is stable across replays of the same offset.
func RecordID(msg *sarama.ConsumerMessage) string {
	return fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
}

func toInputBatch(msgs []*sarama.ConsumerMessage) firehose.InputBatch {
	in := firehose.InputBatch{
		InvocationID: uuid.NewString(),
		Records:      make([]firehose.InputRecord, 0, len(msgs)),
	}
	for _, m := range msgs {
		in.Records = append(in.Records, firehose.InputRecord{
			RecordID:                    RecordID(m),
			ApproximateArrivalTimestamp: m.Timestamp.UnixMilli(),
			Data:                        firehose.EncodeData(m.Value),
		})
	}
	return in
}
