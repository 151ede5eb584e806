package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firehoseproc/internal/spec"
	"firehoseproc/sink"
)

func newMockDriver(t *testing.T) (*driver, *mocks.SyncProducer) {
	p := mocks.NewSyncProducer(t, nil)
	return &driver{cfg: spec.KafkaSink{Topic: "out"}, p: p}, p
}

func TestPush_ProducesKeyedMessagesWithHeaders(t *testing.T) {
	d, p := newMockDriver(t)
	p.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		k, _ := m.Key.Encode()
		if string(k) != "r1" {
			return errors.New("unexpected key " + string(k))
		}
		if len(m.Headers) != 1 || string(m.Headers[0].Key) != "tenant" || string(m.Headers[0].Value) != "acme" {
			return errors.New("missing partition header")
		}
		return nil
	})
	p.ExpectSendMessageAndSucceed()

	err := d.Push(context.Background(), []sink.Record{
		{RecordID: "r1", Data: []byte("a"), PartitionKeys: map[string]string{"tenant": "acme"}},
		{RecordID: "r2", Data: []byte("b")},
	})
	require.NoError(t, err)
	require.NoError(t, d.Close())
}

func TestPush_BrokerRejectionFailsBatch(t *testing.T) {
	d, p := newMockDriver(t)
	p.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	err := d.Push(context.Background(), []sink.Record{{RecordID: "r1", Data: []byte("a")}})
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, d.Close())
}

func TestPush_CancelledContext(t *testing.T) {
	d, _ := newMockDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Push(ctx, []sink.Record{{RecordID: "r1", Data: []byte("a")}})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, d.Close())
}

func TestConfigure_RequiresTopic(t *testing.T) {
	d := &driver{}
	assert.Error(t, d.Configure(spec.KafkaSink{Brokers: []string{"localhost:9092"}}))
	assert.Error(t, d.Configure("nope"))
	assert.NoError(t, d.Close())
}
