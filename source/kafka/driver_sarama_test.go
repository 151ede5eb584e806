package kafka

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firehoseproc/api/firehose"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, m)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func makeMsg(off int64, v string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "t", Partition: 1, Offset: off, Value: []byte(v), Timestamp: time.UnixMilli(1700000000000)}
}

func TestGroupHandler_BatchesBySizeAndMarksLast(t *testing.T) {
	var got []firehose.InputBatch
	h := &groupHandler{
		batch: BatchCfg{MaxRecords: 2, FlushInterval: time.Hour},
		emit: func(_ context.Context, b firehose.InputBatch) error {
			got = append(got, b)
			return nil
		},
	}
	sess := &fakeSession{ctx: context.Background()}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 3)}
	claim.ch <- makeMsg(10, "a")
	claim.ch <- makeMsg(11, "b")
	claim.ch <- makeMsg(12, "c")
	close(claim.ch)

	require.NoError(t, h.ConsumeClaim(sess, claim))

	require.Len(t, got, 2)
	require.Len(t, got[0].Records, 2)
	assert.Equal(t, "t-1-10", got[0].Records[0].RecordID)
	assert.Equal(t, firehose.EncodeData([]byte("b")), got[0].Records[1].Data)
	assert.Equal(t, int64(1700000000000), got[0].Records[0].ApproximateArrivalTimestamp)
	assert.NotEmpty(t, got[0].InvocationID)
	require.Len(t, got[1].Records, 1)
	assert.Equal(t, "t-1-12", got[1].Records[0].RecordID)

	require.Len(t, sess.marked, 2)
	assert.Equal(t, int64(11), sess.marked[0].Offset)
	assert.Equal(t, int64(12), sess.marked[1].Offset)
}

func TestGroupHandler_EmitErrorLeavesOffsetUnmarked(t *testing.T) {
	h := &groupHandler{
		batch: BatchCfg{MaxRecords: 1, FlushInterval: time.Hour},
		emit:  func(context.Context, firehose.InputBatch) error { return errors.New("sink down") },
	}
	sess := &fakeSession{ctx: context.Background()}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 1)}
	claim.ch <- makeMsg(1, "a")

	assert.EqualError(t, h.ConsumeClaim(sess, claim), "sink down")
	assert.Empty(t, sess.marked)
}

func TestGroupHandler_FlushesOnInterval(t *testing.T) {
	emitted := make(chan firehose.InputBatch, 1)
	h := &groupHandler{
		batch: BatchCfg{MaxRecords: 100, FlushInterval: 10 * time.Millisecond},
		emit: func(_ context.Context, b firehose.InputBatch) error {
			emitted <- b
			return nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := &fakeSession{ctx: ctx}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 1)}
	claim.ch <- makeMsg(5, "x")

	done := make(chan error, 1)
	go func() { done <- h.ConsumeClaim(sess, claim) }()

	select {
	case b := <-emitted:
		assert.Len(t, b.Records, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("batch was not flushed by the interval")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter("sarama")
	require.NoError(t, err)
	assert.IsType(t, &SaramaDriver{}, a)

	_, err = NewAdapter("kgo")
	assert.Error(t, err)
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "kafka.yml")
	require.NoError(t, os.WriteFile(p, []byte("schema_version: v1\nbrokers: [localhost:9092]\ntopics: [events]\nbatch:\n  flush_interval: 250ms\n"), 0o644))
	t.Setenv("FIREHOSE_KAFKA__GROUP_ID", "replayers")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, "replayers", cfg.GroupID)
	assert.Equal(t, 500, cfg.Batch.MaxRecords)
	assert.Equal(t, 250*time.Millisecond, cfg.Batch.FlushInterval)
	assert.Equal(t, "newest", cfg.StartFrom)
}

func TestSaramaDriver_CloseWithoutConfigure(t *testing.T) {
	d := &SaramaDriver{}
	assert.NoError(t, d.Close())

	require.Error(t, d.Configure(Config{Version: "not-a-version"}))
	assert.NoError(t, d.Close())
}
