package stdout

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firehoseproc/sink"
)

func TestPush_Formats(t *testing.T) {
	var out bytes.Buffer
	d := &driver{}
	require.NoError(t, d.Configure(Config{PrintCounter: true, PrintValue: true, ValueMaxBytes: 5, Out: &out}))

	err := d.Push(context.Background(), []sink.Record{
		{RecordID: "r1", Data: []byte("hello world\n")},
		{RecordID: "r2", Data: []byte("hi\n")},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"[sink 000001] r1 (12 bytes) \"hello\"…\n"+
			"[sink 000002] r2 (3 bytes) \"hi\\n\"\n",
		out.String())
}

func TestPush_Plain(t *testing.T) {
	var out bytes.Buffer
	d := &driver{}
	require.NoError(t, d.Configure(Config{Out: &out}))
	require.NoError(t, d.Push(context.Background(), []sink.Record{{RecordID: "r1", Data: []byte("x")}}))
	assert.Equal(t, "[sink] r1 (1 bytes)\n", out.String())
}

func TestConfigure_WrongType(t *testing.T) {
	assert.Error(t, (&driver{}).Configure(42))
}

func TestRegistered(t *testing.T) {
	a, err := sink.NewAdapter("stdout")
	require.NoError(t, err)
	assert.IsType(t, &driver{}, a)
}
