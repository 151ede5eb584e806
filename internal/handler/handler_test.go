package handler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
	"firehoseproc/internal/processor"
	"firehoseproc/internal/transform"
)

const helloEvent = `{
  "invocationId": "invocationIdExample",
  "deliveryStreamArn": "arn:aws:kinesis:EXAMPLE",
  "region": "us-east-1",
  "records": [
    {
      "recordId": "49546986683135544286507457936321625675700192471156785154",
      "approximateArrivalTimestamp": 1495072949453,
      "data": "SGVsbG8gV29ybGQ="
    }
  ]
}`

func newHandler(t transform.Transformer, opts ...Option) *Handler {
	p := processor.New(t, processor.WithLogger(logging.Discard()))
	return New(p, append([]Option{WithLogger(logging.Discard())}, opts...)...)
}

func TestInvoke_HelloWorld(t *testing.T) {
	out, err := newHandler(nil).Invoke(context.Background(), []byte(helloEvent))
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[{
		"recordId":"49546986683135544286507457936321625675700192471156785154",
		"result":"Ok",
		"data":"SGVsbG8gV29ybGQ=Cg=="}]}`, string(out))
}

func TestInvoke_EmptyBatch(t *testing.T) {
	out, err := newHandler(nil).Invoke(context.Background(), []byte(`{"records":[]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[]}`, string(out))
}

func TestInvoke_MalformedEvent(t *testing.T) {
	_, err := newHandler(nil).Invoke(context.Background(), []byte(`{"records":`))
	assert.ErrorContains(t, err, "decode event")
}

func TestInvoke_FailFastReturnsError(t *testing.T) {
	_, err := newHandler(nil).Invoke(context.Background(), []byte(`{"records":[{"recordId":"r1","data":"***"}]}`))
	var de *processor.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "r1", de.RecordID)
}

func TestInvoke_ResponseLimit(t *testing.T) {
	_, err := newHandler(nil, WithResponseLimit(64*datasize.B)).Invoke(context.Background(), []byte(helloEvent))
	assert.True(t, errors.Is(err, ErrResponseTooLarge), err)

	_, err = newHandler(nil, WithResponseLimit(6*datasize.MB)).Invoke(context.Background(), []byte(helloEvent))
	assert.NoError(t, err)
}

func TestHandle_LogsRequestAndInvocationIDs(t *testing.T) {
	var buf bytes.Buffer
	p := processor.New(nil, processor.WithLogger(logging.Discard()))
	h := New(p, WithLogger(logging.New(&buf, logging.Options{Level: "debug"})))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-42"})
	_, err := h.Handle(ctx, firehose.InputBatch{InvocationID: "inv-1", Records: []firehose.InputRecord{}})
	require.NoError(t, err)

	line := buf.String()
	assert.True(t, strings.Contains(line, "aws_request_id=req-42"), line)
	assert.True(t, strings.Contains(line, "invocation_id=inv-1"), line)
}
