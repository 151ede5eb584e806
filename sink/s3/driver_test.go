package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firehoseproc/internal/spec"
	"firehoseproc/sink"
)

type upload struct {
	bucket, key, body string
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	got []upload
	err error
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.got = append(f.got, upload{aws.StringValue(in.Bucket), aws.StringValue(in.Key), string(b)})
	return &s3manager.UploadOutput{}, nil
}

func newDriver(prefix string, up *fakeUploader) *driver {
	return &driver{
		cfg:      spec.S3Sink{Bucket: "lake", Prefix: prefix},
		uploader: up,
		now:      func() time.Time { return time.Date(2024, 3, 9, 17, 4, 0, 0, time.UTC) },
	}
}

func TestPush_GroupsByPartitionPrefix(t *testing.T) {
	up := &fakeUploader{}
	d := newDriver("events/tenant=!{partitionKeyFromLambda:tenant}/", up)

	err := d.Push(context.Background(), []sink.Record{
		{RecordID: "1", Data: []byte("a\n"), PartitionKeys: map[string]string{"tenant": "acme"}},
		{RecordID: "2", Data: []byte("b\n"), PartitionKeys: map[string]string{"tenant": "globex"}},
		{RecordID: "3", Data: []byte("c\n"), PartitionKeys: map[string]string{"tenant": "acme"}},
	})
	require.NoError(t, err)

	require.Len(t, up.got, 2)
	assert.Equal(t, "lake", up.got[0].bucket)
	assert.True(t, strings.HasPrefix(up.got[0].key, "events/tenant=acme/2024/03/09/17/"), up.got[0].key)
	assert.Equal(t, "a\nc\n", up.got[0].body)
	assert.True(t, strings.HasPrefix(up.got[1].key, "events/tenant=globex/2024/03/09/17/"), up.got[1].key)
	assert.Equal(t, "b\n", up.got[1].body)
}

func TestPush_StaticPrefix(t *testing.T) {
	up := &fakeUploader{}
	d := newDriver("raw/", up)

	require.NoError(t, d.Push(context.Background(), []sink.Record{{RecordID: "1", Data: []byte("x")}}))
	require.Len(t, up.got, 1)
	assert.Len(t, up.got[0].key, len("raw/2024/03/09/17/")+36)
}

func TestPush_MissingPartitionKey(t *testing.T) {
	up := &fakeUploader{}
	d := newDriver("!{partitionKeyFromLambda:tenant}/", up)

	err := d.Push(context.Background(), []sink.Record{{RecordID: "r9", Data: []byte("x")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `partition key "tenant"`)
	assert.Empty(t, up.got)
}

func TestPush_UploadError(t *testing.T) {
	d := newDriver("", &fakeUploader{err: errors.New("denied")})
	err := d.Push(context.Background(), []sink.Record{{RecordID: "1", Data: []byte("x")}})
	assert.ErrorContains(t, err, "denied")
}

func TestPush_EmptyBatchIsNoop(t *testing.T) {
	up := &fakeUploader{}
	require.NoError(t, newDriver("", up).Push(context.Background(), nil))
	assert.Empty(t, up.got)
}

func TestConfigure_RequiresBucket(t *testing.T) {
	d := &driver{}
	assert.Error(t, d.Configure(spec.S3Sink{}))
	assert.Error(t, d.Configure("nope"))
}
