// Package s3 delivers processed batches the way a Firehose S3 destination
// does: one object per batch and resolved prefix, keyed by hour.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"

	"firehoseproc/internal/spec"
	"firehoseproc/sink"
)

var partitionExpr = regexp.MustCompile(`!\{partitionKeyFromLambda:([^}]+)\}`)

type driver struct {
	cfg      spec.S3Sink
	uploader s3manageriface.UploaderAPI
	now      func() time.Time
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(spec.S3Sink)
	if !ok {
		return fmt.Errorf("s3-sink: want spec.S3Sink, got %T", c)
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("s3-sink: bucket is required")
	}

	awsCfg := &aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return fmt.Errorf("s3-sink: %w", err)
	}
	d.cfg, d.uploader, d.now = cfg, s3manager.NewUploader(sess), time.Now
	return nil
}

func (d *driver) Push(ctx context.Context, recs []sink.Record) error {
	if len(recs) == 0 {
		return nil
	}
	var order []string
	groups := map[string]*bytes.Buffer{}
	for _, r := range recs {
		prefix, err := resolvePrefix(d.cfg.Prefix, r.PartitionKeys)
		if err != nil {
			return fmt.Errorf("s3-sink: record %s: %w", r.RecordID, err)
		}
		buf, ok := groups[prefix]
		if !ok {
			buf = &bytes.Buffer{}
			groups[prefix] = buf
			order = append(order, prefix)
		}
		buf.Write(r.Data)
	}

	hour := d.now().UTC().Format("2006/01/02/15/")
	for _, prefix := range order {
		key := prefix + hour + uuid.NewString()
		_, err := d.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(d.cfg.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(groups[prefix].Bytes()),
		})
		if err != nil {
			return fmt.Errorf("s3-sink: upload %s: %w", key, err)
		}
	}
	return nil
}

func (d *driver) Close() error { return nil }

func resolvePrefix(prefix string, keys map[string]string) (string, error) {
	var missing string
	out := partitionExpr.ReplaceAllStringFunc(prefix, func(m string) string {
		name := partitionExpr.FindStringSubmatch(m)[1]
		v, ok := keys[name]
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("partition key %q not provided", missing)
	}
	return out, nil
}

func init() { sink.Register("s3", func() sink.Adapter { return &driver{} }) }
