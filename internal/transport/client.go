package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/transform"
)

// Client is a transform.Transformer backed by a remote plugin.
type Client struct {
	cc      *grpc.ClientConn
	health  healthpb.HealthClient
	timeout time.Duration
	retry   transform.RetryPolicy
}

func Dial(spec transform.Spec, opts ...grpc.DialOption) (*Client, error) {
	if spec.Address == "" {
		return nil, errors.New("address is required")
	}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	cc, err := grpc.NewClient(spec.Address, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		cc:      cc,
		health:  healthpb.NewHealthClient(cc),
		timeout: time.Duration(spec.TimeoutMS) * time.Millisecond,
		retry:   spec.RetryPolicy,
	}, nil
}

func (c *Client) Transform(ctx context.Context, payload []byte) ([]byte, error) {
	req := &TransformRequest{RecordID: transform.RecordID(ctx), Payload: payload}
	var resp *TransformResponse
	err := backoff.Retry(func() error {
		r, err := c.call(ctx, req)
		if err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}, c.backoff(ctx))
	if err != nil {
		return nil, err
	}

	switch firehose.Result(resp.Result) {
	case firehose.ResultOk:
		return resp.Payload, nil
	case firehose.ResultDropped:
		return nil, transform.ErrDrop
	case firehose.ResultProcessingFailed:
		return nil, fmt.Errorf("plugin failed: %s", resp.Error)
	default:
		return nil, fmt.Errorf("plugin returned unknown result %q", resp.Result)
	}
}

func (c *Client) call(ctx context.Context, req *TransformRequest) (*TransformResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp := new(TransformResponse)
	if err := c.cc.Invoke(ctx, TransformMethod, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// backoff allows Attempts calls in total, BackoffMS apart.
func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	var retries uint64
	if c.retry.Attempts > 1 {
		retries = uint64(c.retry.Attempts - 1)
	}
	b := backoff.NewConstantBackOff(time.Duration(c.retry.BackoffMS) * time.Millisecond)
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

// Check reports whether the plugin's health service says SERVING.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("plugin %s", resp.GetStatus())
	}
	return nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}

const defaultHealthTimeout = 5 * time.Second

// newStage dials the plugin and requires a SERVING health status, so a
// wrong address fails at bootstrap rather than on the first record.
func newStage(s transform.Spec, opts ...grpc.DialOption) (*Client, error) {
	c, err := Dial(s, opts...)
	if err != nil {
		return nil, err
	}
	timeout := c.timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.Check(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("health check %s: %w", s.Address, err)
	}
	return c, nil
}

func init() {
	transform.Register("grpc", func(s transform.Spec) (transform.Transformer, error) {
		c, err := newStage(s)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}
