package transport

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
	"firehoseproc/internal/transform"
)

// Server exposes a Transformer to the processor over grpc.
type Server struct {
	grpc   *grpc.Server
	lis    net.Listener
	health *health.Server
}

func Listen(addr string, t transform.Transformer) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewServer(lis, t), nil
}

func NewServer(lis net.Listener, t transform.Transformer, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpc:   grpc.NewServer(opts...),
		lis:    lis,
		health: health.NewServer(),
	}
	RegisterTransformerServer(s.grpc, service{t: t})
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }

func (s *Server) Serve() error {
	return s.grpc.Serve(s.lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

type service struct {
	t transform.Transformer
}

func (s service) Transform(ctx context.Context, req *TransformRequest) (*TransformResponse, error) {
	out, err := s.t.Transform(transform.WithRecordID(ctx, req.RecordID), req.Payload)
	switch {
	case errors.Is(err, transform.ErrDrop):
		return &TransformResponse{Result: string(firehose.ResultDropped)}, nil
	case err != nil:
		logging.L().Warn("transform failed", "record_id", req.RecordID, "err", err)
		return &TransformResponse{Result: string(firehose.ResultProcessingFailed), Error: err.Error()}, nil
	}
	return &TransformResponse{Result: string(firehose.ResultOk), Payload: out}, nil
}
