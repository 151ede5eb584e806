package transport

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName     = "firehose.v1.Transformer"
	TransformMethod = "/" + ServiceName + "/Transform"
)

// TransformRequest carries one decoded record payload.
type TransformRequest struct {
	RecordID string `json:"recordId"`
	Payload  []byte `json:"payload"`
}

// TransformResponse.Result uses the Firehose result strings: "Ok",
// "Dropped" or "ProcessingFailed". Error is set only with the latter.
type TransformResponse struct {
	Result  string `json:"result"`
	Payload []byte `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

type TransformerServer interface {
	Transform(context.Context, *TransformRequest) (*TransformResponse, error)
}

func RegisterTransformerServer(s grpc.ServiceRegistrar, srv TransformerServer) {
	s.RegisterService(&transformerServiceDesc, srv)
}

func transformHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TransformRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformerServer).Transform(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TransformMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransformerServer).Transform(ctx, req.(*TransformRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var transformerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransformerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Transform", Handler: transformHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "firehose/v1/transformer",
}
