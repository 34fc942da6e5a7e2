// Package taskgatev1 defines the taskgate.v1.TaskService gRPC contract.
//
// Requests and responses are protobuf well-known types, so the service is
// declared by hand instead of generated from a .proto file:
//
//	service TaskService {
//	  rpc Run(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	  rpc Read(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	  rpc Classify(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	}
package taskgatev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified service name.
const ServiceName = "taskgate.v1.TaskService"

const (
	RunMethod      = "/" + ServiceName + "/Run"
	ReadMethod     = "/" + ServiceName + "/Read"
	ClassifyMethod = "/" + ServiceName + "/Classify"
)

// TaskServiceServer is the server API for TaskService.
type TaskServiceServer interface {
	Run(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Read(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Classify(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedTaskServiceServer can be embedded for forward compatibility.
type UnimplementedTaskServiceServer struct{}

func (UnimplementedTaskServiceServer) Run(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Run not implemented")
}

func (UnimplementedTaskServiceServer) Read(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Read not implemented")
}

func (UnimplementedTaskServiceServer) Classify(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Classify not implemented")
}

type unaryCall func(TaskServiceServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func unary(name, fullMethod string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(wrapperspb.StringValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TaskServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TaskServiceServer), ctx, req.(*wrapperspb.StringValue))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// TaskServiceDesc is the grpc.ServiceDesc for TaskService.
var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Run", RunMethod, TaskServiceServer.Run),
		unary("Read", ReadMethod, TaskServiceServer.Read),
		unary("Classify", ClassifyMethod, TaskServiceServer.Classify),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskgate/v1/taskgate.proto",
}

// RegisterTaskServiceServer registers srv on s.
func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&TaskServiceDesc, srv)
}

// TaskServiceClient is the client API for TaskService.
type TaskServiceClient interface {
	Run(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Read(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Classify(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type taskServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTaskServiceClient wraps cc.
func NewTaskServiceClient(cc grpc.ClientConnInterface) TaskServiceClient {
	return &taskServiceClient{cc: cc}
}

func (c *taskServiceClient) invoke(ctx context.Context, method string, in *wrapperspb.StringValue, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *taskServiceClient) Run(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RunMethod, in, opts)
}

func (c *taskServiceClient) Read(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ReadMethod, in, opts)
}

func (c *taskServiceClient) Classify(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ClassifyMethod, in, opts)
}
