package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AlarmService method names.
const (
	AlarmServiceName          = "aevum.alarm.v1.AlarmService"
	AlarmServiceAddMethod     = "/" + AlarmServiceName + "/Add"
	AlarmServiceRemoveMethod  = "/" + AlarmServiceName + "/Remove"
	AlarmServiceSubscribeName = "Subscribe"
	AlarmServiceSubscribeFull = "/" + AlarmServiceName + "/" + AlarmServiceSubscribeName
)

// AlarmServiceClient is the client API of the alarm store.
type AlarmServiceClient interface {
	Add(ctx context.Context, in *AddAlarmRequest, opts ...grpc.CallOption) (*MutationResponse, error)
	Remove(ctx context.Context, in *RemoveAlarmRequest, opts ...grpc.CallOption) (*MutationResponse, error)
	Subscribe(
		ctx context.Context,
		in *SubscribeRequest,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[AlarmEvent], error)
}

type alarmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmServiceClient creates a client using the JSON codec on every call.
//
//nolint:ireturn // Mirrors the usual generated client constructor.
func NewAlarmServiceClient(cc grpc.ClientConnInterface) AlarmServiceClient {
	return &alarmServiceClient{cc: cc}
}

func (c *alarmServiceClient) Add(
	ctx context.Context,
	in *AddAlarmRequest,
	opts ...grpc.CallOption,
) (*MutationResponse, error) {
	out := new(MutationResponse)
	if err := c.cc.Invoke(ctx, AlarmServiceAddMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmServiceClient) Remove(
	ctx context.Context,
	in *RemoveAlarmRequest,
	opts ...grpc.CallOption,
) (*MutationResponse, error) {
	out := new(MutationResponse)
	if err := c.cc.Invoke(ctx, AlarmServiceRemoveMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}

	return out, nil
}

//nolint:ireturn // Stream type is defined by grpc.
func (c *alarmServiceClient) Subscribe(
	ctx context.Context,
	in *SubscribeRequest,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[AlarmEvent], error) {
	stream, err := c.cc.NewStream(ctx, &AlarmServiceDesc.Streams[0], AlarmServiceSubscribeFull, withCodec(opts)...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[SubscribeRequest, AlarmEvent]{ClientStream: stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// AlarmServiceServer is the server API of the alarm store.
type AlarmServiceServer interface {
	Add(ctx context.Context, in *AddAlarmRequest) (*MutationResponse, error)
	Remove(ctx context.Context, in *RemoveAlarmRequest) (*MutationResponse, error)
	Subscribe(in *SubscribeRequest, stream grpc.ServerStreamingServer[AlarmEvent]) error
}

// UnimplementedAlarmServiceServer answers every method with codes.Unimplemented.
type UnimplementedAlarmServiceServer struct{}

// Add is not implemented.
func (UnimplementedAlarmServiceServer) Add(context.Context, *AddAlarmRequest) (*MutationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Add not implemented")
}

// Remove is not implemented.
func (UnimplementedAlarmServiceServer) Remove(context.Context, *RemoveAlarmRequest) (*MutationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Remove not implemented")
}

// Subscribe is not implemented.
func (UnimplementedAlarmServiceServer) Subscribe(*SubscribeRequest, grpc.ServerStreamingServer[AlarmEvent]) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}

// RegisterAlarmServiceServer registers srv on s.
func RegisterAlarmServiceServer(s grpc.ServiceRegistrar, srv AlarmServiceServer) {
	s.RegisterService(&AlarmServiceDesc, srv)
}

func addHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(AddAlarmRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlarmServiceServer).Add(ctx, in) //nolint:forcetypeassert // Registered type.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AlarmServiceAddMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlarmServiceServer).Add(ctx, req.(*AddAlarmRequest)) //nolint:forcetypeassert // Registered type.
	}

	return interceptor(ctx, in, info, handler)
}

func removeHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(RemoveAlarmRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlarmServiceServer).Remove(ctx, in) //nolint:forcetypeassert // Registered type.
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AlarmServiceRemoveMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlarmServiceServer).Remove(ctx, req.(*RemoveAlarmRequest)) //nolint:forcetypeassert // Registered type.
	}

	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	//nolint:forcetypeassert // Registered type.
	return srv.(AlarmServiceServer).Subscribe(in, &grpc.GenericServerStream[SubscribeRequest, AlarmEvent]{
		ServerStream: stream,
	})
}

// AlarmServiceDesc describes the alarm store service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package level by convention.
var AlarmServiceDesc = grpc.ServiceDesc{
	ServiceName: AlarmServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Add", Handler: addHandler},
		{MethodName: "Remove", Handler: removeHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: AlarmServiceSubscribeName, Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "aevum/alarm/v1/alarm.json",
}
