package alarmclock

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The descriptor and client below implement api/alarmclock/v1/alarm_clock.proto.
// Its messages are well-known types, so no generated message code is needed.

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClockService"

// Full method names.
const (
	ScheduleMethod       = "/" + ServiceName + "/Schedule"
	CancelMethod         = "/" + ServiceName + "/Cancel"
	GetStatusMethod      = "/" + ServiceName + "/GetStatus"
	GetAlertMethod       = "/" + ServiceName + "/GetAlert"
	DismissMethod        = "/" + ServiceName + "/Dismiss"
	GetPermissionsMethod = "/" + ServiceName + "/GetPermissions"
	SetPermissionMethod  = "/" + ServiceName + "/SetPermission"
)

// AlarmClockServiceServer is the server API of the alarm daemon.
type AlarmClockServiceServer interface {
	Schedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Cancel(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetAlert(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Dismiss(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetPermissions(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	SetPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAlarmClockServiceServer registers srv on s.
func RegisterAlarmClockServiceServer(s grpc.ServiceRegistrar, srv AlarmClockServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Schedule",
			Handler:    unary[structpb.Struct](ScheduleMethod, AlarmClockServiceServer.Schedule),
		},
		{
			MethodName: "Cancel",
			Handler:    unary[emptypb.Empty](CancelMethod, AlarmClockServiceServer.Cancel),
		},
		{
			MethodName: "GetStatus",
			Handler:    unary[emptypb.Empty](GetStatusMethod, AlarmClockServiceServer.GetStatus),
		},
		{
			MethodName: "GetAlert",
			Handler:    unary[emptypb.Empty](GetAlertMethod, AlarmClockServiceServer.GetAlert),
		},
		{
			MethodName: "Dismiss",
			Handler:    unary[emptypb.Empty](DismissMethod, AlarmClockServiceServer.Dismiss),
		},
		{
			MethodName: "GetPermissions",
			Handler:    unary[emptypb.Empty](GetPermissionsMethod, AlarmClockServiceServer.GetPermissions),
		},
		{
			MethodName: "SetPermission",
			Handler:    unary[structpb.Struct](SetPermissionMethod, AlarmClockServiceServer.SetPermission),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// unary builds a method handler decoding a request of type *T.
func unary[T any, PT interface {
	*T
	proto.Message
}](
	fullMethod string,
	call func(AlarmClockServiceServer, context.Context, PT) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PT(new(T))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServiceServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PT)
			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// AlarmClockServiceClient is the client API of the alarm daemon.
type AlarmClockServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockServiceClient creates a client over cc.
func NewAlarmClockServiceClient(cc grpc.ClientConnInterface) *AlarmClockServiceClient {
	return &AlarmClockServiceClient{cc: cc}
}

// Schedule calls AlarmClockService.Schedule.
func (c *AlarmClockServiceClient) Schedule(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, ScheduleMethod, in, opts...)
}

// Cancel calls AlarmClockService.Cancel.
func (c *AlarmClockServiceClient) Cancel(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, CancelMethod, new(emptypb.Empty), opts...)
}

// GetStatus calls AlarmClockService.GetStatus.
func (c *AlarmClockServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, GetStatusMethod, new(emptypb.Empty), opts...)
}

// GetAlert calls AlarmClockService.GetAlert.
func (c *AlarmClockServiceClient) GetAlert(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, GetAlertMethod, new(emptypb.Empty), opts...)
}

// Dismiss calls AlarmClockService.Dismiss.
func (c *AlarmClockServiceClient) Dismiss(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, DismissMethod, new(emptypb.Empty), opts...)
}

// GetPermissions calls AlarmClockService.GetPermissions.
func (c *AlarmClockServiceClient) GetPermissions(
	ctx context.Context,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, GetPermissionsMethod, new(emptypb.Empty), opts...)
}

// SetPermission calls AlarmClockService.SetPermission.
func (c *AlarmClockServiceClient) SetPermission(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, SetPermissionMethod, in, opts...)
}

func invoke(
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in proto.Message,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
