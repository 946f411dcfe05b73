package invokeserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName  = "hazyerr.v1.InvokeService"
	InvokeMethod = "/" + ServiceName + "/Invoke"
	ListMethod   = "/" + ServiceName + "/List"
)

// InvokeServiceServer is the server API of InvokeService. Requests and responses are
// structpb.Struct, see Server for their fields.
type InvokeServiceServer interface {
	Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InvokeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
		{
			MethodName: "List",
			Handler:    listHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterInvokeServiceServer(s grpc.ServiceRegistrar, srv InvokeServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InvokeServiceServer).Invoke(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InvokeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InvokeServiceServer).Invoke(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InvokeServiceServer).List(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InvokeServiceServer).List(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}
