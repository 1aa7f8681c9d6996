package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The banko.v1.BankoService surface uses protobuf well-known types only, so
// the descriptor below is written by hand instead of generated.

const (
	bankoServiceName     = "banko.v1.BankoService"
	loginFullMethod      = "/" + bankoServiceName + "/Login"
	drawFullMethod       = "/" + bankoServiceName + "/Draw"
	listDrawnFullMethod  = "/" + bankoServiceName + "/ListDrawn"
	listClaimsFullMethod = "/" + bankoServiceName + "/ListClaims"

	// SessionTokenKey is the metadata key carrying the token returned by Login.
	SessionTokenKey = "session-token"
)

type BankoServiceServer interface {
	Login(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	Draw(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	ListDrawn(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListClaims(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterBankoServiceServer(s grpc.ServiceRegistrar, srv BankoServiceServer) {
	s.RegisterService(&bankoServiceDesc, srv)
}

var bankoServiceDesc = grpc.ServiceDesc{
	ServiceName: bankoServiceName,
	HandlerType: (*BankoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: loginHandler},
		{MethodName: "Draw", Handler: drawHandler},
		{MethodName: "ListDrawn", Handler: listDrawnHandler},
		{MethodName: "ListClaims", Handler: listClaimsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "banko/v1/banko.proto",
}

func loginHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BankoServiceServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: loginFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BankoServiceServer).Login(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func drawHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BankoServiceServer).Draw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: drawFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BankoServiceServer).Draw(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func listDrawnHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BankoServiceServer).ListDrawn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listDrawnFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BankoServiceServer).ListDrawn(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listClaimsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BankoServiceServer).ListClaims(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listClaimsFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BankoServiceServer).ListClaims(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// BankoServiceClient calls banko.v1.BankoService over an existing connection.
type BankoServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBankoServiceClient(cc grpc.ClientConnInterface) *BankoServiceClient {
	return &BankoServiceClient{cc: cc}
}

func (c *BankoServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, loginFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BankoServiceClient) Draw(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, drawFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BankoServiceClient) ListDrawn(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listDrawnFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BankoServiceClient) ListClaims(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listClaimsFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
