package grpc

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// VaultServer is the server side of passvault.v1.VaultService. Bodies are
// structpb.Struct values laid out as described in package rpc.
type VaultServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Me(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RetrieveSecret(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(VaultServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc registers a VaultServer with a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(rpc.MethodRegister, VaultServer.Register),
		unaryHandler(rpc.MethodLogin, VaultServer.Login),
		unaryHandler(rpc.MethodLogout, VaultServer.Logout),
		unaryHandler(rpc.MethodMe, VaultServer.Me),
		unaryHandler(rpc.MethodCreateItem, VaultServer.CreateItem),
		unaryHandler(rpc.MethodListItems, VaultServer.ListItems),
		unaryHandler(rpc.MethodDeleteItem, VaultServer.DeleteItem),
		unaryHandler(rpc.MethodRetrieveSecret, VaultServer.RetrieveSecret),
		unaryHandler(rpc.MethodPing, VaultServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "passvault/v1/vault.proto",
}
