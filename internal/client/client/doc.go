// Package client is the gRPC client for passvault.v1.VaultService.
//
// GRPCClient wraps grpc.ClientConn.Invoke with typed methods, attaches the
// session token to every call through an interceptor, and maps gRPC status
// codes to the sentinel errors in errors.go so callers can use errors.Is.
// Invalid-argument errors keep the server's message.
package client
