package grpc

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/netx"
	"github.com/dmitrijs2005/passvault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

var errNotAuthenticated = status.Error(codes.Unauthenticated, common.ErrNotAuthenticated.Error())

func accountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if rpc.PublicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := tokenFromContext(ctx)
	if len(accessToken) == 0 {
		return nil, errNotAuthenticated
	}

	accountID, err := s.sessions.Verify(accessToken)
	if err != nil {
		s.logger.Debug(ctx, "session rejected", "method", info.FullMethod, "reason", err.Error())
		return nil, errNotAuthenticated
	}

	return handler(context.WithValue(ctx, accountIDKey, accountID), req)
}

var throttled = map[string]bool{
	rpc.FullMethod(rpc.MethodRegister): true,
	rpc.FullMethod(rpc.MethodLogin):    true,
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter == nil || !throttled[info.FullMethod] {
		return handler(ctx, req)
	}

	key := clientAddress(ctx)
	if !s.limiter.Allow(key) {
		s.logger.Warn(ctx, "rate limited", "method", info.FullMethod, "client", key)
		return nil, status.Error(codes.ResourceExhausted, "too many requests, try again later")
	}
	return handler(ctx, req)
}

// clientAddress is the peer host without the port, so reconnects share a bucket.
func clientAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	return netx.Host(p.Addr.String())
}
