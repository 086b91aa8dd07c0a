package grpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/rpc"
	"github.com/dmitrijs2005/passvault/internal/server/audit"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// newTestServer wires a GRPCServer over a bolt store in a temp dir.
func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *GRPCServer {
	t.Helper()
	ctx := context.Background()

	rm, err := repomanager.New(ctx, &config.Config{
		StoreType: repomanager.StoreBolt,
		BoltPath:  filepath.Join(t.TempDir(), "vault.db"),
	})
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx))
	t.Cleanup(func() { _ = rm.Close(ctx) })

	hasher, err := cryptox.NewHasher(cryptox.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	cipher, err := cryptox.NewCipherFromHex(testKeyHex)
	require.NoError(t, err)
	sessions, err := auth.NewSessionIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	logger := logging.Nop{}
	as := services.NewAccountService(rm, hasher, sessions, logger)
	vs := services.NewVaultService(rm, cipher, hasher, audit.NoOp{}, logger)

	return NewGRPCServer("127.0.0.1:0", logger, as, vs, sessions, limiter)
}

// dial serves s over bufconn and returns a connected client.
func dial(t *testing.T, s *GRPCServer) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return conn
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method, token string, fields map[string]any) (*structpb.Struct, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, rpc.FullMethod(method), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerFields(name, password string, answers [3]string) map[string]any {
	f := map[string]any{rpc.FieldUserName: name, rpc.FieldPassword: password}
	rpc.SetAnswers(f, answers)
	return f
}
