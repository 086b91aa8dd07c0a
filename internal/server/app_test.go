package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.StoreType = "bolt"
	c.BoltPath = filepath.Join(t.TempDir(), "vault.db")
	c.EncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	c.SecretKey = "secret"
	c.BcryptCost = 4
	c.AuditType = "none"
	c.LogLevel = "error"
	require.NoError(t, c.Validate())
	return c
}

func TestNewApp_RunAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestNewApp_Errors(t *testing.T) {
	ctx := context.Background()

	c := testConfig(t)
	c.EncryptionKey = "short"
	_, err := NewApp(ctx, c)
	assert.ErrorContains(t, err, "cipher")

	c = testConfig(t)
	c.HashAlgorithm = "md5"
	_, err = NewApp(ctx, c)
	assert.ErrorContains(t, err, "hasher")

	c = testConfig(t)
	c.SecretKey = ""
	_, err = NewApp(ctx, c)
	assert.ErrorContains(t, err, "session")

	c = testConfig(t)
	c.StoreType = "sqlite"
	_, err = NewApp(ctx, c)
	assert.ErrorContains(t, err, "db init")

	c = testConfig(t)
	c.AuditType = "file"
	c.AuditFilePath = ""
	_, err = NewApp(ctx, c)
	assert.ErrorContains(t, err, "audit")
}
