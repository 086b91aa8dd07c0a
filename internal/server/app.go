// Package server initializes and runs the passvault server: it opens the
// configured store, builds the crypto and session components, and serves
// the gRPC service and the HTTP gateway until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/audit"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/httpapi"
	"github.com/dmitrijs2005/passvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/services"

	gs "github.com/dmitrijs2005/passvault/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	repomanager    repomanager.RepositoryManager
	audit          audit.Sink
	sessions       *auth.SessionIssuer
	limiter        *ratelimit.Limiter
	accountService *services.AccountService
	vaultService   *services.VaultService
}

// NewApp builds every component from c. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	cipher, err := cryptox.NewCipherFromHex(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	hasher, err := newHasher(c)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	sessions, err := auth.NewSessionIssuer(c.SecretKey, c.SessionValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("session init error: %w", err)
	}

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sink, err := audit.NewSink(ctx, c, logger)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("audit init error: %w", err)
	}

	return &App{
		config:         c,
		logger:         logger,
		repomanager:    rm,
		audit:          sink,
		sessions:       sessions,
		limiter:        ratelimit.New(c.AuthRateLimit, c.AuthRateWindow, c.AuthRateBurst),
		accountService: services.NewAccountService(rm, hasher, sessions, logger),
		vaultService:   services.NewVaultService(rm, cipher, hasher, sink, logger),
	}, nil
}

func newHasher(c *config.Config) (*cryptox.Hasher, error) {
	return cryptox.NewHasher(
		cryptox.WithAlgorithm(cryptox.Algorithm(c.HashAlgorithm)),
		cryptox.WithBcryptCost(c.BcryptCost),
	)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accountService, app.vaultService, app.sessions, app.limiter)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.accountService, app.vaultService, app.sessions, app.limiter,
		httpapi.Options{SecureCookies: app.config.SecureCookies, CookieValidity: app.config.SessionValidityDuration})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled, a signal arrives or
// either server fails, then releases the store and the audit sink.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreType)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
}

func (app *App) close() {
	ctx := context.Background()
	if err := app.audit.Close(); err != nil {
		app.logger.Error(ctx, "audit close", "error", err)
	}
	if err := app.repomanager.Close(ctx); err != nil {
		app.logger.Error(ctx, "store close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
