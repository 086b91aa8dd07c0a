// Package httpapi is the JSON/HTTP gateway to the vault services. It mirrors
// the gRPC surface for browser clients and carries the session token in the
// "jwt" cookie or an Authorization: Bearer header.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/passvault/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Options tune the cookie the gateway sets.
type Options struct {
	SecureCookies  bool
	CookieValidity time.Duration
}

type HTTPServer struct {
	address  string
	accounts *services.AccountService
	vault    *services.VaultService
	sessions *auth.SessionIssuer
	limiter  *ratelimit.Limiter
	opts     Options
	logger   logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, as *services.AccountService, vs *services.VaultService, sessions *auth.SessionIssuer, limiter *ratelimit.Limiter, opts Options) *HTTPServer {
	if opts.CookieValidity <= 0 {
		opts.CookieValidity = auth.DefaultValidity
	}
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		accounts: as,
		vault:    vs,
		sessions: sessions,
		limiter:  limiter,
		opts:     opts,
	}
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
