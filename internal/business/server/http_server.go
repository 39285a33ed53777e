package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/config"
	"github.com/SilviuMajor/total-dash-sub001/internal/middleware/domain"
	"github.com/SilviuMajor/total-dash-sub001/internal/middleware/responsewriter"
)

const domainContextPath = "/api/v1/domain-context"

// createHTTPServer creates an API http server using the given config
func createHTTPServer(_ context.Context, cfg *config.Config, resolver ContextResolver) *http.Server {
	route := func(operationID string, h http.Handler) http.Handler {
		return newTraceMiddleware(cfg, operationID)(recoverMiddleware(h))
	}

	mux := http.NewServeMux()
	mux.Handle("POST "+domainContextPath, route("resolveDomainContext", domainContextHandler(resolver)))
	mux.Handle("OPTIONS "+domainContextPath, route("domainContextPreflight", http.HandlerFunc(preflightHandler)))
	mux.Handle("GET /ping", route("ping", pingHandlerFunc()))

	var handler http.Handler = mux
	handler = domain.Middleware(handler)
	handler = corsMiddleware(cfg.HTTP.AllowedOrigin)(handler)
	handler = recoverMiddleware(handler)
	handler = responsewriter.ResponseWriterMiddleware(handler)

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}
}

// StartHTTPServer starts the HTTP server using the given config.
func StartHTTPServer(ctx context.Context, cfg *config.Config, resolver ContextResolver) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server := createHTTPServer(ctx, cfg, resolver)

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// Parse network if the address if provided in the format of network://address.
	// Otherwise use tcp network by default.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	slogctx.Info(ctx, "A listener started", "address", listener.Addr().String())

	go func() {
		slogctx.Info(ctx, "Serving an HTTP server", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve an HTTP server", "error", err)
		}

		slogctx.Info(ctx, "Stopped an HTTP server")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
