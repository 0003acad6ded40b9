package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	waypointhttp "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/adapters/mcp"
	"github.com/aretw0/waypoint/pkg/observability"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP and MCP servers.
type ServeOptions struct {
	ConfigPath string
	Port       int
	// MetricsPort serves /metrics on its own listener. Zero mounts it on
	// the API server.
	MetricsPort int
	Transport   string
	Store       StoreOptions
	Log         LogOptions
}

// Serve runs the HTTP API until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger, err := CreateLogger(opts.Log)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics("waypoint")
	app, err := LoadApp(opts.ConfigPath, logger, metrics.Hooks())
	if err != nil {
		return err
	}
	p, err := SetupPersistence(opts.Store, logger)
	if err != nil {
		return err
	}
	defer p.Close()
	sessions := app.Sessions(p.Store, p.SessionOpts...)
	defer sessions.Close()

	hopts := []waypointhttp.Option{
		waypointhttp.WithLogger(logger),
		waypointhttp.WithParser(app.Parser()),
	}
	servers := []*http.Server{}
	if opts.MetricsPort == 0 {
		hopts = append(hopts, waypointhttp.WithMetrics(metrics.Handler()))
	} else {
		servers = append(servers, newHTTPServer(opts.MetricsPort, metrics.Handler()))
	}
	servers = append(servers, newHTTPServer(opts.Port, waypointhttp.NewHandler(sessions, hopts...)))

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		var errs []error
		for _, srv := range servers {
			errs = append(errs, shutdown(ctx, srv, logger))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func newHTTPServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// shutdown drains srv and closes it when open event streams outlive the
// timeout.
func shutdown(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("forcing server close", "addr", srv.Addr, "err", err)
		return srv.Close()
	}
	return nil
}

// ServeMCP runs the MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, opts ServeOptions) error {
	logger, err := CreateLogger(opts.Log)
	if err != nil {
		return err
	}
	app, err := LoadApp(opts.ConfigPath, logger)
	if err != nil {
		return err
	}
	p, err := SetupPersistence(opts.Store, logger)
	if err != nil {
		return err
	}
	defer p.Close()
	sessions := app.Sessions(p.Store, p.SessionOpts...)
	defer sessions.Close()

	srv := mcp.NewServer(sessions, mcp.WithLogger(logger), mcp.WithParser(app.Parser()))
	switch opts.Transport {
	case "", "stdio":
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, opts.Port)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", opts.Transport)
	}
}
