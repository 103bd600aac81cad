package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"transfers/internal/api"
	"transfers/internal/transfer"
	"transfers/internal/video"
	"transfers/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	Long: `Run the HTTP gateway on HTTP_ADDR and the metrics/debug listener on
DEBUG_ADDR. The process shuts down gracefully on SIGINT or SIGTERM.`,
	Example: `  # Serve with settings from .env
  transfers serve

  # Local development against the in-memory backend
  STORAGE_BACKEND=memory JWT_SIGNING_KEY=dev S3_BUCKET_VIDEOS=videos \
    transfers serve --memory-bucket uploads`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr, _ := cmd.Flags().GetString("debug-addr"); addr != "" {
		cfg.DebugAddr = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	memoryBuckets, _ := cmd.Flags().GetStringSlice("memory-bucket")
	store, err := newObjectStore(ctx, append([]string{cfg.VideoBucket}, memoryBuckets...)...)
	if err != nil {
		return err
	}
	verifier, err := newVerifier(ctx)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := api.NewServer(api.Config{
		Transfers: transfer.NewService(store,
			transfer.WithWorkers(cfg.DownloadWorkers),
			transfer.WithMetrics(transfer.NewMetrics(registry)),
		),
		Streamer:         video.NewStreamer(store, cfg.VideoBucket),
		Catalog:          video.NewCatalog(store, cfg.VideoBucket),
		Verifier:         verifier,
		AllowedOrigins:   cfg.AllowedOrigins,
		VideoRequireAuth: cfg.VideoRequireAuth,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		Registerer:       registry,
	})

	var ready atomic.Bool
	httpServer := api.NewHTTPServer(cfg.HTTPAddr, server)
	debugServer := api.NewHTTPServer(cfg.DebugAddr, api.NewDebugMux(registry, ready.Load))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(httpServer, "http", func() { ready.Store(true) })
	})
	g.Go(func() error {
		return listenAndServe(debugServer, "debug", nil)
	})
	g.Go(func() error {
		<-gctx.Done()
		ready.Store(false)
		logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Join(
			httpServer.Shutdown(shutdownCtx),
			debugServer.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func listenAndServe(srv *http.Server, name string, onListen func()) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	logger.Info().Str("listener", name).Str("addr", ln.Addr().String()).Msg("listening")
	if onListen != nil {
		onListen()
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Override HTTP_ADDR")
	serveCmd.Flags().String("debug-addr", "", "Override DEBUG_ADDR")
	serveCmd.Flags().StringSlice("memory-bucket", nil, "Extra buckets to create with the memory backend")
}
