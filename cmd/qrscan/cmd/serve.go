package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericlevine/qrscan/internal/scan"
	"github.com/ericlevine/qrscan/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP decoding server",
		Long: `Start an HTTP server with the following endpoints:
  POST /v1/decode - decode the image in the request body or multipart field "image"
                    (query: try_harder, pure, inverted, mirrored)
  GET  /health    - health check
  GET  /metrics   - Prometheus metrics

Examples:
  qrscan serve
  qrscan serve --host 0.0.0.0 --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringP("host", "H", "localhost", "server host")
	flags.IntP("port", "p", 8080, "server port")
	flags.Int("max-upload-mb", 20, "maximum upload size in MB")
	flags.Duration("shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")

	a.bind("server.host", flags.Lookup("host"))
	a.bind("server.port", flags.Lookup("port"))
	a.bind("server.max_upload_mb", flags.Lookup("max-upload-mb"))
	a.bind("server.shutdown_timeout", flags.Lookup("shutdown-timeout"))
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg
	scanner, err := scan.New(cfg.Decode, scan.WithLogger(a.logger))
	if err != nil {
		return err
	}
	srv := server.New(scanner, server.Config{
		MaxUploadMB:    cfg.Server.MaxUploadMB,
		RequestTimeout: cfg.Decode.Timeout,
	}, a.logger)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}
