package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/folio/internal/config"
	httpAdapter "github.com/aretw0/folio/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Exposes the story engine as a JSON API over HTTP, with live graph events over
SSE and Prometheus metrics on /metrics. Layout and threshold settings are reloaded
when the configuration file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			streams := httpAdapter.NewStreamManager()
			a, err := opts.newApp(streams.Hooks())
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			handlerOpts := []httpAdapter.Option{
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithStreams(streams),
			}
			if a.cfg.Server.Metrics {
				handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(promhttp.Handler()))
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:           httpAdapter.NewHandler(a.engine, handlerOpts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			a.loader.OnChange(func(c *config.Config) {
				a.engine.SetLayout(c.Layout)
				a.engine.SetThresholds(c.Thresholds)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				a.logger.Info("Starting Folio Server", "address", srv.Addr, "store", a.cfg.Store.Driver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			if _, err := os.Stat(opts.configPath); err == nil {
				g.Go(func() error {
					return a.loader.Watch(gctx)
				})
			}

			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				// Asking listener to shut down and shed load.
				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
					return srv.Close()
				}
				a.logger.Info("Folio Server stopped gracefully")
				return nil
			})

			return g.Wait()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides server.port)")
	return cmd
}
