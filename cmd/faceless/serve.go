package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/faceless"
	"github.com/aretw0/faceless/internal/cli"
	"github.com/aretw0/faceless/internal/metrics"
	"github.com/aretw0/faceless/internal/runtime"
	httpAdapter "github.com/aretw0/faceless/pkg/adapters/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the persona and chat endpoints over HTTP, with Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := cli.NotifyContext(cmd.Context())
		defer stop()

		m := metrics.New()
		svc, cfg, err := openService(ctx, cmd,
			faceless.WithGeneratorOptions(runtime.WithObserver(m)))
		if err != nil {
			return err
		}
		defer svc.Close()
		logger := svc.Logger()

		if port, _ := cmd.Flags().GetInt("port"); cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		if !svc.ChatEnabled() {
			logger.Warn("chat endpoint disabled; set the model API key to enable it", "provider", cfg.Model.Provider)
		}

		srv := &http.Server{
			Addr: cfg.Server.Addr(),
			Handler: httpAdapter.NewHandler(svc,
				httpAdapter.WithCORSOrigins(cfg.Server.CORSOrigins...),
				httpAdapter.WithMetrics(m),
				httpAdapter.WithLogger(logger),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Faceless server listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			if sig := cli.ReceivedSignal(ctx); sig != nil {
				logger.Info("shutdown signal received", "signal", sig)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
			}
			logger.Info("Faceless server stopped gracefully")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8000, "Port to listen on (overrides server.port)")
}
