package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AhmedIzaan/ai-interview-coach/internal/app"
	"github.com/AhmedIzaan/ai-interview-coach/internal/config"
	apihttp "github.com/AhmedIzaan/ai-interview-coach/internal/http"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var httpAddr, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interview API and the metrics endpoint",
		Long: `Serve the interview API and the metrics endpoint.

The API drives one interview at a time:
  POST   /v1/interview          start (body: {"role": "...", "tone": "..."})
  GET    /v1/interview          current view
  POST   /v1/interview/capture  start or stop capturing an answer
  POST   /v1/interview/submit   submit the retained answer
  POST   /v1/interview/retry    retry the failed call
  POST   /v1/interview/restart  start over with the same role and tone
  DELETE /v1/interview/error    dismiss the visible error
  GET    /v1/interview/stream   WebSocket for views and the browser speech bridge
  GET    /v1/reports[/{id}]     archived interviews`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if httpAddr != "" {
				cfg.Service.HTTPAddr = httpAddr
			}
			if metricsAddr != "" {
				cfg.Service.MetricsAddr = metricsAddr
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "API listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics listen address (overrides METRICS_ADDR)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Configuration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer application.Shutdown()

	api := &http.Server{
		Addr:              cfg.Service.HTTPAddr,
		Handler:           apihttp.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
	}
	obs := observability.NewServer(cfg.Service.MetricsAddr, application.Gatherer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		application.Logger.Info().Str("addr", api.Addr).Msg("Starting interview API server")
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(obs.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		application.Logger.Info().Msg("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		apiErr := api.Shutdown(shutdownCtx)
		obsErr := obs.Shutdown(shutdownCtx)
		return errors.Join(apiErr, obsErr)
	})

	return g.Wait()
}
