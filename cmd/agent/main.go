package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ngrewe/digitalocean-flocker-plugin/cmd/agent/api"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/otel"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/providers"
)

func main() {
	if err := run(); err != nil {
		slog.Error("agent terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := providers.ProvideConfig()
	if cfg.Token == "" {
		return fmt.Errorf("DO_TOKEN is required")
	}
	if cfg.ClusterID == "" {
		return fmt.Errorf("FLOCKER_CLUSTER_ID is required")
	}

	otelProvider, otelShutdown, err := otel.Init(context.Background(), otel.Config{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		ServiceName: cfg.OtelServiceName,
		Insecure:    cfg.OtelInsecure,
	})
	if err != nil {
		// Telemetry is optional; keep serving without it.
		slog.Warn("failed to initialize OpenTelemetry, continuing without telemetry", "error", err)
	}
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				slog.Warn("error shutting down OpenTelemetry", "error", err)
			}
		}()
	}

	log := providers.ProvideLogger()
	if otelProvider != nil && otelProvider.LogHandler != nil {
		log = slog.New(otelProvider.LogHandler)
	}
	slog.SetDefault(log)

	ctrl := providers.ProvideController(cfg,
		providers.ProvideProviderClient(cfg),
		providers.ProvideMetadataSource(),
	)
	if otelProvider != nil && otelProvider.Meter != nil {
		if metrics, err := blockdevice.NewMetrics(otelProvider.Meter, ctrl); err == nil {
			ctrl.SetMetrics(metrics)
		}
	}

	ctx, stop := signal.NotifyContext(logger.AddToContext(context.Background(), log),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := api.New(ctrl, ctrl)
	server := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Port),
		Handler: service.Router(),
		BaseContext: func(net.Listener) context.Context {
			return logger.AddToContext(context.Background(), log)
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("agent listening", "port", cfg.Port, "cluster_id", cfg.ClusterID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
