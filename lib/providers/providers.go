// Package providers wires configuration into constructed components for the
// agent binary.
package providers

import (
	"context"
	"log/slog"
	"os"

	"github.com/ngrewe/digitalocean-flocker-plugin/cmd/agent/config"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/do"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
)

// ProvideLogger provides a structured logger.
func ProvideLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// ProvideContext provides a context with logger attached.
func ProvideContext(log *slog.Logger) context.Context {
	return logger.AddToContext(context.Background(), log)
}

// ProvideConfig provides the application configuration.
func ProvideConfig() *config.Config {
	return config.Load()
}

// ProvideProviderClient provides the DigitalOcean API client.
func ProvideProviderClient(cfg *config.Config) *do.Client {
	return do.NewClient(cfg.Token)
}

// ProvideMetadataSource provides the droplet metadata source.
func ProvideMetadataSource() *do.MetadataSource {
	return do.NewMetadataSource()
}

// ProvideController provides the block device controller.
func ProvideController(cfg *config.Config, client *do.Client, meta *do.MetadataSource) *blockdevice.Controller {
	return blockdevice.NewController(blockdevice.Config{
		ClusterID:    cfg.ClusterID,
		PollInterval: cfg.ActionPollInterval,
		AwaitTimeout: cfg.ActionTimeout,
	}, client, meta)
}
