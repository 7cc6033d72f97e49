package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"quiver/internal/config"
	"quiver/pkg/logging"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// runServer starts the MCP server, the catalog watcher and the metrics
// endpoint, then blocks until ctx is cancelled, SIGINT or SIGTERM arrives,
// or a component fails. Everything is shut down before it returns.
func runServer(ctx context.Context, qc *config.QuiverConfig, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if services.Watcher != nil {
		if err := services.Watcher.Start(gctx); err != nil {
			logging.Error("App", err, "Failed to start catalog watcher")
			return err
		}
		defer services.Watcher.Stop()
	}

	if services.Metrics != nil {
		g.Go(func() error {
			return services.Metrics.Serve(gctx, qc.Metrics.Address, qc.Metrics.Path)
		})
	}

	if err := services.Server.Start(gctx); err != nil {
		logging.Error("App", err, "Failed to start MCP server")
		return err
	}
	logging.Info("App", "Serving %d tools and %d prompts at %s",
		len(services.Server.AdvertisedTools()), len(services.Server.AdvertisedPrompts()), services.Server.Endpoint())

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("App", "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := services.Server.Stop(shutdownCtx); err != nil {
			logging.Warn("App", "Error stopping MCP server: %v", err)
		}
		if err := services.Tracing.Shutdown(shutdownCtx); err != nil {
			logging.Warn("App", "Error flushing traces: %v", err)
		}
		return nil
	})

	return g.Wait()
}
