// Command web serves the dashboard read API over the processed report
// tables: ZIP list, combined series, KPI summary and insight per ZIP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"zhvipulse/internal/config"
	"zhvipulse/internal/infrastructure"
	"zhvipulse/internal/services"
	transport "zhvipulse/internal/transport/http"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(cfg.Logging)

	service, err := services.NewDataService(cfg.Paths.ProcessedDir, logger)
	if err != nil {
		logger.Error("failed to load processed data",
			"error", err,
			"dir", cfg.Paths.ProcessedDir,
			"hint", "run forecast-report first to generate the report tables")
		os.Exit(1)
	}

	server := transport.NewServer(cfg.Server, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background(), cfg.Server.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
