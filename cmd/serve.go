package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/api"
	"github.com/talentwire/jobs-crawler/internal/jobs"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the crawl HTTP service",
		Long: `Starts an HTTP server exposing health, Prometheus metrics, and an
on-demand crawl endpoint (POST /v1/crawl).`,
		RunE: runServeCommand,
	}
}

// engineCrawler adapts the engine to the api.Crawler interface, building a
// per-request orchestrator so clients can pass their own wait selector.
type engineCrawler struct {
	eng *engine
}

func (c engineCrawler) CrawlWithFallback(ctx context.Context, target jobs.CompanyTarget) jobs.CrawlResult {
	return c.eng.orchestrator("").CrawlWithFallback(ctx, target)
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.close()

	srv := api.NewServer(engineCrawler{eng: eng}, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}
