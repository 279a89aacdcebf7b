package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeparity/internal/adapter/inbound/messaging"
	"codeparity/internal/adapter/outbound/repository"
	"codeparity/internal/adapter/outbound/treesitter"
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/application/service"
	"codeparity/internal/config"
	"codeparity/internal/port/inbound"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// newWorkerCmd creates and returns the worker command.
func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Start the comparison worker service",
		Long: `Start the worker service that answers comparison requests from NATS.

The worker service:
- Subscribes to the comparison subject in a queue group
- Parses both submitted sources and compares their syntax trees
- Replies with the comparison result over request/reply
- Optionally records outcomes in PostgreSQL

Configuration is loaded from config files and environment variables.`,
		Run: func(_ *cobra.Command, _ []string) {
			runWorkerService()
		},
	}
}

// runWorkerService starts the worker and blocks until shutdown.
func runWorkerService() {
	cfg := GetConfig()

	slogger.InfoNoCtx("Starting comparison worker", slogger.Fields{
		"subject":     cfg.Worker.Subject,
		"queue_group": cfg.Worker.QueueGroup,
		"concurrency": cfg.Worker.Concurrency,
	})

	handler, cleanup, err := buildComparisonHandler(cfg)
	if err != nil {
		slogger.ErrorNoCtx("Failed to create comparison handler", slogger.Fields{"error": err.Error()})
		return
	}
	defer cleanup()

	consumer, err := messaging.NewComparisonConsumer(cfg.Worker, cfg.NATS, handler)
	if err != nil {
		slogger.ErrorNoCtx("Failed to create comparison consumer", slogger.Fields{"error": err.Error()})
		return
	}

	ctx := context.Background()
	if startErr := consumer.Start(ctx); startErr != nil {
		slogger.ErrorNoCtx("Failed to start comparison consumer", slogger.Fields{"error": startErr.Error()})
		return
	}

	waitForShutdownSignal()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if stopErr := consumer.Stop(shutdownCtx); stopErr != nil {
		slogger.ErrorNoCtx("Failed to stop comparison consumer", slogger.Fields{"error": stopErr.Error()})
	}
}

// buildComparisonHandler assembles the comparison pipeline, wrapping it with
// outcome recording when the database is enabled. The returned cleanup
// releases any acquired resources.
func buildComparisonHandler(cfg *config.Config) (inbound.ComparisonHandler, func(), error) {
	svc, err := service.NewComparisonService(treesitter.NewTreeSitterSyntaxParser())
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Database.Enabled {
		return svc, func() {}, nil
	}

	pool, err := repository.NewDatabasePool(context.Background(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	records := repository.NewPostgreSQLComparisonRecordRepository(pool)
	handler, err := service.NewRecordingComparisonHandler(svc, records)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return handler, pool.Close, nil
}

// waitForShutdownSignal blocks until SIGINT or SIGTERM.
func waitForShutdownSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals

	slogger.InfoNoCtx("Shutdown signal received", slogger.Fields{"signal": sig.String()})
}
