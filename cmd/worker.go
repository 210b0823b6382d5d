package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/personal-ledger/internal/importer"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for background jobs",
	Long:  `Start and manage worker pools for background jobs such as inbox imports.`,
}

var importWorkerCmd = &cobra.Command{
	Use:   "imports",
	Short: "Start the import inbox worker pool",
	Long:  `Watch the import inbox directory and import every file dropped into it`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startImportWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	inboxDir     string
	pollInterval time.Duration
)

func startImportWorker() error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		deps.Close(closeCtx)
	}()

	// command line flags win over config values
	poolConfig := importer.PoolConfig{
		MaxWorkers:   getIntFlag(maxWorkers, cfg.Import.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, cfg.Import.JobQueueSize),
	}
	dir := getStringFlag(inboxDir, cfg.Import.InboxDirectory)
	interval := cfg.Import.PollInterval
	if pollInterval > 0 {
		interval = pollInterval
	}

	logger := deps.Logger
	logger.Info("starting import worker",
		"max_workers", poolConfig.MaxWorkers,
		"job_queue_size", poolConfig.JobQueueSize,
		"inbox", dir,
		"poll_interval", interval)

	pool := importer.NewPool(deps.Pipeline, poolConfig, logger)
	inbox := importer.NewInbox(dir, interval, pool, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return inbox.Run(gctx)
	})

	logger.Info("import worker is running. Press Ctrl+C to stop.")
	err = g.Wait()
	logger.Info("shutting down import worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("import worker pool shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout reached, forcing exit")
	}

	if err != nil {
		return fmt.Errorf("import inbox stopped: %w", err)
	}
	return nil
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	importWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	importWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	importWorkerCmd.Flags().StringVar(&inboxDir, "inbox", "", "Inbox directory (overrides config)")
	importWorkerCmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Inbox poll interval (overrides config)")

	workerCmd.AddCommand(importWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
