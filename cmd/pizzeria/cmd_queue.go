package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fornello/pizzeria/app/jobs"
	"github.com/fornello/pizzeria/config"
	"github.com/fornello/pizzeria/pkg/cache"
	"github.com/fornello/pizzeria/pkg/database"
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/queue"
)

var queueWorkersFlag int

// pizzeria queue:work — run a standalone worker process against the
// Redis queue. Only useful with QUEUE_DRIVER=redis; the memory driver
// is process-local.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start standalone queue workers (requires QUEUE_DRIVER=redis)",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Load()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := database.Connect(ctx); err != nil {
			return err
		}
		defer database.Disconnect(context.Background()) //nolint:errcheck

		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}

		jobs.RegisterAll()
		queue.UseCollection(database.Collection("failed_jobs"))
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}

		logger.Info("queue: standalone workers starting", "count", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		logger.Info("queue: standalone workers stopped")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVar(&queueWorkersFlag, "workers", 0, "number of workers (defaults to QUEUE_WORKERS)")
}
