package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-dex-token-analyzer/internal/bootstrap"
	"golang-dex-token-analyzer/internal/delivery/consumer"
	"golang-dex-token-analyzer/internal/service"
	"golang-dex-token-analyzer/pkg/common"
	"golang-dex-token-analyzer/pkg/logger"
	"golang-dex-token-analyzer/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	withScheduler bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the update worker and the cron scheduler",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(configPath, bootstrap.Options{WithRedis: true})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	appLogger := app.Logger
	appLogger.Info("Starting Worker Service", logger.StringField("stream", common.RedisStreamTokenUpdate))

	if err := app.Redis.EnsureGroup(ctx, common.RedisStreamTokenUpdate, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	if withScheduler {
		scheduler, err := service.NewSchedulerService(app.Tasks, app.Config.Worker.UpdateCron, appLogger.Named("scheduler"))
		if err != nil {
			appLogger.Fatal("Invalid update schedule", logger.ErrorField(err))
		}
		utils.GoSafe(appLogger, func() {
			if err := scheduler.Start(ctx); err != nil {
				appLogger.Error("Scheduler stopped with error", logger.ErrorField(err))
			}
		})
	}

	redisConsumer := consumer.NewRedisConsumer(app.Config, app.Tasks, appLogger.Named("consumer"))
	redisConsumer.Start(ctx)

	<-ctx.Done()
	appLogger.Info("Shutting down worker...")
	redisConsumer.Stop()
	appLogger.Info("Worker exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "worker-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	serveCmd.Flags().BoolVar(&withScheduler, "scheduler", true, "Publish update_all tasks on worker.update_cron")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing worker-service CLI: %s\n", err)
		os.Exit(1)
	}
}
