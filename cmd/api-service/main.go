package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-dex-token-analyzer/internal/bootstrap"
	delivery "golang-dex-token-analyzer/internal/delivery/http"
	_ "golang-dex-token-analyzer/internal/docs"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var (
	configPath string
	withQueue  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the token API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(configPath, bootstrap.Options{WithRedis: withQueue})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	appLogger := app.Logger
	appLogger.Info("Starting API Service", logger.Field("queue", withQueue))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			method, uri, status := logger.StringField("method", v.Method), logger.StringField("uri", v.URI), logger.IntField("status", v.Status)
			if v.Error != nil {
				appLogger.Warn("Request failed", method, uri, status, logger.ErrorField(v.Error))
				return nil
			}
			appLogger.Debug("Request handled", method, uri, status)
			return nil
		},
	}))

	tokenHandler := delivery.NewTokenHandler(app.Query, app.Updater, app.Tasks, appLogger.Named("http"))
	tokenHandler.RegisterRoutes(e.Group("/api/v1"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", app.Config.API.Host, app.Config.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title DEX Token Analyzer API
// @version 1.0
// @description Scores DexScreener pairs and serves BUY, HOLD and AVOID recommendations.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	serveCmd.Flags().BoolVar(&withQueue, "queue", true, "Connect to Redis so updates can be queued with ?async=true")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
