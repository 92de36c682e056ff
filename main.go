package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snack-shop/api"
	"snack-shop/config"
	_ "snack-shop/docs"
	"snack-shop/libs"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// @title Snack Shop API
// @version 1.0
// @description Table ordering, kitchen flow and billing for a small venue.
// @host localhost:8082
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snack-shop",
		Short: "Snack shop ordering and billing server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			config.NewLogger(cfg)
			return config.RunMigrations(cfg)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "print-worker",
		Short: "Consume print jobs and print tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printWorker()
		},
	})

	return cmd
}

func serve() error {
	cfg := config.LoadConfig()
	log := config.NewLogger(cfg)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := api.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		log.Info("Swagger UI", "url", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printWorker() error {
	cfg := config.LoadConfig()
	log := config.NewLogger(cfg)
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for the print worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := libs.DialRabbit(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer client.Close()

	if err := client.DeclareQueue(cfg.PrintQueue); err != nil {
		return fmt.Errorf("declare print queue: %w", err)
	}
	deliveries, err := client.Consume(cfg.PrintQueue, "print-worker", 1)
	if err != nil {
		return fmt.Errorf("consume print queue: %w", err)
	}

	log.Info("print worker started", "queue", cfg.PrintQueue)
	err = libs.RunPrintWorker(ctx, deliveries, libs.LogSink(log), log)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
