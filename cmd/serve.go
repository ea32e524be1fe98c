package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clearfeed/api"
	"clearfeed/config"
	"clearfeed/orchestrator"
	"clearfeed/shared/kafka"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func isUnknownCategory(err error) bool {
	return errors.Is(err, orchestrator.ErrUnknownCategory)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, status, closeStore, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	defer svc.Close()

	if cfg.RefreshCron != "" {
		schedule, err := orchestrator.StartRefreshCron(cfg.RefreshCron, svc)
		if err != nil {
			return err
		}
		defer schedule.Stop()
	}

	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewRefreshConsumer(cfg, svc, isUnknownCategory)
		if err != nil {
			log.Printf("Failed to create Kafka consumer: %v", err)
		} else {
			defer consumer.Close()
			go consumer.Run(ctx)
		}
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: api.NewRouter(svc, status),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting API server on %s", srv.Addr)
		log.Println("API endpoints available:")
		log.Println("  GET  /api/feeds")
		log.Println("  GET  /api/feeds/:category")
		log.Println("  GET  /api/categories")
		log.Println("  POST /api/refresh")
		log.Println("  GET  /api/health")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}
