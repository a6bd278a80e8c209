package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oauth-gateway/internal/common/logging"
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/server"
)

// Run is the main entry point for the gateway.
func Run() error {
	_ = godotenv.Load()

	logging.InitGlobalLogger()
	defer logging.MustSync()

	logging.Info("Starting oauth-gateway")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	srv := server.New(app.Router, cfg.Port, cfg.TLSCert, cfg.TLSKey, app.Logger)
	srvErr := srv.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		logging.Error("Server failed", err)
		return err
	case <-quit:
	}

	logging.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}

	// Cleanup (deferred) joins outstanding credential writes before exit.
	logging.Info("Server exited")
	return nil
}
