package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studioflow/auth"
	"studioflow/config"
	"studioflow/db"
	"studioflow/handlers"
	"studioflow/i18n"
	"studioflow/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("STUDIO_CONFIG"), "path to a JSON config file")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	logging.Setup(config.AppConfig.LogLevel)
	logger := slog.Default()

	if err := i18n.LoadTranslations(); err != nil {
		logger.Error("Error loading translations", "error", err)
		os.Exit(1)
	}

	if err := auth.InitStore(config.AppConfig.SessionDir); err != nil {
		logger.Error("Error initializing session store", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, config.AppConfig.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", config.AppConfig.DatabasePath)

	mux := http.NewServeMux()
	handlers.New(store, logger).RegisterHandlers(mux)

	handler := handlers.LoggingMiddleware(logger)(
		handlers.SecurityHeadersMiddleware(
			handlers.CSRFMiddleware(mux),
		),
	)

	srv := &http.Server{
		Addr:              config.AppConfig.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	logger.Info("Server starting", "address", srv.Addr, "app", config.AppConfig.AppName)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
