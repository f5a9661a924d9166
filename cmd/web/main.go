// Command web serves the upload-and-compare HTTP API backing the browser
// UI. It has no comparison logic of its own.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nemcli/internal/config"
	"nemcli/internal/infrastructure"
	transport "nemcli/internal/transport/http"
)

func main() {
	port := flag.Int("port", 0, "listen port (defaults from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: failed to load config, using defaults: %v\n", err)
		cfg = &config.Config{}
	}
	if *port == 0 {
		*port = cfg.Server.Port
	}
	if *port == 0 {
		*port = 8080
	}

	logCfg := cfg.Logging
	if logCfg.Level == "" {
		logCfg = config.LoggingConfig{Level: "info", Format: "json", Output: "console"}
	}
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      transport.NewRouter(logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("comparison API listening", slog.Int("port", *port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	<-done
}
