package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowdfund-ledger-go/internal/api"
	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/mirror"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting campaign gateway")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	var m *mirror.TransferMirror
	if services.FormanceService != nil {
		m = mirror.NewTransferMirror(mirror.TransferMirrorConfig{
			Source:          services.DbService,
			Journal:         services.FormanceService,
			PollingInterval: cfg.Mirror.PollingInterval,
			BatchSize:       cfg.Mirror.BatchSize,
		})
		if err := m.Start(ctx); err != nil {
			zap.L().Fatal("Failed to start transfer mirror", zap.Error(err))
		}
	}

	handler := api.NewHandler(api.NewCampaignService(services.DbService))
	router := api.NewRouter(handler, cfg.API.RequestTimeout)

	srv := &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", cfg.API.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
	}
	if m != nil {
		m.Stop()
	}

	zap.L().Info("Gateway stopped")
}
