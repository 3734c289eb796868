/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/mirror"

	"go.uber.org/zap"
)

func main() {
	onceFlag := flag.Bool("once", false, "Mirror pending transfers once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting transfer mirror")

	if !cfg.Formance.Enabled() {
		zap.L().Fatal("FORMANCE_STACK_URL, FORMANCE_CLIENT_ID and FORMANCE_CLIENT_SECRET must be set")
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	m := mirror.NewTransferMirror(mirror.TransferMirrorConfig{
		Source:          services.DbService,
		Journal:         services.FormanceService,
		PollingInterval: cfg.Mirror.PollingInterval,
		BatchSize:       cfg.Mirror.BatchSize,
	})

	if *onceFlag {
		count, err := m.SyncOnce(ctx)
		if err != nil {
			zap.L().Error("Mirror pass failed", zap.Int("mirrored", count), zap.Error(err))
			return
		}
		zap.L().Info("Mirror pass completed", zap.Int("mirrored", count))
		return
	}

	if err := m.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start transfer mirror", zap.Error(err))
	}

	zap.L().Info("Transfer mirror running",
		zap.Duration("polling_interval", cfg.Mirror.PollingInterval),
		zap.String("ledger", cfg.Formance.LedgerName))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping transfer mirror...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Transfer mirror stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
