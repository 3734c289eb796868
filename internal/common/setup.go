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

package common

import (
	"context"
	"log"
	"strings"

	"crowdfund-ledger-go/internal/database"
	"crowdfund-ledger-go/internal/formance"
	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService       *database.Service
	FormanceService *formance.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the campaign runtime and, when configured, the
// Formance ledger that mirrors its transfers
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		return nil, err
	}

	services := &Services{DbService: dbService}
	if !cfg.Formance.Enabled() {
		zap.L().Info("Formance stack not configured, transfers will not be mirrored")
		return services, nil
	}

	zap.L().Info("Connecting to Formance stack", zap.String("url", cfg.Formance.StackURL))
	formanceService, err := formance.NewService(ctx, cfg.Formance)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	services.FormanceService = formanceService

	return services, nil
}

// InitializeDatabaseOnly initializes just the campaign runtime without Formance
// Useful for local operations like submitting instructions or querying balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	fees, err := program.NewFeeSchedule(cfg.Program.FeePercent)
	if err != nil {
		return nil, err
	}

	dbService, err := database.NewService(ctx, cfg.Database, fees)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.FormanceService != nil {
		cs.FormanceService.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
