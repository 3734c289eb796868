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

package database

import (
	"context"
	"database/sql"
	"fmt"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"
	"crowdfund-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.CampaignStore.
var _ store.CampaignStore = (*Service)(nil)

type Service struct {
	db        *sql.DB
	subledger *SubledgerService
	fees      program.FeeSchedule
	clock     program.Clock
	locks     *keyedMutex
}

func NewService(ctx context.Context, cfg models.DatabaseConfig, fees program.FeeSchedule) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := newServiceWithDB(db, fees)
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully",
		zap.String("fee_percent", fees.Percent.String()))
	return service, nil
}

func newServiceWithDB(db *sql.DB, fees program.FeeSchedule) *Service {
	return &Service{
		db:        db,
		subledger: NewSubledgerService(db),
		fees:      fees,
		clock:     program.SystemClock,
		locks:     newKeyedMutex(),
	}
}

// SetClock replaces the clock used as execution time for new instructions
func (s *Service) SetClock(clock program.Clock) {
	s.clock = clock
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	if err := initCampaignSchema(s.db); err != nil {
		return err
	}
	if err := s.subledger.InitSchema(); err != nil {
		return fmt.Errorf("unable to initialize subledger schema: %w", err)
	}
	return nil
}

func (s *Service) GetCampaign(ctx context.Context, address string) (*models.Campaign, error) {
	return loadCampaign(ctx, s.db, address)
}

func (s *Service) ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error) {
	rows, err := s.db.QueryContext(ctx, queryListCampaigns)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var campaigns []models.CampaignSummary
	for rows.Next() {
		var (
			c                       models.CampaignSummary
			idStr, softStr, hardStr string
			raisedStr, escrowStr    string
		)
		err := rows.Scan(&c.Address, &idStr, &c.Owner, &c.Status, &softStr, &hardStr,
			&raisedStr, &escrowStr, &c.Deadline, &c.Tiers, &c.Contributions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		for _, f := range []struct {
			dst *uint64
			src string
		}{
			{&c.Id, idStr}, {&c.SoftCap, softStr}, {&c.HardCap, hardStr},
			{&c.TotalRaised, raisedStr}, {&c.EscrowBalance, escrowStr},
		} {
			if *f.dst, err = parseAmount(f.src); err != nil {
				return nil, fmt.Errorf("campaign %s: failed to parse '%s': %w", c.Address, f.src, err)
			}
		}
		c.Deadline = c.Deadline.UTC()
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during campaign row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}
	return campaigns, nil
}

func (s *Service) GetTransfers(ctx context.Context, filter store.TransferFilter) ([]models.Transfer, error) {
	return s.subledger.GetTransfers(ctx, filter)
}

func (s *Service) ListUnmirroredTransfers(ctx context.Context, limit int) ([]models.Transfer, error) {
	return s.subledger.ListUnmirroredTransfers(ctx, limit)
}

func (s *Service) MarkTransferMirrored(ctx context.Context, transferId string) error {
	return s.subledger.MarkTransferMirrored(ctx, transferId)
}
