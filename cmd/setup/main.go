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
	"errors"
	"flag"
	"time"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/database"
	"crowdfund-ledger-go/internal/program"
	"crowdfund-ledger-go/internal/store"

	"go.uber.org/zap"
)

// setupCampaign submits the instructions of one seed; an existing campaign is skipped
func setupCampaign(ctx context.Context, dbService *database.Service, seed common.CampaignSeed, now time.Time) (bool, error) {
	ixs, err := seed.Instructions(now)
	if err != nil {
		return false, err
	}

	for _, ix := range ixs {
		receipt, err := dbService.Submit(ctx, ix)
		if err != nil {
			if ix.Kind == program.IxCreateCampaign && errors.Is(err, store.ErrAccountInUse) {
				zap.L().Info("Campaign already exists, skipping",
					zap.Uint64("campaign_id", seed.Id),
					zap.String("owner", seed.Owner))
				return false, nil
			}
			zap.L().Error("Error submitting setup instruction",
				zap.Uint64("campaign_id", seed.Id),
				zap.String("kind", string(ix.Kind)),
				zap.Error(err))
			return false, err
		}

		zap.L().Debug("Setup instruction committed",
			zap.String("kind", receipt.Kind),
			zap.String("campaign", receipt.Campaign),
			zap.String("status", receipt.StatusAfter))
	}

	zap.L().Info("Campaign ready",
		zap.Uint64("campaign_id", seed.Id),
		zap.String("address", program.DeriveAddress(seed.Id, seed.Owner)),
		zap.Int("tiers", len(seed.Tiers)),
		zap.Bool("published", seed.Publish))
	return true, nil
}

func setupCampaigns(ctx context.Context, dbService *database.Service, campaignsFile string) {
	zap.L().Info("Loading campaign configuration", zap.String("file", campaignsFile))
	seeds, err := common.LoadCampaignFile(campaignsFile)
	if err != nil {
		zap.L().Fatal("Failed to load campaign config", zap.Error(err))
	}
	zap.L().Info("Campaign configuration loaded", zap.Int("count", len(seeds)))

	now := time.Now().UTC()
	var created, skipped, failed int
	for _, seed := range seeds {
		ok, err := setupCampaign(ctx, dbService, seed, now)
		switch {
		case err != nil:
			failed++
		case ok:
			created++
		default:
			skipped++
		}
	}

	if failed > 0 {
		zap.L().Warn("Campaign setup completed with some failures",
			zap.Int("created", created),
			zap.Int("skipped", skipped),
			zap.Int("failed", failed))
	} else {
		zap.L().Info("Campaign setup completed successfully",
			zap.Int("created", created),
			zap.Int("skipped", skipped))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fileFlag := flag.String("file", "", "Path to the campaigns file (default: CAMPAIGNS_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	campaignsFile := cfg.Program.CampaignsFile
	if *fileFlag != "" {
		campaignsFile = *fileFlag
	}

	zap.L().Info("Setting up SQLite database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	setupCampaigns(ctx, dbService, campaignsFile)
}
