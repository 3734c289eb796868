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
	"fmt"
	"strings"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalCampaigns int
	reconciled     int
	mismatched     int
}

func printCampaignHeader(c models.CampaignSummary) {
	fmt.Printf("\n┌─ Campaign %d (%s)\n", c.Id, c.Status)
	fmt.Printf("│  Address: %s\n", c.Address)
	fmt.Printf("│  Owner: %s, deadline %s\n", c.Owner, c.Deadline.Format("2006-01-02 15:04:05"))
	common.PrintBoxSeparator(78)
}

func printCampaign(ctx context.Context, c models.CampaignSummary, services *common.Services) (bool, error) {
	result, err := services.DbService.ReconcileCampaign(ctx, c.Address)
	if err != nil {
		return false, fmt.Errorf("failed to reconcile: %w", err)
	}

	printCampaignHeader(c)
	fmt.Printf("%s %-15s: %20s / soft %s / hard %s\n", common.BoxPrefix(false), "raised",
		common.FormatLamports(c.TotalRaised), common.FormatLamports(c.SoftCap), common.FormatLamports(c.HardCap))
	fmt.Printf("%s %-15s: %20s (%d tiers, %d contributions)\n", common.BoxPrefix(false), "escrow",
		common.FormatLamports(c.EscrowBalance), c.Tiers, c.Contributions)

	if services.FormanceService != nil {
		mirrored, err := services.FormanceService.MirroredBalance(ctx, c.Address, c.Address)
		if err != nil {
			zap.L().Warn("Failed to read mirrored escrow", zap.String("campaign", c.Address), zap.Error(err))
		} else {
			fmt.Printf("%s %-15s: %20s\n", common.BoxPrefix(false), "mirrored", mirrored.Balance.String())
		}
	}

	verdict := "ok"
	if !result.Ok {
		verdict = "MISMATCH " + result.Error
	}
	fmt.Printf("%s %-15s: account %s, journal %s, %s\n", common.BoxPrefix(true), "reconcile",
		common.FormatLamports(result.AccountBalance), common.FormatLamports(result.JournalBalance), verdict)

	return result.Ok, nil
}

func printAccounts(ctx context.Context, addresses []string, services *common.Services) {
	common.PrintHeader("ACCOUNT BALANCES", common.DefaultWidth)
	for i, address := range addresses {
		isLast := i == len(addresses)-1
		balance, err := services.DbService.GetAccountBalance(ctx, address)
		if err != nil {
			zap.L().Error("Failed to get balance", zap.String("address", address), zap.Error(err))
			continue
		}

		line := fmt.Sprintf("%s %-20s: %20s", common.BoxPrefix(isLast), common.ShortAddress(address), balance.Balance.String())
		if services.FormanceService != nil {
			if mirrored, err := services.FormanceService.MirroredBalance(ctx, "", address); err == nil {
				line += fmt.Sprintf(" (mirrored %s)", mirrored.Balance.String())
			}
		}
		fmt.Println(line)
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountsFlag := flag.String("accounts", "", "Comma separated accounts to report balances for (optional)")
	mirroredFlag := flag.Bool("mirrored", false, "Compare against the Formance ledger (requires FORMANCE_* settings)")
	flag.Parse()

	logger.Info("Starting campaign report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	var services *common.Services
	if *mirroredFlag {
		services, err = common.InitializeServices(ctx, cfg)
	} else {
		// No need for Formance for read-only local reports
		services = &common.Services{}
		services.DbService, err = common.InitializeDatabaseOnly(ctx, cfg)
	}
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	campaigns, err := services.DbService.ListCampaigns(ctx)
	if err != nil {
		logger.Fatal("Failed to list campaigns", zap.Error(err))
	}

	common.PrintHeader("CAMPAIGN REPORT", common.DefaultWidth)

	stats := balanceStats{}
	for _, c := range campaigns {
		stats.totalCampaigns++
		ok, err := printCampaign(ctx, c, services)
		if err != nil {
			logger.Error("Failed to process campaign",
				zap.String("campaign", c.Address),
				zap.Error(err))
			continue
		}
		if ok {
			stats.reconciled++
		} else {
			stats.mismatched++
		}
	}

	if *accountsFlag != "" {
		var addresses []string
		for _, a := range strings.Split(*accountsFlag, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addresses = append(addresses, a)
			}
		}
		printAccounts(ctx, addresses, services)
	}

	summary := fmt.Sprintf("SUMMARY: %d campaigns, %d reconciled, %d mismatched",
		stats.totalCampaigns, stats.reconciled, stats.mismatched)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Campaign report completed",
		zap.Int("campaigns", stats.totalCampaigns),
		zap.Int("reconciled", stats.reconciled),
		zap.Int("mismatched", stats.mismatched))
}
