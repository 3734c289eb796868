package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/database"

	"go.uber.org/zap"
)

func fundAccount(ctx context.Context, dbService *database.Service, address string, lamports uint64) bool {

	transfer, err := dbService.Airdrop(ctx, address, lamports)
	if err != nil {
		zap.L().Error("Airdrop failed",
			zap.String("address", address),
			zap.Uint64("lamports", lamports),
			zap.Error(err))
		fmt.Printf("✗ %s: %v\n", address, err)
		return false
	}

	balance, err := dbService.GetAccountBalance(ctx, address)
	if err != nil {
		zap.L().Warn("Funded account but could not read its balance",
			zap.String("address", address),
			zap.Error(err))
		fmt.Printf("✓ %s: +%s (transfer %s)\n", address, common.FormatLamports(lamports), transfer.Id)
	} else {
		fmt.Printf("✓ %s: +%s, balance %s (transfer %s)\n",
			address, common.FormatLamports(lamports), balance.Balance.String(), transfer.Id)
	}

	return true
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	addressFlag := flag.String("address", "", "Comma separated accounts to fund (required)")
	amountFlag := flag.String("amount", "", "Amount of native tokens per account, e.g. 2.5 (required)")
	flag.Parse()

	if *addressFlag == "" || *amountFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: --address and --amount are required")
		flag.Usage()
		os.Exit(1)
	}

	lamports, err := common.ParseTokens(*amountFlag)
	if err != nil || lamports == 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid amount %q\n", *amountFlag)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	common.PrintHeader("FUNDING ACCOUNTS", common.DefaultWidth)

	var funded, failed int
	for _, address := range strings.Split(*addressFlag, ",") {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		if fundAccount(ctx, dbService, address, lamports) {
			funded++
		} else {
			failed++
		}
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d accounts funded, %d failed", funded, failed), common.DefaultWidth)

	logger.Info("Funding completed",
		zap.Int("funded", funded),
		zap.Int("failed", failed),
		zap.Uint64("lamports_each", lamports))
}
