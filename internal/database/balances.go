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
	"fmt"
	"math/big"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"
	"crowdfund-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NativeDecimals is the number of base units per whole native token, as a power of ten
const NativeDecimals = 9

// GetAccountBalance returns the native balance of address; unknown accounts hold zero
func (s *Service) GetAccountBalance(ctx context.Context, address string) (*models.AccountBalance, error) {
	account, err := s.subledger.GetAccount(ctx, s.db, address)
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("address", address), zap.Error(err))
		return nil, err
	}

	zap.L().Debug("Retrieved balance", zap.String("address", address), zap.Uint64("lamports", account.Balance))
	return &models.AccountBalance{
		Address:  address,
		Lamports: account.Balance,
		Balance:  toTokens(account.Balance),
	}, nil
}

// Airdrop mints amount into address. Campaign accounts cannot be airdropped to,
// their balance must always equal the escrow they track.
func (s *Service) Airdrop(ctx context.Context, address string, amount uint64) (*models.Transfer, error) {
	if address == "" || address == models.AirdropSource {
		return nil, fmt.Errorf("invalid airdrop recipient %q", address)
	}
	if amount == 0 {
		return nil, fmt.Errorf("airdrop amount must be positive")
	}

	unlock := s.locks.Lock(address)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	isCampaign, err := campaignExists(ctx, tx, address)
	if err != nil {
		return nil, err
	}
	if isCampaign {
		return nil, fmt.Errorf("%w: %s is a campaign account", store.ErrAccountInUse, address)
	}

	transfer, err := s.subledger.ProcessTransfer(ctx, tx, models.Transfer{
		InstructionId: uuid.New().String(),
		Kind:          models.TransferAirdrop,
		From:          models.AirdropSource,
		To:            address,
		Amount:        amount,
		CreatedAt:     s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("error processing airdrop: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Airdrop processed successfully",
		zap.String("address", address),
		zap.Uint64("lamports", amount),
		zap.String("transfer_id", transfer.Id))
	return transfer, nil
}

// ReconcileCampaign checks the campaign record against its contribution log,
// its account balance and the net of its journal entries. A mismatch is
// reported in the result; only read failures are returned as errors.
func (s *Service) ReconcileCampaign(ctx context.Context, address string) (*models.ReconcileResult, error) {
	zap.L().Info("Reconciling campaign", zap.String("campaign", address))

	unlock := s.locks.Lock(address)
	defer unlock()

	campaign, err := loadCampaign(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	account, err := s.subledger.GetAccount(ctx, s.db, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign account: %w", err)
	}
	journal, err := s.subledger.JournalBalance(ctx, s.db, address)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate balance from journal: %w", err)
	}

	result := &models.ReconcileResult{
		Campaign:       address,
		Status:         campaign.Status.String(),
		TotalRaised:    campaign.TotalRaised,
		EscrowBalance:  campaign.EscrowBalance,
		AccountBalance: account.Balance,
		JournalBalance: journal.BigInt().Uint64(),
	}

	escrow := decimalFromUint64(campaign.EscrowBalance)
	recordErr := program.Reconcile(campaign)
	switch {
	case recordErr != nil:
		result.Error = recordErr.Error()
	case account.Balance != campaign.EscrowBalance:
		result.Error = fmt.Sprintf("account holds %d, escrow is %d", account.Balance, campaign.EscrowBalance)
	case !journal.Equal(escrow):
		result.Error = fmt.Sprintf("journal nets %s, escrow is %d", journal.String(), campaign.EscrowBalance)
	default:
		result.Ok = true
	}

	if !result.Ok {
		zap.L().Error("Campaign reconciliation failed",
			zap.String("campaign", address),
			zap.String("error", result.Error))
		return result, nil
	}

	zap.L().Info("Campaign reconciliation successful",
		zap.String("campaign", address),
		zap.String("status", result.Status),
		zap.Uint64("escrow", result.EscrowBalance))
	return result, nil
}

func toTokens(lamports uint64) decimal.Decimal {
	return decimalFromUint64(lamports).Shift(-NativeDecimals)
}

func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
