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
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetTransfers returns transfer history, newest first
func (s *SubledgerService) GetTransfers(ctx context.Context, filter store.TransferFilter) ([]models.Transfer, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	zap.L().Debug("Getting transfer history",
		zap.String("campaign", filter.Campaign),
		zap.String("account", filter.Account),
		zap.Int("limit", limit),
		zap.Int("offset", filter.Offset))

	rows, err := s.db.QueryContext(ctx, queryGetTransfers,
		filter.Campaign, filter.Campaign,
		filter.Account, filter.Account, filter.Account,
		limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer history: %w", err)
	}
	return scanTransfers(rows)
}

// ListUnmirroredTransfers returns up to limit transfers not yet copied to the
// external journal, oldest first
func (s *SubledgerService) ListUnmirroredTransfers(ctx context.Context, limit int) ([]models.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUnmirroredTransfers, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unmirrored transfers: %w", err)
	}
	return scanTransfers(rows)
}

func (s *SubledgerService) MarkTransferMirrored(ctx context.Context, transferId string) error {
	result, err := s.db.ExecContext(ctx, queryMarkTransferMirrored, transferId)
	if err != nil {
		return fmt.Errorf("failed to mark transfer %s mirrored: %w", transferId, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transfer %s does not exist", transferId)
	}
	return nil
}

// JournalBalance nets the journal entries of one account (debits minus credits)
func (s *SubledgerService) JournalBalance(ctx context.Context, q execer, account string) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx, queryGetJournalEntries, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	net := decimal.Zero
	for rows.Next() {
		var debitStr, creditStr string
		if err := rows.Scan(&debitStr, &creditStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		debit, err := decimal.NewFromString(debitStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse debit '%s': %w", debitStr, err)
		}
		credit, err := decimal.NewFromString(creditStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse credit '%s': %w", creditStr, err)
		}
		net = net.Add(debit).Sub(credit)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating journal rows: %w", err)
	}
	return net, nil
}

func scanTransfers(rows *sql.Rows) ([]models.Transfer, error) {
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		var amountStr string
		err := rows.Scan(&t.Id, &t.InstructionId, &t.Campaign, &t.Kind,
			&t.From, &t.To, &amountStr, &t.Mirrored, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if t.Amount, err = parseAmount(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		transfers = append(transfers, t)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transfer row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}
	return transfers, nil
}
