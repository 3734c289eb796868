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
	"strconv"
	"time"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Journal account types
const (
	accountTypeEscrow = "campaign_escrow"
	accountTypeWallet = "wallet"
	accountTypeFaucet = "faucet"
)

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SubledgerService keeps native token balances, the transfer journal and its
// double-entry journal entries
type SubledgerService struct {
	db *sql.DB
}

func NewSubledgerService(db *sql.DB) *SubledgerService {
	return &SubledgerService{
		db: db,
	}
}

func (s *SubledgerService) InitSchema() error {
	schema := `
	-- Accounts Table (Current State - Hot Data)
	CREATE TABLE IF NOT EXISTS accounts (
		address TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Transfers Table (Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS transfers (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		instruction_id TEXT NOT NULL,
		campaign TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		from_account TEXT NOT NULL,
		to_account TEXT NOT NULL,
		amount TEXT NOT NULL,
		mirrored BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_campaign ON transfers(campaign);
	CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers(from_account);
	CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers(to_account);
	CREATE INDEX IF NOT EXISTS idx_transfers_mirrored ON transfers(mirrored);

	-- Journal Entries for Double-Entry Bookkeeping
	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		transfer_id TEXT NOT NULL,
		account_type TEXT NOT NULL,
		account_id TEXT NOT NULL,
		debit_amount TEXT NOT NULL DEFAULT '0',
		credit_amount TEXT NOT NULL DEFAULT '0',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journal_transfer_id ON journal_entries(transfer_id);
	CREATE INDEX IF NOT EXISTS idx_journal_account ON journal_entries(account_type, account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetAccount returns the account at address, or a zero-balance account if none exists
func (s *SubledgerService) GetAccount(ctx context.Context, q execer, address string) (*models.Account, error) {
	account := &models.Account{Address: address}
	var balanceStr string
	err := q.QueryRowContext(ctx, queryGetAccount, address).
		Scan(&account.Address, &balanceStr, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return account, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if account.Balance, err = parseAmount(balanceStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance of %s: %w", address, err)
	}
	return account, nil
}

// adjust applies delta to one account under optimistic locking. A debit that
// would take the balance below zero fails with store.ErrInsufficientFunds.
func (s *SubledgerService) adjust(ctx context.Context, tx *sql.Tx, address string, amount uint64, credit bool, now time.Time) error {
	account, err := s.GetAccount(ctx, tx, address)
	if err != nil {
		return err
	}

	var newBalance uint64
	if credit {
		newBalance = account.Balance + amount
		if newBalance < account.Balance {
			return fmt.Errorf("balance of %s would overflow", address)
		}
	} else {
		if account.Balance < amount {
			return fmt.Errorf("%w: %s holds %d, needs %d", store.ErrInsufficientFunds, address, account.Balance, amount)
		}
		newBalance = account.Balance - amount
	}

	if account.Version == 0 {
		if _, err := tx.ExecContext(ctx, queryInsertAccount, address, formatAmount(newBalance), now, now); err != nil {
			return fmt.Errorf("failed to create account %s: %w", address, err)
		}
		return nil
	}

	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, formatAmount(newBalance), now, address, account.Version)
	if err != nil {
		return fmt.Errorf("failed to update balance of %s: %w", address, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update of %s failed - %w", address, store.ErrConcurrentModification)
	}
	return nil
}

// ProcessTransfer moves amount from one account to another inside tx and
// records the transfer with its journal entries. Transfers out of the faucet
// mint new tokens and debit nothing.
func (s *SubledgerService) ProcessTransfer(ctx context.Context, tx *sql.Tx, transfer models.Transfer) (*models.Transfer, error) {
	zap.L().Debug("Processing transfer",
		zap.String("instruction_id", transfer.InstructionId),
		zap.String("campaign", transfer.Campaign),
		zap.String("kind", transfer.Kind),
		zap.String("from", transfer.From),
		zap.String("to", transfer.To),
		zap.Uint64("amount", transfer.Amount))

	if transfer.From == transfer.To {
		return nil, fmt.Errorf("transfer from %s to itself", transfer.From)
	}
	if transfer.Id == "" {
		transfer.Id = uuid.New().String()
	}
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = time.Now().UTC()
	}

	var existingId string
	err := tx.QueryRowContext(ctx, queryCheckDuplicateTransfer, transfer.Id).Scan(&existingId)
	if err == nil {
		return nil, fmt.Errorf("%w: transfer id %s already exists", store.ErrDuplicateTransfer, transfer.Id)
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check for duplicate transfer: %w", err)
	}

	if transfer.From != models.AirdropSource {
		if err := s.adjust(ctx, tx, transfer.From, transfer.Amount, false, transfer.CreatedAt); err != nil {
			return nil, err
		}
	}
	if err := s.adjust(ctx, tx, transfer.To, transfer.Amount, true, transfer.CreatedAt); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, queryInsertTransfer,
		transfer.Id, transfer.InstructionId, transfer.Campaign, transfer.Kind,
		transfer.From, transfer.To, formatAmount(transfer.Amount), transfer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	if err := s.addJournalEntries(ctx, tx, &transfer); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	return &transfer, nil
}

// addJournalEntries creates double-entry bookkeeping entries: the receiving
// account is debited and the sending account credited.
func (s *SubledgerService) addJournalEntries(ctx context.Context, tx *sql.Tx, transfer *models.Transfer) error {
	entries := []models.JournalEntry{
		{AccountType: journalAccountType(transfer.Campaign, transfer.To), AccountId: transfer.To, DebitAmount: transfer.Amount},
		{AccountType: journalAccountType(transfer.Campaign, transfer.From), AccountId: transfer.From, CreditAmount: transfer.Amount},
	}

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			uuid.New().String(), transfer.Id, entry.AccountType, entry.AccountId,
			formatAmount(entry.DebitAmount), formatAmount(entry.CreditAmount))
		if err != nil {
			return err
		}
	}
	return nil
}

func journalAccountType(campaign, account string) string {
	switch {
	case account == models.AirdropSource:
		return accountTypeFaucet
	case campaign != "" && account == campaign:
		return accountTypeEscrow
	default:
		return accountTypeWallet
	}
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

func parseAmount(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
