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

package models

import (
	"time"
)

// Transfer kinds recorded in the transfer journal
const (
	TransferContribution = "contribution"
	TransferPayoutOwner  = "payout_owner"
	TransferPayoutFee    = "payout_fee"
	TransferRefund       = "refund"
	TransferAirdrop      = "airdrop"
)

// AirdropSource is the pseudo account that funds airdrops
const AirdropSource = "faucet"

// Account represents the native token balance of one address (hot data)
type Account struct {
	Address   string    `db:"address"`
	Balance   uint64    `db:"balance"`
	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transfer represents one immutable native token movement (cold data)
type Transfer struct {
	Id            string    `db:"id"`
	InstructionId string    `db:"instruction_id"`
	Campaign      string    `db:"campaign"`
	Kind          string    `db:"kind"`
	From          string    `db:"from_account"`
	To            string    `db:"to_account"`
	Amount        uint64    `db:"amount"`
	Mirrored      bool      `db:"mirrored"`
	CreatedAt     time.Time `db:"created_at"`
}

// JournalEntry is one side of the double-entry record of a Transfer
type JournalEntry struct {
	Id           string `db:"id"`
	TransferId   string `db:"transfer_id"`
	AccountType  string `db:"account_type"`
	AccountId    string `db:"account_id"`
	DebitAmount  uint64 `db:"debit_amount"`
	CreditAmount uint64 `db:"credit_amount"`
}

// Receipt is returned to the submitter of a committed instruction
type Receipt struct {
	InstructionId string        `json:"instruction_id"`
	Kind          string        `json:"kind"`
	Campaign      string        `json:"campaign"`
	StatusBefore  string        `json:"status_before"`
	StatusAfter   string        `json:"status_after"`
	Transfers     []Transfer    `json:"transfers,omitempty"`
	Contribution  *Contribution `json:"contribution,omitempty"`
	CommittedAt   time.Time     `json:"committed_at"`
}
