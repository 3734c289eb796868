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

	"github.com/shopspring/decimal"
)

// AccountBalance represents an account's native balance in base units and in whole tokens
type AccountBalance struct {
	Address  string          `json:"address"`
	Lamports uint64          `json:"lamports"`
	Balance  decimal.Decimal `json:"balance"`
}

// CampaignSummary is the list view of a campaign
type CampaignSummary struct {
	Id            uint64    `json:"id"`
	Address       string    `json:"address"`
	Owner         string    `json:"owner"`
	Status        string    `json:"status"`
	SoftCap       uint64    `json:"soft_cap"`
	HardCap       uint64    `json:"hard_cap"`
	TotalRaised   uint64    `json:"total_raised"`
	EscrowBalance uint64    `json:"escrow_balance"`
	Tiers         int       `json:"tiers"`
	Contributions int       `json:"contributions"`
	Deadline      time.Time `json:"deadline"`
}

// ReconcileResult reports whether a campaign's cached totals agree with its history
type ReconcileResult struct {
	Campaign       string `json:"campaign"`
	Status         string `json:"status"`
	TotalRaised    uint64 `json:"total_raised"`
	EscrowBalance  uint64 `json:"escrow_balance"`
	AccountBalance uint64 `json:"account_balance"`
	JournalBalance uint64 `json:"journal_balance"`
	Ok             bool   `json:"ok"`
	Error          string `json:"error,omitempty"`
}
