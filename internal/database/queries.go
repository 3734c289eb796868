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

const (
	// Campaign queries
	queryCampaignExists = `
		SELECT 1 FROM campaigns WHERE address = ? LIMIT 1`

	queryCampaignPaysAccount = `
		SELECT 1 FROM campaigns WHERE owner = ? OR fee_recipient = ? LIMIT 1`

	queryGetCampaign = `
		SELECT address, campaign_id, owner, fee_recipient, soft_cap, hard_cap, deadline, status,
		       total_raised, escrow_balance, paid_out, version, created_at, updated_at
		FROM campaigns
		WHERE address = ?`

	queryListCampaigns = `
		SELECT c.address, c.campaign_id, c.owner, c.status, c.soft_cap, c.hard_cap,
		       c.total_raised, c.escrow_balance, c.deadline,
		       (SELECT COUNT(*) FROM tiers t WHERE t.campaign = c.address),
		       (SELECT COUNT(*) FROM contributions k WHERE k.campaign = c.address)
		FROM campaigns c
		ORDER BY c.created_at, c.address`

	queryInsertCampaign = `
		INSERT INTO campaigns (
			address, campaign_id, owner, fee_recipient, soft_cap, hard_cap, deadline, status,
			total_raised, escrow_balance, paid_out, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`

	queryUpdateCampaign = `
		UPDATE campaigns
		SET status = ?, total_raised = ?, escrow_balance = ?, paid_out = ?,
		    version = version + 1, updated_at = ?
		WHERE address = ? AND version = ?`

	queryGetTiers = `
		SELECT tier_id, pledge_amount
		FROM tiers
		WHERE campaign = ?
		ORDER BY position`

	queryInsertTier = `
		INSERT OR IGNORE INTO tiers (campaign, position, tier_id, pledge_amount)
		VALUES (?, ?, ?, ?)`

	queryGetContributions = `
		SELECT idx, tier_id, contributor, amount, refunded, created_at, refunded_at
		FROM contributions
		WHERE campaign = ?
		ORDER BY idx`

	queryUpsertContribution = `
		INSERT INTO contributions (campaign, idx, tier_id, contributor, amount, refunded, created_at, refunded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign, idx) DO UPDATE SET refunded = excluded.refunded, refunded_at = excluded.refunded_at`

	queryInsertInstruction = `
		INSERT INTO instructions (id, kind, campaign, signers, status_before, status_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	// Account queries
	queryGetAccount = `
		SELECT address, balance, version, created_at, updated_at
		FROM accounts
		WHERE address = ?`

	queryInsertAccount = `
		INSERT INTO accounts (address, balance, version, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE address = ? AND version = ?`

	// Transfer queries
	queryCheckDuplicateTransfer = `
		SELECT id FROM transfers WHERE id = ? LIMIT 1`

	queryInsertTransfer = `
		INSERT INTO transfers (id, instruction_id, campaign, kind, from_account, to_account, amount, mirrored, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, transfer_id, account_type, account_id, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetTransfers = `
		SELECT id, instruction_id, campaign, kind, from_account, to_account, amount, mirrored, created_at
		FROM transfers
		WHERE (? = '' OR campaign = ?) AND (? = '' OR from_account = ? OR to_account = ?)
		ORDER BY seq DESC
		LIMIT ? OFFSET ?`

	queryGetUnmirroredTransfers = `
		SELECT id, instruction_id, campaign, kind, from_account, to_account, amount, mirrored, created_at
		FROM transfers
		WHERE mirrored = 0
		ORDER BY seq
		LIMIT ?`

	queryMarkTransferMirrored = `
		UPDATE transfers SET mirrored = 1 WHERE id = ?`

	queryGetJournalEntries = `
		SELECT debit_amount, credit_amount
		FROM journal_entries
		WHERE account_id = ?`
)
