package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	"go.uber.org/zap"
)

func initCampaignSchema(db *sql.DB) error {
	schema := `
	-- Campaign accounts, one row per derived address
	CREATE TABLE IF NOT EXISTS campaigns (
		address TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		fee_recipient TEXT NOT NULL,
		soft_cap TEXT NOT NULL,
		hard_cap TEXT NOT NULL,
		deadline TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		total_raised TEXT NOT NULL DEFAULT '0',
		escrow_balance TEXT NOT NULL DEFAULT '0',
		paid_out TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_owner ON campaigns(owner);
	CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);

	CREATE TABLE IF NOT EXISTS tiers (
		campaign TEXT NOT NULL REFERENCES campaigns(address) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		tier_id TEXT NOT NULL,
		pledge_amount TEXT NOT NULL,
		PRIMARY KEY (campaign, tier_id)
	);

	CREATE TABLE IF NOT EXISTS contributions (
		campaign TEXT NOT NULL REFERENCES campaigns(address) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		tier_id TEXT NOT NULL,
		contributor TEXT NOT NULL,
		amount TEXT NOT NULL,
		refunded BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		refunded_at TIMESTAMP,
		PRIMARY KEY (campaign, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_contributions_contributor ON contributions(contributor);

	-- Instruction log
	CREATE TABLE IF NOT EXISTS instructions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		campaign TEXT NOT NULL,
		signers TEXT NOT NULL DEFAULT '',
		status_before TEXT NOT NULL,
		status_after TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_instructions_campaign ON instructions(campaign);
	`

	_, err := db.Exec(schema)
	return err
}

func campaignExists(ctx context.Context, q execer, address string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, queryCampaignExists, address).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check campaign %s: %w", address, err)
	}
	return true, nil
}

// campaignPaysAccount reports whether address is the owner or fee recipient of a campaign
func campaignPaysAccount(ctx context.Context, q execer, address string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, queryCampaignPaysAccount, address, address).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check payout accounts for %s: %w", address, err)
	}
	return true, nil
}

// loadCampaign reads the full campaign record including tiers and contributions
func loadCampaign(ctx context.Context, q execer, address string) (*models.Campaign, error) {
	c := &models.Campaign{}
	var (
		idStr, softStr, hardStr, statusStr string
		raisedStr, escrowStr, paidStr      string
	)
	err := q.QueryRowContext(ctx, queryGetCampaign, address).Scan(
		&c.Address, &idStr, &c.Owner, &c.FeeRecipient, &softStr, &hardStr, &c.Deadline, &statusStr,
		&raisedStr, &escrowStr, &paidStr, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrCampaignNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign %s: %w", address, err)
	}

	if c.Status, err = models.ParseStatus(statusStr); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", address, err)
	}
	for _, f := range []struct {
		dst *uint64
		src string
	}{
		{&c.Id, idStr}, {&c.SoftCap, softStr}, {&c.HardCap, hardStr},
		{&c.TotalRaised, raisedStr}, {&c.EscrowBalance, escrowStr}, {&c.PaidOut, paidStr},
	} {
		if *f.dst, err = parseAmount(f.src); err != nil {
			return nil, fmt.Errorf("campaign %s: failed to parse '%s': %w", address, f.src, err)
		}
	}
	c.Deadline = c.Deadline.UTC()

	if c.Tiers, err = loadTiers(ctx, q, address); err != nil {
		return nil, err
	}
	if c.Contributions, err = loadContributions(ctx, q, address); err != nil {
		return nil, err
	}
	return c, nil
}

func loadTiers(ctx context.Context, q execer, address string) ([]models.Tier, error) {
	rows, err := q.QueryContext(ctx, queryGetTiers, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiers: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	tiers := []models.Tier{}
	for rows.Next() {
		var tierStr, pledgeStr string
		if err := rows.Scan(&tierStr, &pledgeStr); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		var t models.Tier
		if t.TierId, err = parseAmount(tierStr); err != nil {
			return nil, fmt.Errorf("failed to parse tier id '%s': %w", tierStr, err)
		}
		if t.PledgeAmount, err = parseAmount(pledgeStr); err != nil {
			return nil, fmt.Errorf("failed to parse pledge amount '%s': %w", pledgeStr, err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tier rows: %w", err)
	}
	return tiers, nil
}

func loadContributions(ctx context.Context, q execer, address string) ([]models.Contribution, error) {
	rows, err := q.QueryContext(ctx, queryGetContributions, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	contributions := []models.Contribution{}
	for rows.Next() {
		var (
			k                  models.Contribution
			tierStr, amountStr string
			refundedAt         sql.NullTime
		)
		if err := rows.Scan(&k.Index, &tierStr, &k.Contributor, &amountStr, &k.Refunded, &k.CreatedAt, &refundedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		if k.TierId, err = parseAmount(tierStr); err != nil {
			return nil, fmt.Errorf("failed to parse tier id '%s': %w", tierStr, err)
		}
		if k.Amount, err = parseAmount(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		if refundedAt.Valid {
			at := refundedAt.Time
			k.RefundedAt = &at
		}
		contributions = append(contributions, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contribution rows: %w", err)
	}
	return contributions, nil
}

func insertCampaign(ctx context.Context, tx *sql.Tx, c *models.Campaign) error {
	_, err := tx.ExecContext(ctx, queryInsertCampaign,
		c.Address, formatAmount(c.Id), c.Owner, c.FeeRecipient,
		formatAmount(c.SoftCap), formatAmount(c.HardCap), c.Deadline, c.Status.String(),
		formatAmount(c.TotalRaised), formatAmount(c.EscrowBalance), formatAmount(c.PaidOut),
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert campaign %s: %w", c.Address, err)
	}
	c.Version = 1
	return nil
}

// saveCampaign writes back a campaign loaded at c.Version. Tiers and
// contributions are append-only apart from the refund flag.
func saveCampaign(ctx context.Context, tx *sql.Tx, c *models.Campaign, now time.Time) error {
	result, err := tx.ExecContext(ctx, queryUpdateCampaign,
		c.Status.String(), formatAmount(c.TotalRaised), formatAmount(c.EscrowBalance), formatAmount(c.PaidOut),
		now, c.Address, c.Version)
	if err != nil {
		return fmt.Errorf("failed to update campaign %s: %w", c.Address, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("campaign update failed - %w", store.ErrConcurrentModification)
	}
	c.Version++
	return saveChildren(ctx, tx, c)
}

func saveChildren(ctx context.Context, tx *sql.Tx, c *models.Campaign) error {
	for i, t := range c.Tiers {
		if _, err := tx.ExecContext(ctx, queryInsertTier, c.Address, i, formatAmount(t.TierId), formatAmount(t.PledgeAmount)); err != nil {
			return fmt.Errorf("failed to store tier %d: %w", t.TierId, err)
		}
	}
	for _, k := range c.Contributions {
		var refundedAt any
		if k.RefundedAt != nil {
			refundedAt = *k.RefundedAt
		}
		_, err := tx.ExecContext(ctx, queryUpsertContribution,
			c.Address, k.Index, formatAmount(k.TierId), k.Contributor, formatAmount(k.Amount),
			k.Refunded, k.CreatedAt, refundedAt)
		if err != nil {
			return fmt.Errorf("failed to store contribution %d: %w", k.Index, err)
		}
	}
	return nil
}
