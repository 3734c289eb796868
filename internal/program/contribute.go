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

package program

import (
	"context"
	"fmt"

	"crowdfund-ledger-go/internal/models"
)

// Contribute pledges amount against tierId on behalf of a signing contributor.
//
// All checks run against the campaign as loaded for this instruction, so the
// hard cap is enforced strictly in execution order. Reaching the hard cap
// moves the campaign to Successful immediately.
func Contribute(ctx context.Context, env *Env, c *models.Campaign, contributor string, tierId, amount uint64) (*models.Contribution, error) {
	if !env.signed(contributor) {
		return nil, newError(KindUnauthorized, "contributor %q did not sign", contributor)
	}
	tier, ok := c.FindTier(tierId)
	if !ok {
		return nil, newError(KindTierNotFound, "tier %d", tierId)
	}
	if amount != tier.PledgeAmount {
		return nil, newError(KindAmountMismatch, "tier %d requires %d, got %d", tierId, tier.PledgeAmount, amount)
	}
	if c.Status != models.StatusPublished {
		return nil, newError(KindProjectNotLive, "campaign is %s", c.Status)
	}
	now := env.now()
	if !now.Before(c.Deadline) {
		return nil, newError(KindDeadlinePassed, "deadline was %s", c.Deadline.Format("2006-01-02 15:04:05"))
	}

	newTotal, err := checkedAdd(c.TotalRaised, amount)
	if err != nil {
		return nil, err
	}
	if newTotal > c.HardCap {
		return nil, newError(KindHardCapReached, "raised %d + %d exceeds hard cap %d", c.TotalRaised, amount, c.HardCap)
	}
	newEscrow, err := checkedAdd(c.EscrowBalance, amount)
	if err != nil {
		return nil, err
	}

	if _, err := env.Bank.Transfer(ctx, models.TransferContribution, contributor, c.Address, amount); err != nil {
		return nil, fmt.Errorf("contribution transfer failed: %w", err)
	}

	contribution := models.Contribution{
		Index:       len(c.Contributions),
		TierId:      tierId,
		Contributor: contributor,
		Amount:      amount,
		CreatedAt:   now,
	}
	c.Contributions = append(c.Contributions, contribution)
	c.TotalRaised = newTotal
	c.EscrowBalance = newEscrow
	c.UpdatedAt = now

	if c.TotalRaised == c.HardCap {
		if err := transition(c, models.StatusSuccessful); err != nil {
			return nil, err
		}
	}

	return &contribution, nil
}
