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

// FinalizeResult describes what a Finalize call did
type FinalizeResult struct {
	StatusBefore models.Status
	StatusAfter  models.Status
	OwnerShare   uint64
	FeeShare     uint64
	Paid         bool
}

// Finalize is permissionless. On a Published campaign past its deadline it
// records the verdict (Successful when the soft cap was met, otherwise
// Failing) without moving funds. On a Successful campaign it pays the escrow
// out to the owner and the fee recipient exactly once and marks the campaign
// Finalized.
func Finalize(ctx context.Context, env *Env, c *models.Campaign) (*FinalizeResult, error) {
	result := &FinalizeResult{StatusBefore: c.Status}

	switch c.Status {
	case models.StatusDraft:
		return nil, newError(KindProjectNotLive, "campaign was never published")
	case models.StatusPublished:
		if err := decideVerdict(env, c); err != nil {
			return nil, err
		}
	case models.StatusSuccessful:
		owner, fee, err := payout(ctx, env, c)
		if err != nil {
			return nil, err
		}
		result.OwnerShare, result.FeeShare, result.Paid = owner, fee, true
	case models.StatusFailing:
		return nil, newError(KindProjectNotSuccessful, "failing campaigns are settled through refunds")
	case models.StatusFinalized:
		return nil, newError(KindAlreadyFinalized, "payout already executed")
	default:
		return nil, fmt.Errorf("campaign %s has unknown status %d", c.Address, c.Status)
	}

	result.StatusAfter = c.Status
	return result, nil
}

func decideVerdict(env *Env, c *models.Campaign) error {
	now := env.now()
	if now.Before(c.Deadline) {
		return newError(KindDeadlineNotReached, "deadline is %s", c.Deadline.Format("2006-01-02 15:04:05"))
	}

	next := models.StatusFailing
	if c.TotalRaised >= c.SoftCap {
		next = models.StatusSuccessful
	}
	if err := transition(c, next); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func payout(ctx context.Context, env *Env, c *models.Campaign) (uint64, uint64, error) {
	escrow := c.EscrowBalance
	held, err := env.Bank.Balance(ctx, c.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read escrow balance: %w", err)
	}
	if held < escrow {
		return 0, 0, newError(KindInsufficientEscrow, "account holds %d, escrow requires %d", held, escrow)
	}
	paidOut, err := checkedAdd(c.PaidOut, escrow)
	if err != nil {
		return 0, 0, err
	}

	ownerShare, feeShare := env.Fees.Split(escrow)
	if _, err := env.Bank.Transfer(ctx, models.TransferPayoutOwner, c.Address, c.Owner, ownerShare); err != nil {
		return 0, 0, fmt.Errorf("owner payout failed: %w", err)
	}
	if _, err := env.Bank.Transfer(ctx, models.TransferPayoutFee, c.Address, c.FeeRecipient, feeShare); err != nil {
		return 0, 0, fmt.Errorf("fee payout failed: %w", err)
	}

	if err := transition(c, models.StatusFinalized); err != nil {
		return 0, 0, err
	}
	c.PaidOut = paidOut
	c.EscrowBalance = 0
	c.TotalRaised = 0
	c.UpdatedAt = env.now()
	return ownerShare, feeShare, nil
}
