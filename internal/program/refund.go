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

// Refund returns one contribution of a Failing campaign to its contributor.
// Anyone may trigger it; funds only ever go to the recorded contributor, and a
// contribution is refunded at most once.
func Refund(ctx context.Context, env *Env, c *models.Campaign, contributor string, index int, amount uint64) (*models.Contribution, error) {
	if c.Status != models.StatusFailing {
		return nil, newError(KindProjectNotFailing, "campaign is %s", c.Status)
	}
	if index < 0 || index >= len(c.Contributions) || c.Contributions[index].Contributor != contributor {
		return nil, newError(KindContributionNotFound, "no contribution %d from %q", index, contributor)
	}
	record := c.Contributions[index]
	if record.Refunded {
		return nil, newError(KindAlreadyRefunded, "contribution %d", index)
	}
	if amount != record.Amount {
		return nil, newError(KindAmountMismatch, "contribution %d is %d, got %d", index, record.Amount, amount)
	}

	if err := settleRefund(ctx, env, c, contributor, amount); err != nil {
		return nil, err
	}

	now := env.now()
	c.Contributions[index].Refunded = true
	c.Contributions[index].RefundedAt = &now
	refunded := c.Contributions[index]
	return &refunded, nil
}

// RefundAll returns every unrefunded contribution of one contributor in a
// single transfer.
func RefundAll(ctx context.Context, env *Env, c *models.Campaign, contributor string) ([]models.Contribution, uint64, error) {
	if c.Status != models.StatusFailing {
		return nil, 0, newError(KindProjectNotFailing, "campaign is %s", c.Status)
	}

	var (
		indexes []int
		total   uint64
		err     error
	)
	for i, record := range c.Contributions {
		if record.Contributor != contributor || record.Refunded {
			continue
		}
		if total, err = checkedAdd(total, record.Amount); err != nil {
			return nil, 0, err
		}
		indexes = append(indexes, i)
	}
	if len(indexes) == 0 {
		return nil, 0, newError(KindContributionNotFound, "no unrefunded contributions from %q", contributor)
	}

	if err := settleRefund(ctx, env, c, contributor, total); err != nil {
		return nil, 0, err
	}

	now := env.now()
	refunded := make([]models.Contribution, 0, len(indexes))
	for _, i := range indexes {
		c.Contributions[i].Refunded = true
		c.Contributions[i].RefundedAt = &now
		refunded = append(refunded, c.Contributions[i])
	}
	return refunded, total, nil
}

// settleRefund moves amount out of escrow and updates the running totals.
func settleRefund(ctx context.Context, env *Env, c *models.Campaign, contributor string, amount uint64) error {
	if c.EscrowBalance < amount {
		return newError(KindInsufficientEscrow, "escrow holds %d, refund needs %d", c.EscrowBalance, amount)
	}
	held, err := env.Bank.Balance(ctx, c.Address)
	if err != nil {
		return fmt.Errorf("failed to read escrow balance: %w", err)
	}
	if held < amount {
		return newError(KindInsufficientEscrow, "account holds %d, refund needs %d", held, amount)
	}
	newTotal, err := checkedSub(c.TotalRaised, amount)
	if err != nil {
		return err
	}

	if _, err := env.Bank.Transfer(ctx, models.TransferRefund, c.Address, contributor, amount); err != nil {
		return fmt.Errorf("refund transfer failed: %w", err)
	}

	c.TotalRaised = newTotal
	c.EscrowBalance -= amount
	c.UpdatedAt = env.now()
	return nil
}
