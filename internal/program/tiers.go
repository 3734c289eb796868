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

	"crowdfund-ledger-go/internal/models"
)

// AddTier appends a pledge tier to a Draft campaign. Owner only.
func AddTier(_ context.Context, env *Env, c *models.Campaign, tierId, pledgeAmount uint64) error {
	if !env.signed(c.Owner) {
		return newError(KindUnauthorized, "only the owner may add tiers")
	}
	if c.Status != models.StatusDraft {
		return newError(KindProjectNotInDraft, "campaign is %s", c.Status)
	}
	if len(c.Tiers) >= models.MaxTiers {
		return newError(KindMaxContributionTiersReached, "campaign already has %d tiers", len(c.Tiers))
	}
	if _, exists := c.FindTier(tierId); exists {
		return newError(KindDuplicateTier, "tier %d already exists", tierId)
	}
	if pledgeAmount == 0 {
		return newError(KindInvalidAmount, "pledge amount must be positive")
	}

	c.Tiers = append(c.Tiers, models.Tier{TierId: tierId, PledgeAmount: pledgeAmount})
	c.UpdatedAt = env.now()
	return nil
}

// Publish opens a Draft campaign to contributions. Owner only.
func Publish(_ context.Context, env *Env, c *models.Campaign) error {
	if !env.signed(c.Owner) {
		return newError(KindUnauthorized, "only the owner may publish")
	}
	if c.Status != models.StatusDraft {
		return newError(KindProjectNotInDraft, "campaign is %s", c.Status)
	}
	if len(c.Tiers) == 0 {
		return newError(KindNoContributionTiers, "add at least one tier before publishing")
	}

	if err := transition(c, models.StatusPublished); err != nil {
		return err
	}
	c.UpdatedAt = env.now()
	return nil
}
