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
	"time"

	"crowdfund-ledger-go/internal/models"
)

// CreateParams are the immutable parameters of a new campaign
type CreateParams struct {
	Id           uint64
	SoftCap      uint64
	HardCap      uint64
	Deadline     time.Time
	Owner        string
	FeeRecipient string
}

// CreateCampaign validates params and returns a Draft campaign located at its
// derived address. It moves no funds.
func CreateCampaign(_ context.Context, env *Env, p CreateParams) (*models.Campaign, error) {
	if p.Owner == "" {
		return nil, newError(KindUnauthorized, "campaign owner is required")
	}
	if p.FeeRecipient == "" {
		return nil, newError(KindUnauthorized, "fee recipient is required")
	}
	if p.SoftCap == 0 {
		return nil, newError(KindInvalidAmount, "soft cap must be positive")
	}
	if p.HardCap <= p.SoftCap {
		return nil, newError(KindInvalidAmount, "hard cap %d must exceed soft cap %d", p.HardCap, p.SoftCap)
	}
	if p.Deadline.IsZero() {
		return nil, newError(KindInvalidAmount, "deadline is required")
	}

	now := env.now()
	return &models.Campaign{
		Id:            p.Id,
		Address:       DeriveAddress(p.Id, p.Owner),
		Owner:         p.Owner,
		FeeRecipient:  p.FeeRecipient,
		SoftCap:       p.SoftCap,
		HardCap:       p.HardCap,
		Deadline:      p.Deadline.UTC(),
		Status:        models.StatusDraft,
		Tiers:         []models.Tier{},
		Contributions: []models.Contribution{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
