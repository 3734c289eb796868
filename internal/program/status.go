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
	"fmt"

	"crowdfund-ledger-go/internal/models"
)

// canTransition encodes the campaign state machine:
//
//	Draft -> Published -> Successful -> Finalized
//	                   \-> Failing
func canTransition(from, to models.Status) bool {
	switch from {
	case models.StatusDraft:
		return to == models.StatusPublished
	case models.StatusPublished:
		return to == models.StatusSuccessful || to == models.StatusFailing
	case models.StatusSuccessful:
		return to == models.StatusFinalized
	case models.StatusFailing, models.StatusFinalized:
		return false
	default:
		return false
	}
}

func transition(c *models.Campaign, to models.Status) error {
	if !canTransition(c.Status, to) {
		return fmt.Errorf("invalid status transition %s -> %s for campaign %s", c.Status, to, c.Address)
	}
	c.Status = to
	return nil
}
