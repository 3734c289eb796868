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
	"errors"
	"fmt"

	"crowdfund-ledger-go/internal/models"
)

// ErrLedgerMismatch marks a campaign whose cached totals disagree with its contribution log
var ErrLedgerMismatch = errors.New("ledger mismatch")

// Reconcile re-derives the campaign totals from its contribution log and checks
// every structural invariant of the record.
func Reconcile(c *models.Campaign) error {
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %d", ErrLedgerMismatch, c.Status)
	}
	if len(c.Tiers) > models.MaxTiers {
		return fmt.Errorf("%w: %d tiers exceeds limit %d", ErrLedgerMismatch, len(c.Tiers), models.MaxTiers)
	}
	seen := make(map[uint64]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if seen[t.TierId] {
			return fmt.Errorf("%w: duplicate tier %d", ErrLedgerMismatch, t.TierId)
		}
		seen[t.TierId] = true
	}

	var live uint64
	for i, record := range c.Contributions {
		if record.Index != i {
			return fmt.Errorf("%w: contribution at position %d has index %d", ErrLedgerMismatch, i, record.Index)
		}
		if !seen[record.TierId] {
			return fmt.Errorf("%w: contribution %d references missing tier %d", ErrLedgerMismatch, i, record.TierId)
		}
		if record.Refunded {
			continue
		}
		sum, err := checkedAdd(live, record.Amount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLedgerMismatch, err)
		}
		live = sum
	}

	if c.Status == models.StatusFinalized {
		if c.TotalRaised != 0 || c.EscrowBalance != 0 {
			return fmt.Errorf("%w: finalized campaign still reports raised=%d escrow=%d", ErrLedgerMismatch, c.TotalRaised, c.EscrowBalance)
		}
		if c.PaidOut != live {
			return fmt.Errorf("%w: paid out %d, contributions sum to %d", ErrLedgerMismatch, c.PaidOut, live)
		}
		return nil
	}

	if c.TotalRaised != live {
		return fmt.Errorf("%w: total raised %d, contributions sum to %d", ErrLedgerMismatch, c.TotalRaised, live)
	}
	if c.TotalRaised > c.HardCap {
		return fmt.Errorf("%w: total raised %d exceeds hard cap %d", ErrLedgerMismatch, c.TotalRaised, c.HardCap)
	}
	if c.PaidOut != 0 || c.EscrowBalance != c.TotalRaised {
		return fmt.Errorf("%w: escrow %d, paid out %d, total raised %d", ErrLedgerMismatch, c.EscrowBalance, c.PaidOut, c.TotalRaised)
	}
	return nil
}
