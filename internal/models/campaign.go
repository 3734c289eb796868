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
	"fmt"
	"time"
)

// Status is the lifecycle state of a campaign. The set of values is closed.
type Status uint8

const (
	StatusDraft Status = iota
	StatusPublished
	StatusSuccessful
	StatusFailing
	StatusFinalized
)

var statusNames = [...]string{
	StatusDraft:      "draft",
	StatusPublished:  "published",
	StatusSuccessful: "successful",
	StatusFailing:    "failing",
	StatusFinalized:  "finalized",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Valid reports whether s is one of the declared states.
func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

// ParseStatus maps a stored status name back to its Status.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown campaign status %q", name)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid campaign status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MaxTiers bounds the tier list of a campaign
const MaxTiers = 5

// Tier is a fixed pledge amount contributors must match exactly
type Tier struct {
	TierId       uint64 `json:"tier_id"`
	PledgeAmount uint64 `json:"pledge_amount"`
}

// Contribution is one entry of the append-only contribution ledger
type Contribution struct {
	Index       int        `json:"index"`
	TierId      uint64     `json:"tier_id"`
	Contributor string     `json:"contributor"`
	Amount      uint64     `json:"amount"`
	Refunded    bool       `json:"refunded"`
	CreatedAt   time.Time  `json:"created_at"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
}

// Campaign is the record owned by one derived address.
//
// EscrowBalance mirrors the native balance of the account at Address.
// TotalRaised is denormalized from Contributions and reset to zero by payout,
// at which point PaidOut carries the released amount.
type Campaign struct {
	Id            uint64         `json:"id"`
	Address       string         `json:"address"`
	Owner         string         `json:"owner"`
	FeeRecipient  string         `json:"fee_recipient"`
	SoftCap       uint64         `json:"soft_cap"`
	HardCap       uint64         `json:"hard_cap"`
	Deadline      time.Time      `json:"deadline"`
	Status        Status         `json:"status"`
	Tiers         []Tier         `json:"tiers"`
	Contributions []Contribution `json:"contributions"`
	TotalRaised   uint64         `json:"total_raised"`
	EscrowBalance uint64         `json:"escrow_balance"`
	PaidOut       uint64         `json:"paid_out"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FindTier returns the tier with the given id, if present
func (c *Campaign) FindTier(tierId uint64) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.TierId == tierId {
			return t, true
		}
	}
	return Tier{}, false
}

// Clone returns a deep copy so callers can discard failed mutations.
func (c *Campaign) Clone() *Campaign {
	out := *c
	if c.Tiers != nil {
		out.Tiers = make([]Tier, len(c.Tiers))
		copy(out.Tiers, c.Tiers)
	}
	if c.Contributions != nil {
		out.Contributions = make([]Contribution, len(c.Contributions))
	}
	for i, contribution := range c.Contributions {
		out.Contributions[i] = contribution
		if contribution.RefundedAt != nil {
			t := *contribution.RefundedAt
			out.Contributions[i].RefundedAt = &t
		}
	}
	return &out
}
