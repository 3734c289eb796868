package models

import (
	"testing"
	"time"
)

func TestCampaignCloneIsDeep(t *testing.T) {
	refundedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Campaign{
		Address:     "c1",
		Status:      StatusFailing,
		Tiers:       []Tier{{TierId: 1, PledgeAmount: 50}},
		TotalRaised: 100,
		Contributions: []Contribution{
			{Index: 0, TierId: 1, Contributor: "alice", Amount: 50, Refunded: true, RefundedAt: &refundedAt},
			{Index: 1, TierId: 1, Contributor: "bob", Amount: 50},
		},
	}

	clone := c.Clone()
	clone.Tiers[0].PledgeAmount = 99
	clone.Contributions[1].Refunded = true
	*clone.Contributions[0].RefundedAt = refundedAt.Add(time.Hour)
	clone.Status = StatusFinalized

	if c.Tiers[0].PledgeAmount != 50 {
		t.Errorf("Expected tiers to be copied, got %d", c.Tiers[0].PledgeAmount)
	}
	if c.Contributions[1].Refunded {
		t.Error("Expected contributions to be copied")
	}
	if !c.Contributions[0].RefundedAt.Equal(refundedAt) {
		t.Errorf("Expected refund time to be copied, got %v", c.Contributions[0].RefundedAt)
	}
	if c.Status != StatusFailing {
		t.Errorf("Expected status to be unchanged, got %s", c.Status)
	}
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusPublished, StatusSuccessful, StatusFailing, StatusFinalized} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) failed: %v", s, err)
		}
		var parsed Status
		if err := parsed.UnmarshalText(text); err != nil || parsed != s {
			t.Errorf("Round trip of %s gave %s (%v)", s, parsed, err)
		}
	}
	if _, err := Status(42).MarshalText(); err == nil {
		t.Error("Expected an error for an undeclared status")
	}
}
