package main

import (
	"testing"
	"time"

	"crowdfund-ledger-go/internal/program"
)

func TestBuildInstruction(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ix, err := buildInstruction(&campaignFlags{
		op:           "create",
		id:           3,
		owner:        "studio",
		feeRecipient: "platform",
		softCap:      "10",
		hardCap:      "25.5",
		deadline:     "72h",
		signers:      "studio",
	}, now)
	if err != nil {
		t.Fatalf("buildInstruction failed: %v", err)
	}
	if ix.Kind != program.IxCreateCampaign || ix.Create == nil {
		t.Fatalf("Expected create instruction, got %+v", ix)
	}
	if ix.Create.SoftCap != 10_000_000_000 || ix.Create.HardCap != 25_500_000_000 {
		t.Errorf("Unexpected caps %d/%d", ix.Create.SoftCap, ix.Create.HardCap)
	}
	if !ix.Create.Deadline.Equal(now.Add(72 * time.Hour)) {
		t.Errorf("Unexpected deadline %v", ix.Create.Deadline)
	}

	ix, err = buildInstruction(&campaignFlags{
		op:          "contribute",
		campaign:    "addr",
		tier:        2,
		amount:      "0.5",
		contributor: "alice",
		signers:     "alice, bob",
	}, now)
	if err != nil {
		t.Fatalf("buildInstruction failed: %v", err)
	}
	if ix.Amount != 500_000_000 || ix.TierId != 2 || len(ix.Signers) != 2 {
		t.Errorf("Unexpected contribute instruction %+v", ix)
	}
}

func TestBuildInstruction_Invalid(t *testing.T) {
	now := time.Now()
	tests := map[string]*campaignFlags{
		"unknown op":       {op: "close", campaign: "addr"},
		"missing campaign": {op: "publish"},
		"bad amount":       {op: "contribute", campaign: "addr", amount: "lots"},
		"bad deadline":     {op: "create", deadline: "next week"},
	}
	for name, f := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := buildInstruction(f, now); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
