package formance

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestAssetPrecision(t *testing.T) {
	tests := []struct {
		asset   string
		want    int32
		wantErr bool
	}{
		{"SOL/9", 9, false},
		{"USDC/6", 6, false},
		{"ETH/18", 18, false},
		{"SOL", 0, true},
		{"/9", 0, true},
		{"SOL/x", 0, true},
		{"SOL/-1", 0, true},
	}
	for _, tt := range tests {
		got, err := assetPrecision(tt.asset)
		if (err != nil) != tt.wantErr {
			t.Errorf("assetPrecision(%q) error = %v, wantErr %v", tt.asset, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("assetPrecision(%q) = %d, want %d", tt.asset, got, tt.want)
		}
	}
}

func TestAssetSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SOL/9", "SOL"},
		{"USDC/6", "USDC"},
		{"PLAIN", "PLAIN"},
	}
	for _, tt := range tests {
		if got := assetSymbol(tt.input); got != tt.want {
			t.Errorf("assetSymbol(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBigIntToDecimal(t *testing.T) {
	// 1_000_000_000 lamports (precision 9) = 1.0
	result := bigIntToDecimal(big.NewInt(1_000_000_000), 9)
	if !result.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1.0, got %s", result.String())
	}

	// nil should return zero
	result = bigIntToDecimal(nil, 9)
	if !result.IsZero() {
		t.Errorf("expected 0, got %s", result.String())
	}
}

func TestHumanAmount(t *testing.T) {
	got, err := humanAmount(2_500_000_000, "SOL/9")
	if err != nil {
		t.Fatalf("humanAmount failed: %v", err)
	}
	if got != "2.5" {
		t.Errorf("expected 2.5, got %s", got)
	}

	got, err = humanAmount(^uint64(0), "SOL/9")
	if err != nil {
		t.Fatalf("humanAmount failed: %v", err)
	}
	if got != "18446744073.709551615" {
		t.Errorf("expected max uint64 in tokens, got %s", got)
	}
}

func TestLedgerAccount(t *testing.T) {
	tests := []struct {
		campaign string
		address  string
		want     string
	}{
		{"abc123", "abc123", "campaigns:abc123:escrow"},
		{"abc123", "alice-wallet", "wallets:alice-wallet"},
		{"", "alice-wallet", "wallets:alice-wallet"},
		{"", "alice@example", "wallets:x616c696365406578616d706c65"},
	}
	for _, tt := range tests {
		if got := ledgerAccount(tt.campaign, tt.address); got != tt.want {
			t.Errorf("ledgerAccount(%q, %q) = %q, want %q", tt.campaign, tt.address, got, tt.want)
		}
	}
}

func TestBuildPostTransaction_Contribution(t *testing.T) {
	s := &Service{ledger: "test", asset: "SOL/9"}
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	postTx, err := s.buildPostTransaction(models.Transfer{
		Id: "t1", InstructionId: "ix1", Campaign: "c1", Kind: models.TransferContribution,
		From: "alice", To: "c1", Amount: 1_000_000_000, CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("buildPostTransaction failed: %v", err)
	}

	if postTx.Reference == nil || *postTx.Reference != "t1" {
		t.Errorf("expected reference t1, got %v", postTx.Reference)
	}
	if postTx.Timestamp == nil || !postTx.Timestamp.Equal(created) {
		t.Errorf("expected timestamp %s, got %v", created, postTx.Timestamp)
	}
	vars := postTx.Script.Vars
	if vars["source"] != "wallets:alice" || vars["destination"] != "campaigns:c1:escrow" {
		t.Errorf("unexpected accounts %s -> %s", vars["source"], vars["destination"])
	}
	if vars["amount"] != "1000000000" || vars["amount_human"] != "1" {
		t.Errorf("unexpected amounts %s / %s", vars["amount"], vars["amount_human"])
	}
	if vars["transfer_kind"] != models.TransferContribution {
		t.Errorf("expected kind %s, got %s", models.TransferContribution, vars["transfer_kind"])
	}
}

func TestBuildPostTransaction_Airdrop(t *testing.T) {
	s := &Service{ledger: "test", asset: "SOL/9"}

	postTx, err := s.buildPostTransaction(models.Transfer{
		Id: "t2", Kind: models.TransferAirdrop, From: models.AirdropSource, To: "bob", Amount: 5,
	})
	if err != nil {
		t.Fatalf("buildPostTransaction failed: %v", err)
	}
	if !strings.Contains(postTx.Script.Plain, "@world") {
		t.Error("expected airdrop to be sourced from @world")
	}
	if _, ok := postTx.Script.Vars["source"]; ok {
		t.Error("airdrop script takes no source variable")
	}
	if postTx.Timestamp != nil {
		t.Error("expected no timestamp for a zero CreatedAt")
	}

	if _, err := s.buildPostTransaction(models.Transfer{Amount: 5}); err == nil {
		t.Error("expected a transfer without id to be rejected")
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"SOL/9": {Input: big.NewInt(100), Output: big.NewInt(40)},
	}
	if got := volumeBalance(vols, "SOL/9"); got == nil || got.Int64() != 60 {
		t.Errorf("expected 60, got %v", got)
	}
	if got := volumeBalance(vols, "USDC/6"); got != nil {
		t.Errorf("expected nil for unknown asset, got %v", got)
	}
}

func TestIsConflictError(t *testing.T) {
	// nil error should not be a conflict
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
	if isNotFoundError(nil) {
		t.Error("nil should not be a not-found error")
	}
}
