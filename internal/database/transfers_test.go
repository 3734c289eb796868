package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*SubledgerService, *sql.DB, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	service := NewSubledgerService(db)

	// Use the actual schema initialization
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, db, cleanup
}

func processInTx(t *testing.T, db *sql.DB, service *SubledgerService, transfer models.Transfer) (*models.Transfer, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := service.ProcessTransfer(ctx, tx, transfer)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return result, nil
}

func TestProcessTransfer_Airdrop(t *testing.T) {
	service, db, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	result, err := processInTx(t, db, service, models.Transfer{
		Kind: models.TransferAirdrop, From: models.AirdropSource, To: "wallet1", Amount: 1_500_000_000,
	})
	if err != nil {
		t.Fatalf("ProcessTransfer failed: %v", err)
	}

	if result.Id == "" {
		t.Error("Expected transfer id to be assigned")
	}
	account, err := service.GetAccount(ctx, db, "wallet1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account.Balance != 1_500_000_000 {
		t.Errorf("Expected balance 1500000000, got %d", account.Balance)
	}
	if account.Version != 1 {
		t.Errorf("Expected version 1, got %d", account.Version)
	}
}

func TestProcessTransfer_MovesFunds(t *testing.T) {
	service, db, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := processInTx(t, db, service, models.Transfer{
		Kind: models.TransferAirdrop, From: models.AirdropSource, To: "wallet1", Amount: 2000,
	}); err != nil {
		t.Fatalf("Initial airdrop failed: %v", err)
	}

	if _, err := processInTx(t, db, service, models.Transfer{
		Campaign: "campaign1", Kind: models.TransferContribution, From: "wallet1", To: "campaign1", Amount: 500,
	}); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	from, _ := service.GetAccount(ctx, db, "wallet1")
	to, _ := service.GetAccount(ctx, db, "campaign1")
	if from.Balance != 1500 {
		t.Errorf("Expected sender balance 1500, got %d", from.Balance)
	}
	if to.Balance != 500 {
		t.Errorf("Expected receiver balance 500, got %d", to.Balance)
	}
	if from.Version != 2 {
		t.Errorf("Expected sender version 2, got %d", from.Version)
	}

	net, err := service.JournalBalance(ctx, db, "campaign1")
	if err != nil {
		t.Fatalf("JournalBalance failed: %v", err)
	}
	if !net.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected journal balance 500, got %s", net.String())
	}
}

func TestProcessTransfer_InsufficientFunds(t *testing.T) {
	service, db, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := processInTx(t, db, service, models.Transfer{
		Kind: models.TransferAirdrop, From: models.AirdropSource, To: "wallet1", Amount: 100,
	}); err != nil {
		t.Fatalf("Initial airdrop failed: %v", err)
	}

	_, err := processInTx(t, db, service, models.Transfer{
		Kind: models.TransferContribution, From: "wallet1", To: "campaign1", Amount: 101,
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	account, _ := service.GetAccount(ctx, db, "wallet1")
	if account.Balance != 100 {
		t.Errorf("Expected balance unchanged at 100, got %d", account.Balance)
	}
	transfers, err := service.GetTransfers(ctx, store.TransferFilter{Account: "wallet1"})
	if err != nil {
		t.Fatalf("GetTransfers failed: %v", err)
	}
	if len(transfers) != 1 {
		t.Errorf("Expected only the airdrop to be recorded, got %d transfers", len(transfers))
	}
}

func TestProcessTransfer_DuplicateId(t *testing.T) {
	service, db, cleanup := setupTestDb(t)
	defer cleanup()

	transfer := models.Transfer{
		Id: "tx1", Kind: models.TransferAirdrop, From: models.AirdropSource, To: "wallet1", Amount: 10,
	}
	if _, err := processInTx(t, db, service, transfer); err != nil {
		t.Fatalf("First transfer failed: %v", err)
	}
	_, err := processInTx(t, db, service, transfer)
	if !errors.Is(err, store.ErrDuplicateTransfer) {
		t.Fatalf("Expected ErrDuplicateTransfer, got %v", err)
	}
}

func TestProcessTransfer_SelfTransferRejected(t *testing.T) {
	service, db, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := processInTx(t, db, service, models.Transfer{
		Kind: models.TransferContribution, From: "wallet1", To: "wallet1", Amount: 10,
	})
	if err == nil {
		t.Fatal("Expected self transfer to fail")
	}
}

func TestUnmirroredTransfers(t *testing.T) {
	service, db, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, to := range []string{"wallet1", "wallet2", "wallet3"} {
		if _, err := processInTx(t, db, service, models.Transfer{
			Kind: models.TransferAirdrop, From: models.AirdropSource, To: to, Amount: uint64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Airdrop %d failed: %v", i, err)
		}
	}

	pending, err := service.ListUnmirroredTransfers(ctx, 2)
	if err != nil {
		t.Fatalf("ListUnmirroredTransfers failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 transfers, got %d", len(pending))
	}
	if pending[0].To != "wallet1" || pending[1].To != "wallet2" {
		t.Errorf("Expected oldest transfers first, got %s, %s", pending[0].To, pending[1].To)
	}

	if err := service.MarkTransferMirrored(ctx, pending[0].Id); err != nil {
		t.Fatalf("MarkTransferMirrored failed: %v", err)
	}
	if err := service.MarkTransferMirrored(ctx, "missing"); err == nil {
		t.Error("Expected marking an unknown transfer to fail")
	}

	pending, err = service.ListUnmirroredTransfers(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnmirroredTransfers failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 remaining transfers, got %d", len(pending))
	}
	if pending[0].To != "wallet2" {
		t.Errorf("Expected wallet2 first, got %s", pending[0].To)
	}
}

func TestJournalAccountType(t *testing.T) {
	tests := []struct {
		campaign string
		account  string
		want     string
	}{
		{"c1", "c1", accountTypeEscrow},
		{"c1", "wallet", accountTypeWallet},
		{"", "wallet", accountTypeWallet},
		{"", models.AirdropSource, accountTypeFaucet},
	}
	for _, tt := range tests {
		if got := journalAccountType(tt.campaign, tt.account); got != tt.want {
			t.Errorf("journalAccountType(%q, %q) = %q, want %q", tt.campaign, tt.account, got, tt.want)
		}
	}
}
