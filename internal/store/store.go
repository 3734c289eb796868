package store

import (
	"context"
	"errors"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"
)

// Sentinel errors shared across all runtime implementations.
var (
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrAccountInUse           = errors.New("account already in use")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicateTransfer      = errors.New("duplicate transfer")
)

// TransferFilter narrows a transfer history query.
type TransferFilter struct {
	Campaign string
	Account  string
	Limit    int
	Offset   int
}

// CampaignStore defines the contract of the runtime hosting the campaign program.
// Every Submit executes exactly one instruction atomically: either the campaign
// record, account balances and transfer journal all change, or none do.
type CampaignStore interface {
	// --- Instructions ---
	Submit(ctx context.Context, ix program.Instruction) (*models.Receipt, error)

	// --- Campaigns ---
	GetCampaign(ctx context.Context, address string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error)
	ReconcileCampaign(ctx context.Context, address string) (*models.ReconcileResult, error)

	// --- Accounts ---
	GetAccountBalance(ctx context.Context, address string) (*models.AccountBalance, error)
	Airdrop(ctx context.Context, address string, amount uint64) (*models.Transfer, error)

	// --- Transfers ---
	GetTransfers(ctx context.Context, filter TransferFilter) ([]models.Transfer, error)
	ListUnmirroredTransfers(ctx context.Context, limit int) ([]models.Transfer, error)
	MarkTransferMirrored(ctx context.Context, transferId string) error

	// --- Lifecycle ---
	Close()
}

// TransferJournal is an external ledger that receives a copy of every committed
// transfer. Implementations must treat a repeated transfer id as already recorded.
type TransferJournal interface {
	RecordTransfer(ctx context.Context, transfer models.Transfer) error
}
