package formance

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"crowdfund-ledger-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Numscript templates
//
// Account layout:
//   @wallets:{address}            -- participant wallets
//   @campaigns:{address}:escrow   -- campaign escrow accounts
//   @world                        -- airdrop source
//
// Metadata is set inside the script via set_tx_meta() so every Formance
// transaction is self-describing.
// ---------------------------------------------------------------------------

const numscriptTransfer = `vars {
  asset $asset
  number $amount
  account $source
  account $destination
  string $transfer_kind
  string $instruction_id
  string $campaign
  string $amount_human
}

send [$asset $amount] (
  source = $source
  destination = $destination
)

set_tx_meta("event_type", $transfer_kind)
set_tx_meta("instruction_id", $instruction_id)
set_tx_meta("campaign", $campaign)
set_tx_meta("amount_human", $amount_human)
`

const numscriptAirdrop = `vars {
  asset $asset
  number $amount
  account $destination
  string $instruction_id
  string $amount_human
}

send [$asset $amount] (
  source = @world
  destination = $destination
)

set_tx_meta("event_type", "airdrop")
set_tx_meta("instruction_id", $instruction_id)
set_tx_meta("amount_human", $amount_human)
`

// RecordTransfer posts one committed transfer. The transfer id is used as the
// Formance reference, so replaying a transfer is a no-op.
func (s *Service) RecordTransfer(ctx context.Context, transfer models.Transfer) error {
	postTx, err := s.buildPostTransaction(transfer)
	if err != nil {
		return err
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Debug("Transfer already mirrored", zap.String("transfer_id", transfer.Id))
			return nil // idempotent
		}
		return fmt.Errorf("error recording transfer %s: %w", transfer.Id, err)
	}

	zap.L().Info("Transfer mirrored to Formance",
		zap.String("transfer_id", transfer.Id),
		zap.String("kind", transfer.Kind),
		zap.String("campaign", transfer.Campaign),
		zap.String("asset", assetSymbol(s.asset)),
		zap.Uint64("amount", transfer.Amount))
	return nil
}

func (s *Service) buildPostTransaction(transfer models.Transfer) (shared.V2PostTransaction, error) {
	if transfer.Id == "" {
		return shared.V2PostTransaction{}, fmt.Errorf("transfer has no id")
	}
	human, err := humanAmount(transfer.Amount, s.asset)
	if err != nil {
		return shared.V2PostTransaction{}, err
	}

	postTx := shared.V2PostTransaction{Reference: strPtr(transfer.Id)}
	if !transfer.CreatedAt.IsZero() {
		ts := transfer.CreatedAt
		postTx.Timestamp = &ts
	}

	if transfer.From == models.AirdropSource {
		postTx.Script = &shared.V2PostTransactionScript{
			Plain: numscriptAirdrop,
			Vars: map[string]string{
				"asset":          s.asset,
				"amount":         formatUint(transfer.Amount),
				"destination":    ledgerAccount(transfer.Campaign, transfer.To),
				"instruction_id": transfer.InstructionId,
				"amount_human":   human,
			},
		}
		return postTx, nil
	}

	postTx.Script = &shared.V2PostTransactionScript{
		Plain: numscriptTransfer,
		Vars: map[string]string{
			"asset":          s.asset,
			"amount":         formatUint(transfer.Amount),
			"source":         ledgerAccount(transfer.Campaign, transfer.From),
			"destination":    ledgerAccount(transfer.Campaign, transfer.To),
			"transfer_kind":  transfer.Kind,
			"instruction_id": transfer.InstructionId,
			"campaign":       transfer.Campaign,
			"amount_human":   human,
		},
	}
	return postTx, nil
}

// ---------- helpers ----------

// ledgerAccount maps a runtime address onto the Formance account layout
func ledgerAccount(campaign, address string) string {
	if campaign != "" && address == campaign {
		return "campaigns:" + accountSegment(address) + ":escrow"
	}
	return "wallets:" + accountSegment(address)
}

// accountSegment returns address unchanged when it is a valid Formance account
// segment, otherwise a hex encoding of it prefixed with "x".
func accountSegment(address string) string {
	valid := address != ""
	for _, c := range address {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			valid = false
			break
		}
	}
	if valid {
		return address
	}
	return fmt.Sprintf("x%x", address)
}

// assetPrecision extracts the precision from a Formance asset like "SOL/9".
func assetPrecision(fAsset string) (int32, error) {
	i := strings.IndexByte(fAsset, '/')
	if i <= 0 {
		return 0, fmt.Errorf("asset %q has no precision", fAsset)
	}
	p, err := decimal.NewFromString(fAsset[i+1:])
	if err != nil || !p.IsInteger() || p.IsNegative() || p.GreaterThan(decimal.NewFromInt(36)) {
		return 0, fmt.Errorf("asset %q has an invalid precision", fAsset)
	}
	return int32(p.IntPart()), nil
}

// assetSymbol extracts the symbol from a Formance asset like "SOL/9".
func assetSymbol(fAsset string) string {
	if i := strings.IndexByte(fAsset, '/'); i >= 0 {
		return fAsset[:i]
	}
	return fAsset
}

func humanAmount(amount uint64, fAsset string) (string, error) {
	p, err := assetPrecision(fAsset)
	if err != nil {
		return "", err
	}
	return bigIntToDecimal(new(big.Int).SetUint64(amount), p).String(), nil
}

// bigIntToDecimal converts a *big.Int in smallest-unit to a human-readable decimal.
func bigIntToDecimal(raw *big.Int, precision int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -precision)
}

func formatUint(v uint64) string {
	return new(big.Int).SetUint64(v).String()
}

func strPtr(s string) *string { return &s }
