package formance

import (
	"context"
	"fmt"
	"math/big"

	"crowdfund-ledger-go/internal/models"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// MirroredBalance returns the balance the Formance ledger holds for a runtime
// address. Pass the campaign address as campaign to read its escrow account.
// Accounts the ledger has never seen hold zero.
func (s *Service) MirroredBalance(ctx context.Context, campaign, address string) (*models.AccountBalance, error) {
	account := ledgerAccount(campaign, address)
	zap.L().Debug("Getting mirrored balance from Formance", zap.String("account", account))

	vols, err := s.getAccountVolumes(ctx, account)
	if err != nil {
		return nil, err
	}

	precision, err := assetPrecision(s.asset)
	if err != nil {
		return nil, err
	}
	bal := volumeBalance(vols, s.asset)
	if bal == nil {
		bal = new(big.Int)
	}
	if bal.Sign() < 0 || !bal.IsUint64() {
		return nil, fmt.Errorf("account %s holds an out-of-range balance %s", account, bal.String())
	}

	return &models.AccountBalance{
		Address:  address,
		Lamports: bal.Uint64(),
		Balance:  bigIntToDecimal(bal, precision),
	}, nil
}

// getAccountVolumes fetches volumes for a single account via GetAccount (clean GET).
func (s *Service) getAccountVolumes(ctx context.Context, address string) (map[string]shared.V2Volume, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		zap.L().Warn("Failed to get account volumes", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return resp.V2AccountResponse.Data.Volumes, nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}
