package api

import (
	"context"
	"fmt"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"
	"crowdfund-ledger-go/internal/store"

	"go.uber.org/zap"
)

// CreateCampaign creates a Draft campaign; the creator needs no signature
func (s *CampaignService) CreateCampaign(ctx context.Context, params program.CreateParams) (*models.Receipt, error) {
	zap.L().Info("Creating campaign",
		zap.Uint64("campaign_id", params.Id),
		zap.String("owner", params.Owner),
		zap.Uint64("soft_cap", params.SoftCap),
		zap.Uint64("hard_cap", params.HardCap),
		zap.Time("deadline", params.Deadline))

	return s.submit(ctx, program.Instruction{Kind: program.IxCreateCampaign, Create: &params})
}

func (s *CampaignService) AddTier(ctx context.Context, campaign string, signers []string, tierId, pledgeAmount uint64) (*models.Receipt, error) {
	return s.submit(ctx, program.Instruction{
		Kind:     program.IxAddTier,
		Campaign: campaign,
		Signers:  signers,
		TierId:   tierId,
		Amount:   pledgeAmount,
	})
}

func (s *CampaignService) Publish(ctx context.Context, campaign string, signers []string) (*models.Receipt, error) {
	return s.submit(ctx, program.Instruction{Kind: program.IxPublish, Campaign: campaign, Signers: signers})
}

func (s *CampaignService) Contribute(ctx context.Context, campaign string, signers []string, contributor string, tierId, amount uint64) (*models.Receipt, error) {
	return s.submit(ctx, program.Instruction{
		Kind:        program.IxContribute,
		Campaign:    campaign,
		Signers:     signers,
		Contributor: contributor,
		TierId:      tierId,
		Amount:      amount,
	})
}

// Finalize records the verdict of a campaign past its deadline, or pays out a successful one
func (s *CampaignService) Finalize(ctx context.Context, campaign string, signers []string) (*models.Receipt, error) {
	return s.submit(ctx, program.Instruction{Kind: program.IxFinalize, Campaign: campaign, Signers: signers})
}

func (s *CampaignService) Refund(ctx context.Context, campaign string, signers []string, contributor string, index int, amount uint64) (*models.Receipt, error) {
	return s.submit(ctx, program.Instruction{
		Kind:              program.IxRefund,
		Campaign:          campaign,
		Signers:           signers,
		Contributor:       contributor,
		ContributionIndex: index,
		Amount:            amount,
	})
}

func (s *CampaignService) RefundAll(ctx context.Context, campaign string, signers []string, contributor string) (*models.Receipt, error) {
	return s.submit(ctx, program.Instruction{
		Kind:        program.IxRefundAll,
		Campaign:    campaign,
		Signers:     signers,
		Contributor: contributor,
	})
}

func (s *CampaignService) GetCampaign(ctx context.Context, address string) (*models.Campaign, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: campaign address is required", ErrInvalidRequest)
	}
	return s.store.GetCampaign(ctx, address)
}

func (s *CampaignService) ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error) {
	campaigns, err := s.store.ListCampaigns(ctx)
	if err != nil {
		zap.L().Error("Failed to list campaigns", zap.Error(err))
		return nil, err
	}
	if campaigns == nil {
		campaigns = []models.CampaignSummary{}
	}
	return campaigns, nil
}

func (s *CampaignService) ReconcileCampaign(ctx context.Context, address string) (*models.ReconcileResult, error) {
	return s.store.ReconcileCampaign(ctx, address)
}

// GetTransfers returns paginated transfer history of a campaign
func (s *CampaignService) GetTransfers(ctx context.Context, campaign string, limit, offset int) ([]models.Transfer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	transfers, err := s.store.GetTransfers(ctx, store.TransferFilter{Campaign: campaign, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	return transfers, nil
}

func (s *CampaignService) submit(ctx context.Context, ix program.Instruction) (*models.Receipt, error) {
	receipt, err := s.store.Submit(ctx, ix)
	if err != nil {
		if kind := program.KindOf(err); kind != 0 {
			zap.L().Info("Instruction rejected by program",
				zap.String("kind", string(ix.Kind)),
				zap.String("campaign", ix.Campaign),
				zap.String("error_kind", kind.String()))
		} else {
			zap.L().Error("Instruction failed",
				zap.String("kind", string(ix.Kind)),
				zap.String("campaign", ix.Campaign),
				zap.Error(err))
		}
		return nil, err
	}
	return receipt, nil
}
