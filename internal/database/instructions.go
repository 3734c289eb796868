package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"
	"crowdfund-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// txBank is the program.Bank of a single instruction. Every balance read and
// transfer goes through the instruction's SQL transaction, so a rollback
// discards them together with the campaign changes.
type txBank struct {
	tx        *sql.Tx
	campaign  string
	ledger    *SubledgerService
	now       time.Time
	transfers []models.Transfer
}

func (b *txBank) Balance(ctx context.Context, account string) (uint64, error) {
	a, err := b.ledger.GetAccount(ctx, b.tx, account)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// Transfer moves funds within the instruction's transaction. The only campaign
// account it may touch is the one the instruction executes against.
func (b *txBank) Transfer(ctx context.Context, kind, from, to string, amount uint64) (*models.Transfer, error) {
	for _, account := range []string{from, to} {
		if account == models.AirdropSource {
			return nil, fmt.Errorf("%w: %s is reserved for airdrops", store.ErrAccountInUse, account)
		}
		if account == b.campaign {
			continue
		}
		isCampaign, err := campaignExists(ctx, b.tx, account)
		if err != nil {
			return nil, err
		}
		if isCampaign {
			return nil, fmt.Errorf("%w: %s belongs to another campaign", store.ErrAccountInUse, account)
		}
	}

	t := models.Transfer{Kind: kind, From: from, To: to, Amount: amount, CreatedAt: b.now}
	if ic := models.GetInstructionContext(ctx); ic != nil {
		t.InstructionId = ic.InstructionId
		t.Campaign = ic.Campaign
	}
	recorded, err := b.ledger.ProcessTransfer(ctx, b.tx, t)
	if err != nil {
		return nil, err
	}
	b.transfers = append(b.transfers, *recorded)
	return recorded, nil
}

// Submit executes one instruction against its campaign. Instructions on the
// same campaign run one at a time; the campaign row, account balances,
// transfers and the instruction log commit in one SQL transaction or not at all.
func (s *Service) Submit(ctx context.Context, ix program.Instruction) (*models.Receipt, error) {
	target, err := ix.Target()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(target)
	defer unlock()

	ic := &models.InstructionContext{
		InstructionId: uuid.New().String(),
		Kind:          string(ix.Kind),
		Campaign:      target,
	}
	ctx = models.WithInstructionContext(ctx, ic)
	now := s.clock.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var campaign *models.Campaign
	if ix.Kind == program.IxCreateCampaign {
		if err := s.claimCampaignAccount(ctx, tx, target, ix.Create); err != nil {
			return nil, err
		}
	} else {
		if campaign, err = loadCampaign(ctx, tx, target); err != nil {
			return nil, err
		}
	}

	bank := &txBank{tx: tx, campaign: target, ledger: s.subledger, now: now}
	env := &program.Env{
		Clock:   program.FixedClock(now),
		Signers: program.NewSignerSet(ix.Signers...),
		Bank:    bank,
		Fees:    s.fees,
	}

	outcome, err := program.Execute(ctx, env, campaign, ix)
	if err != nil {
		zap.L().Warn("Instruction rejected",
			zap.String("instruction_id", ic.InstructionId),
			zap.String("kind", ic.Kind),
			zap.String("campaign", target),
			zap.Error(err))
		return nil, err
	}
	if err := program.Reconcile(outcome.Campaign); err != nil {
		zap.L().Error("Refusing to commit inconsistent campaign",
			zap.String("instruction_id", ic.InstructionId),
			zap.String("campaign", target),
			zap.Error(err))
		return nil, err
	}

	if ix.Kind == program.IxCreateCampaign {
		if err := insertCampaign(ctx, tx, outcome.Campaign); err != nil {
			return nil, err
		}
	} else if err := saveCampaign(ctx, tx, outcome.Campaign, now); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, queryInsertInstruction,
		ic.InstructionId, ic.Kind, target, strings.Join(ix.Signers, ","),
		outcome.StatusBefore.String(), outcome.StatusAfter.String(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to record instruction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Instruction committed",
		zap.String("instruction_id", ic.InstructionId),
		zap.String("kind", ic.Kind),
		zap.String("campaign", target),
		zap.String("status_before", outcome.StatusBefore.String()),
		zap.String("status_after", outcome.StatusAfter.String()),
		zap.Int("transfers", len(bank.transfers)))

	return &models.Receipt{
		InstructionId: ic.InstructionId,
		Kind:          ic.Kind,
		Campaign:      target,
		StatusBefore:  outcome.StatusBefore.String(),
		StatusAfter:   outcome.StatusAfter.String(),
		Transfers:     bank.transfers,
		Contribution:  outcome.Contribution,
		CommittedAt:   now,
	}, nil
}

// claimCampaignAccount checks that address is free to become a campaign
// account: no campaign lives there, it has never held funds, and no campaign
// pays out to it. The owner and fee recipient of the new campaign must not be
// campaign accounts either.
func (s *Service) claimCampaignAccount(ctx context.Context, tx *sql.Tx, address string, p *program.CreateParams) error {
	exists, err := campaignExists(ctx, tx, address)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: campaign %s", store.ErrAccountInUse, address)
	}

	account, err := s.subledger.GetAccount(ctx, tx, address)
	if err != nil {
		return err
	}
	if account.Version != 0 {
		return fmt.Errorf("%w: account %s already exists", store.ErrAccountInUse, address)
	}

	paid, err := campaignPaysAccount(ctx, tx, address)
	if err != nil {
		return err
	}
	if paid {
		return fmt.Errorf("%w: %s is the payout account of a campaign", store.ErrAccountInUse, address)
	}

	for _, payee := range []string{p.Owner, p.FeeRecipient} {
		if payee == address {
			return fmt.Errorf("%w: %s cannot pay out to itself", store.ErrAccountInUse, address)
		}
		isCampaign, err := campaignExists(ctx, tx, payee)
		if err != nil {
			return err
		}
		if isCampaign {
			return fmt.Errorf("%w: payout account %s is a campaign", store.ErrAccountInUse, payee)
		}
	}
	return nil
}
