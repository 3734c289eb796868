package program

import (
	"context"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Lifecycle(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 10_000})
	env := newTestEnv(bank, owner, alice)

	create := Instruction{
		Kind: IxCreateCampaign,
		Create: &CreateParams{
			Id: 7, SoftCap: 1000, HardCap: 4000,
			Deadline: testNow.Add(time.Hour), Owner: owner, FeeRecipient: feeRecipient,
		},
	}
	target, err := create.Target()
	require.NoError(t, err)

	out, err := Execute(ctx, env, nil, create)
	require.NoError(t, err)
	c := out.Campaign
	assert.Equal(t, target, c.Address)

	steps := []Instruction{
		{Kind: IxAddTier, Campaign: c.Address, TierId: 1, Amount: 2000},
		{Kind: IxPublish, Campaign: c.Address},
		{Kind: IxContribute, Campaign: c.Address, Contributor: alice, TierId: 1, Amount: 2000},
		{Kind: IxContribute, Campaign: c.Address, Contributor: alice, TierId: 1, Amount: 2000},
		{Kind: IxFinalize, Campaign: c.Address},
	}
	for _, ix := range steps {
		out, err = Execute(ctx, env, c, ix)
		require.NoError(t, err, ix.Kind)
		require.NoError(t, Reconcile(c), ix.Kind)
	}

	require.NotNil(t, out.Finalize)
	assert.Equal(t, models.StatusSuccessful, out.StatusBefore)
	assert.Equal(t, models.StatusFinalized, out.StatusAfter)
	assert.Equal(t, uint64(4000), out.Finalize.OwnerShare+out.Finalize.FeeShare)
}

func TestExecute_RefundKinds(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 1000, bob: 1000})
	env, c := newFailingCampaign(t, bank)

	out, err := Execute(ctx, env, c, Instruction{Kind: IxRefund, Campaign: c.Address, Contributor: bob, ContributionIndex: 1, Amount: 250})
	require.NoError(t, err)
	require.Len(t, out.Refunded, 1)
	assert.Equal(t, bob, out.Refunded[0].Contributor)

	out, err = Execute(ctx, env, c, Instruction{Kind: IxRefundAll, Campaign: c.Address, Contributor: alice})
	require.NoError(t, err)
	assert.Len(t, out.Refunded, 2)
	assert.Zero(t, c.EscrowBalance)
}

func TestExecute_Rejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(newMemoryBank(nil), owner)

	_, err := Execute(ctx, env, nil, Instruction{Kind: IxCreateCampaign})
	assert.Error(t, err)

	_, err = Execute(ctx, env, nil, Instruction{Kind: IxPublish, Campaign: "abc"})
	assert.Error(t, err)

	c := newDraftCampaign(t, env, 100, 200)
	_, err = Execute(ctx, env, c, Instruction{Kind: "close_campaign", Campaign: c.Address})
	assert.ErrorIs(t, err, ErrUnknownInstruction)

	_, err = Instruction{Kind: IxPublish}.Target()
	assert.Error(t, err)
}

func TestReconcile_DetectsCorruption(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 1000})
	env := newTestEnv(bank, alice)

	fresh := func() *models.Campaign {
		c := newLiveCampaign(t, env, 100, 1000, models.Tier{TierId: 1, PledgeAmount: 100})
		_, err := Contribute(ctx, env, c, alice, 1, 100)
		require.NoError(t, err)
		require.NoError(t, Reconcile(c))
		return c
	}

	tests := []struct {
		name    string
		corrupt func(c *models.Campaign)
	}{
		{"total drift", func(c *models.Campaign) { c.TotalRaised++ }},
		{"escrow drift", func(c *models.Campaign) { c.EscrowBalance-- }},
		{"bad index", func(c *models.Campaign) { c.Contributions[0].Index = 3 }},
		{"missing tier", func(c *models.Campaign) { c.Contributions[0].TierId = 9 }},
		{"duplicate tier", func(c *models.Campaign) { c.Tiers = append(c.Tiers, c.Tiers[0]) }},
		{"unknown status", func(c *models.Campaign) { c.Status = 99 }},
		{"payout before finalize", func(c *models.Campaign) { c.PaidOut = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fresh()
			tt.corrupt(c)
			assert.ErrorIs(t, Reconcile(c), ErrLedgerMismatch)
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	all := []models.Status{
		models.StatusDraft, models.StatusPublished, models.StatusSuccessful,
		models.StatusFailing, models.StatusFinalized,
	}
	allowed := map[[2]models.Status]bool{
		{models.StatusDraft, models.StatusPublished}:      true,
		{models.StatusPublished, models.StatusSuccessful}: true,
		{models.StatusPublished, models.StatusFailing}:    true,
		{models.StatusSuccessful, models.StatusFinalized}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]models.Status{from, to}], canTransition(from, to), "%s -> %s", from, to)
		}
	}
}
