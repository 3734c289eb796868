package program

import (
	"context"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_SoftCapFailureScenario(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 100_000_000})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 100_000_000, 200_000_000, models.Tier{TierId: 1, PledgeAmount: 50_000_000})

	_, err := Contribute(ctx, env, c, alice, 1, 50_000_000)
	require.NoError(t, err)

	_, err = Finalize(ctx, env, c)
	assert.ErrorIs(t, err, ErrDeadlineNotReached)
	assert.Equal(t, models.StatusPublished, c.Status)

	after := env.at(c.Deadline)
	result, err := Finalize(ctx, after, c)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, result.StatusBefore)
	assert.Equal(t, models.StatusFailing, result.StatusAfter)
	assert.False(t, result.Paid)
	assert.Equal(t, uint64(50_000_000), c.EscrowBalance)
	assert.Equal(t, uint64(50_000_000), bank.balances[c.Address])

	_, err = Finalize(ctx, after, c)
	assert.ErrorIs(t, err, ErrProjectNotSuccessful)

	_, err = Contribute(ctx, env, c, alice, 1, 50_000_000)
	assert.ErrorIs(t, err, ErrProjectNotLive)
	require.NoError(t, Reconcile(c))
}

func TestFinalize_SuccessPaysOutExactlyOnce(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 10_000, bob: 10_000})
	env := newTestEnv(bank, alice, bob)
	c := newLiveCampaign(t, env, 1000, 10_000, models.Tier{TierId: 1, PledgeAmount: 777})

	for i := 0; i < 3; i++ {
		_, err := Contribute(ctx, env, c, alice, 1, 777)
		require.NoError(t, err)
	}
	_, err := Contribute(ctx, env, c, bob, 1, 777)
	require.NoError(t, err)

	after := env.at(c.Deadline.Add(time.Minute))
	verdict, err := Finalize(ctx, after, c)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccessful, verdict.StatusAfter)
	require.NoError(t, Reconcile(c))

	escrow := c.EscrowBalance
	require.Equal(t, uint64(4*777), escrow)

	result, err := Finalize(ctx, after, c)
	require.NoError(t, err)
	assert.True(t, result.Paid)
	assert.Equal(t, models.StatusFinalized, result.StatusAfter)
	assert.Equal(t, escrow, result.OwnerShare+result.FeeShare)
	assert.Equal(t, uint64(310), result.FeeShare)
	assert.Equal(t, result.OwnerShare, bank.balances[owner])
	assert.Equal(t, result.FeeShare, bank.balances[feeRecipient])
	assert.Zero(t, bank.balances[c.Address])

	assert.Zero(t, c.TotalRaised)
	assert.Zero(t, c.EscrowBalance)
	assert.Equal(t, escrow, c.PaidOut)
	require.NoError(t, Reconcile(c))

	_, err = Finalize(ctx, after, c)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, result.OwnerShare, bank.balances[owner])
}

func TestFinalize_HardCapPayoutBeforeDeadline(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 5000})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 1000, 5000, models.Tier{TierId: 1, PledgeAmount: 2500})

	for i := 0; i < 2; i++ {
		_, err := Contribute(ctx, env, c, alice, 1, 2500)
		require.NoError(t, err)
	}
	require.Equal(t, models.StatusSuccessful, c.Status)
	require.True(t, testNow.Before(c.Deadline))

	result, err := Finalize(ctx, env, c)
	require.NoError(t, err)
	assert.True(t, result.Paid)
	assert.Equal(t, uint64(4500), bank.balances[owner])
	assert.Equal(t, uint64(500), bank.balances[feeRecipient])
}

func TestFinalize_DraftIsNotLive(t *testing.T) {
	env := newTestEnv(newMemoryBank(nil), owner)
	c := newDraftCampaign(t, env, 100, 200)

	_, err := Finalize(context.Background(), env.at(c.Deadline), c)
	assert.ErrorIs(t, err, ErrProjectNotLive)
	assert.Equal(t, models.StatusDraft, c.Status)
}

func TestFinalize_FailedPayoutLeavesCampaignUnfinalized(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 5000})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 1000, 5000, models.Tier{TierId: 1, PledgeAmount: 5000})

	_, err := Contribute(ctx, env, c, alice, 1, 5000)
	require.NoError(t, err)
	require.Equal(t, models.StatusSuccessful, c.Status)

	bank.failOnKind = models.TransferPayoutFee
	_, err = Finalize(ctx, env, c)
	assert.ErrorIs(t, err, errBankDown)
	assert.Equal(t, models.StatusSuccessful, c.Status)
	assert.Equal(t, uint64(5000), c.EscrowBalance)
	assert.Zero(t, c.PaidOut)
}

func TestFinalize_InsufficientEscrow(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 5000})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 1000, 5000, models.Tier{TierId: 1, PledgeAmount: 5000})

	_, err := Contribute(ctx, env, c, alice, 1, 5000)
	require.NoError(t, err)
	bank.balances[c.Address] = 4999

	_, err = Finalize(ctx, env, c)
	assert.ErrorIs(t, err, ErrInsufficientEscrow)
	assert.Len(t, bank.transfers, 1)
	assert.Equal(t, models.StatusSuccessful, c.Status)
}
